package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"restaurant-pos/internal/entity"
)

func (q *Queries) GetProductByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT id, name, name_translated, description, price, product_category FROM products WHERE id = ?`

	p := &entity.Product{}
	err := q.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.NameTranslated, &p.Description, &p.Price, &p.Category)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// FindProductByNames looks a product up by its name pair, which is unique.
func (q *Queries) FindProductByNames(ctx context.Context, name, nameTranslated string) (*entity.Product, error) {
	query := `SELECT id, name, name_translated, description, price, product_category FROM products WHERE name = ? AND name_translated = ?`

	p := &entity.Product{}
	err := q.db.QueryRowContext(ctx, query, name, nameTranslated).Scan(&p.ID, &p.Name, &p.NameTranslated, &p.Description, &p.Price, &p.Category)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// ListProducts returns every product with its ingredients.
func (q *Queries) ListProducts(ctx context.Context) ([]entity.Product, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, name_translated, description, price, product_category FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.NameTranslated, &p.Description, &p.Price, &p.Category); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ingredients, err := q.ingredientsByProduct(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Ingredients = ingredients[products[i].ID]
		if products[i].Ingredients == nil {
			products[i].Ingredients = []entity.Ingredient{}
		}
	}
	return products, nil
}

// SaveProduct inserts or updates a product and replaces its ingredient set
// in one transaction.
func (s *Store) SaveProduct(ctx context.Context, p *entity.Product, create bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if create {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		query := `INSERT INTO products (id, name, name_translated, description, price, product_category) VALUES (?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, query, p.ID, p.Name, p.NameTranslated, p.Description, p.Price, p.Category); err != nil {
			return translate(err)
		}
	} else {
		query := `UPDATE products SET name = ?, name_translated = ?, description = ?, price = ?, product_category = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, query, p.Name, p.NameTranslated, p.Description, p.Price, p.Category, p.ID); err != nil {
			return translate(err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_ingredients WHERE product_id = ?`, p.ID); err != nil {
			return err
		}
	}

	for _, ing := range p.Ingredients {
		_, err := tx.ExecContext(ctx, `INSERT INTO product_ingredients (product_id, ingredient_id) VALUES (?, ?)`, p.ID, ing.ID)
		if err != nil {
			return translate(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (q *Queries) DeleteProduct(ctx context.Context, id string) error {
	return expectAffected(q.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id))
}

func (q *Queries) GetIngredientByID(ctx context.Context, id string) (*entity.Ingredient, error) {
	i := &entity.Ingredient{}
	err := q.db.QueryRowContext(ctx, `SELECT id, name, name_translated FROM ingredients WHERE id = ?`, id).Scan(&i.ID, &i.Name, &i.NameTranslated)
	if err != nil {
		return nil, translate(err)
	}
	return i, nil
}

func (q *Queries) FindIngredientByNames(ctx context.Context, name, nameTranslated string) (*entity.Ingredient, error) {
	i := &entity.Ingredient{}
	err := q.db.QueryRowContext(ctx, `SELECT id, name, name_translated FROM ingredients WHERE name = ? AND name_translated = ?`, name, nameTranslated).
		Scan(&i.ID, &i.Name, &i.NameTranslated)
	if err != nil {
		return nil, translate(err)
	}
	return i, nil
}

func (q *Queries) ListIngredients(ctx context.Context) ([]entity.Ingredient, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, name_translated FROM ingredients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ingredients []entity.Ingredient
	for rows.Next() {
		var i entity.Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.NameTranslated); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (q *Queries) CreateIngredient(ctx context.Context, i *entity.Ingredient) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	_, err := q.db.ExecContext(ctx, `INSERT INTO ingredients (id, name, name_translated) VALUES (?, ?, ?)`, i.ID, i.Name, i.NameTranslated)
	return translate(err)
}

func (q *Queries) UpdateIngredient(ctx context.Context, i *entity.Ingredient) error {
	_, err := q.db.ExecContext(ctx, `UPDATE ingredients SET name = ?, name_translated = ? WHERE id = ?`, i.Name, i.NameTranslated, i.ID)
	return translate(err)
}

// DeleteIngredient removes the ingredient; product links cascade.
func (q *Queries) DeleteIngredient(ctx context.Context, id string) error {
	return expectAffected(q.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ?`, id))
}

func (q *Queries) ingredientsByProduct(ctx context.Context) (map[string][]entity.Ingredient, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT pi.product_id, i.id, i.name, i.name_translated
		FROM product_ingredients pi JOIN ingredients i ON i.id = pi.ingredient_id
		ORDER BY i.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[string][]entity.Ingredient{}
	for rows.Next() {
		var productID string
		var i entity.Ingredient
		if err := rows.Scan(&productID, &i.ID, &i.Name, &i.NameTranslated); err != nil {
			return nil, err
		}
		result[productID] = append(result[productID], i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

package entity

type ProductCategory string

const (
	CategoryBreakfast  ProductCategory = "Breakfast"
	CategoryAppetizers ProductCategory = "Appetizers"
	CategorySalads     ProductCategory = "Salads"
	CategoryMainDishes ProductCategory = "Main Dishes"
	CategoryDesserts   ProductCategory = "Desserts"
	CategoryDrinks     ProductCategory = "Drinks"
)

type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	NameTranslated string          `json:"name_translated"`
	Description    string          `json:"description"`
	Price          int64           `json:"price"`
	Category       ProductCategory `json:"product_category"`
	Ingredients    []Ingredient    `json:"ingredients"`
}

type Ingredient struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NameTranslated string `json:"name_translated"`
}

/*
Mysql Tables

CREATE TABLE products (
	id CHAR(36) PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	name_translated VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	price BIGINT NOT NULL,
	product_category VARCHAR(50) NOT NULL,
	UNIQUE KEY products_name_idx (name, name_translated)
);

CREATE TABLE product_ingredients (
	product_id CHAR(36) NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	ingredient_id CHAR(36) NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE
);
*/

// Package memstore is an in-memory stand-in for repository.Store used by
// service and API tests. WithinTx works on a copy of the data and keeps it
// only when fn succeeds, so rollback behaves like the MySQL store.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/repository"
)

type Store struct {
	*state
	mu sync.Mutex
}

type state struct {
	mu       *sync.Mutex
	failures map[string]error

	seq  map[string]int
	next int

	admins             map[string]entity.Admin
	waiters            map[string]entity.Waiter
	ingredients        map[string]entity.Ingredient
	products           map[string]entity.Product
	productIngredients map[string][]string
	tables             map[string]entity.ServingTable
	orders             map[string]entity.Order
	lines              map[string]entity.OrderLine
	kitchenOrders      map[string]entity.KitchenOrder
	payments           map[string]entity.Payment
}

var _ repository.Ledger = (*state)(nil)

func New() *Store {
	s := &Store{}
	s.state = &state{
		mu:                 &s.mu,
		failures:           map[string]error{},
		seq:                map[string]int{},
		admins:             map[string]entity.Admin{},
		waiters:            map[string]entity.Waiter{},
		ingredients:        map[string]entity.Ingredient{},
		products:           map[string]entity.Product{},
		productIngredients: map[string][]string{},
		tables:             map[string]entity.ServingTable{},
		orders:             map[string]entity.Order{},
		lines:              map[string]entity.OrderLine{},
		kitchenOrders:      map[string]entity.KitchenOrder{},
		payments:           map[string]entity.Payment{},
	}
	return s
}

// FailOn makes every later call of the named method return err. A nil err
// clears it.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// WithinTx runs fn against a copy of the data and commits the copy only when
// fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.state.clone()
	if err := fn(tx); err != nil {
		return err
	}
	tx.mu = &s.mu
	*s.state = *tx
	return nil
}

func (st *state) lock() func() {
	if st.mu == nil {
		return func() {}
	}
	st.mu.Lock()
	return st.mu.Unlock
}

func (st *state) check(method string) error {
	return st.failures[method]
}

func (st *state) track(id string) {
	st.next++
	st.seq[id] = st.next
}

func (st *state) clone() *state {
	c := &state{
		failures:           st.failures,
		seq:                cloneMap(st.seq),
		next:               st.next,
		admins:             cloneMap(st.admins),
		waiters:            cloneMap(st.waiters),
		ingredients:        cloneMap(st.ingredients),
		products:           cloneMap(st.products),
		productIngredients: cloneMap(st.productIngredients),
		tables:             cloneMap(st.tables),
		orders:             cloneMap(st.orders),
		lines:              cloneMap(st.lines),
		kitchenOrders:      cloneMap(st.kitchenOrders),
		payments:           cloneMap(st.payments),
	}
	return c
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (st *state) sorted(ids []string) []string {
	sort.Slice(ids, func(i, j int) bool { return st.seq[ids[i]] < st.seq[ids[j]] })
	return ids
}

func conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", repository.ErrConflict, fmt.Sprintf(format, args...))
}

// Admins

func (st *state) GetAdminByUsername(ctx context.Context, username string) (*entity.Admin, error) {
	defer st.lock()()
	if err := st.check("GetAdminByUsername"); err != nil {
		return nil, err
	}
	for _, a := range st.admins {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (st *state) CreateAdmin(ctx context.Context, a *entity.Admin) error {
	defer st.lock()()
	for _, existing := range st.admins {
		if existing.Username == a.Username {
			return conflictf("duplicate admin %s", a.Username)
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	st.admins[a.ID] = *a
	st.track(a.ID)
	return nil
}

// Waiters

func (st *state) GetWaiterByID(ctx context.Context, id string) (*entity.Waiter, error) {
	defer st.lock()()
	if err := st.check("GetWaiterByID"); err != nil {
		return nil, err
	}
	w, ok := st.waiters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (st *state) GetWaiterByCode(ctx context.Context, code int) (*entity.Waiter, error) {
	defer st.lock()()
	for _, w := range st.waiters {
		if w.Code == code {
			return &w, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (st *state) ListWaiters(ctx context.Context) ([]entity.Waiter, error) {
	defer st.lock()()
	if err := st.check("ListWaiters"); err != nil {
		return nil, err
	}
	return st.listWaiters(), nil
}

func (st *state) listWaiters() []entity.Waiter {
	var waiters []entity.Waiter
	for _, w := range st.waiters {
		waiters = append(waiters, w)
	}
	sort.Slice(waiters, func(i, j int) bool { return waiters[i].Code < waiters[j].Code })
	return waiters
}

func (st *state) ListWaitersWithReservedTables(ctx context.Context) ([]entity.Waiter, error) {
	defer st.lock()()
	waiters := st.listWaiters()
	tables := st.servingTables("")
	for i := range waiters {
		waiters[i].ServingTables = []entity.ServingTable{}
		for _, t := range tables {
			if t.WaiterID != waiters[i].ID || t.Status != entity.StatusReserved {
				continue
			}
			for j := range t.Orders {
				for k := range t.Orders[j].Lines {
					line := &t.Orders[j].Lines[k]
					line.Product.Ingredients = st.ingredientsOf(line.ProductID)
				}
			}
			waiters[i].ServingTables = append(waiters[i].ServingTables, t)
		}
	}
	return waiters, nil
}

func (st *state) CreateWaiter(ctx context.Context, w *entity.Waiter) error {
	defer st.lock()()
	if err := st.check("CreateWaiter"); err != nil {
		return err
	}
	if err := st.waiterCodeFree(w.Code, ""); err != nil {
		return err
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	st.waiters[w.ID] = entity.Waiter{ID: w.ID, Code: w.Code, FirstName: w.FirstName, LastName: w.LastName}
	st.track(w.ID)
	return nil
}

func (st *state) UpdateWaiter(ctx context.Context, w *entity.Waiter) error {
	defer st.lock()()
	if _, ok := st.waiters[w.ID]; !ok {
		return nil
	}
	if err := st.waiterCodeFree(w.Code, w.ID); err != nil {
		return err
	}
	st.waiters[w.ID] = entity.Waiter{ID: w.ID, Code: w.Code, FirstName: w.FirstName, LastName: w.LastName}
	return nil
}

func (st *state) waiterCodeFree(code int, exceptID string) error {
	for _, existing := range st.waiters {
		if existing.Code == code && existing.ID != exceptID {
			return conflictf("duplicate waiter code %d", code)
		}
	}
	return nil
}

// DeleteWaiter removes the waiter with their tables.
func (st *state) DeleteWaiter(ctx context.Context, id string) error {
	defer st.lock()()
	if _, ok := st.waiters[id]; !ok {
		return repository.ErrNotFound
	}
	for tableID, t := range st.tables {
		if t.WaiterID == id {
			st.deleteTable(tableID)
		}
	}
	delete(st.waiters, id)
	return nil
}

// Catalog

func (st *state) GetProductByID(ctx context.Context, id string) (*entity.Product, error) {
	defer st.lock()()
	if err := st.check("GetProductByID"); err != nil {
		return nil, err
	}
	p, ok := st.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (st *state) FindProductByNames(ctx context.Context, name, nameTranslated string) (*entity.Product, error) {
	defer st.lock()()
	for _, p := range st.products {
		if p.Name == name && p.NameTranslated == nameTranslated {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (st *state) ListProducts(ctx context.Context) ([]entity.Product, error) {
	defer st.lock()()
	if err := st.check("ListProducts"); err != nil {
		return nil, err
	}
	var products []entity.Product
	for _, p := range st.products {
		p.Ingredients = st.ingredientsOf(p.ID)
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (st *state) SaveProduct(ctx context.Context, p *entity.Product, create bool) error {
	defer st.lock()()
	if err := st.check("SaveProduct"); err != nil {
		return err
	}
	for _, existing := range st.products {
		if existing.Name == p.Name && existing.NameTranslated == p.NameTranslated && existing.ID != p.ID {
			return conflictf("duplicate product %s", p.Name)
		}
	}
	var ids []string
	for _, ing := range p.Ingredients {
		if _, ok := st.ingredients[ing.ID]; !ok {
			return conflictf("unknown ingredient %s", ing.ID)
		}
		ids = append(ids, ing.ID)
	}

	if create {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		st.track(p.ID)
	}
	stored := *p
	stored.Ingredients = nil
	st.products[p.ID] = stored
	st.productIngredients[p.ID] = ids
	return nil
}

// DeleteProduct refuses products still used by order lines.
func (st *state) DeleteProduct(ctx context.Context, id string) error {
	defer st.lock()()
	if _, ok := st.products[id]; !ok {
		return repository.ErrNotFound
	}
	for _, l := range st.lines {
		if l.ProductID == id {
			return conflictf("product %s referenced by order line %s", id, l.ID)
		}
	}
	delete(st.products, id)
	delete(st.productIngredients, id)
	return nil
}

func (st *state) GetIngredientByID(ctx context.Context, id string) (*entity.Ingredient, error) {
	defer st.lock()()
	i, ok := st.ingredients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &i, nil
}

func (st *state) FindIngredientByNames(ctx context.Context, name, nameTranslated string) (*entity.Ingredient, error) {
	defer st.lock()()
	for _, i := range st.ingredients {
		if i.Name == name && i.NameTranslated == nameTranslated {
			return &i, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (st *state) ListIngredients(ctx context.Context) ([]entity.Ingredient, error) {
	defer st.lock()()
	var ingredients []entity.Ingredient
	for _, i := range st.ingredients {
		ingredients = append(ingredients, i)
	}
	sort.Slice(ingredients, func(i, j int) bool { return ingredients[i].Name < ingredients[j].Name })
	return ingredients, nil
}

func (st *state) CreateIngredient(ctx context.Context, i *entity.Ingredient) error {
	defer st.lock()()
	if err := st.ingredientNamesFree(i); err != nil {
		return err
	}
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	st.ingredients[i.ID] = *i
	st.track(i.ID)
	return nil
}

func (st *state) UpdateIngredient(ctx context.Context, i *entity.Ingredient) error {
	defer st.lock()()
	if err := st.ingredientNamesFree(i); err != nil {
		return err
	}
	if _, ok := st.ingredients[i.ID]; ok {
		st.ingredients[i.ID] = *i
	}
	return nil
}

func (st *state) ingredientNamesFree(i *entity.Ingredient) error {
	for _, existing := range st.ingredients {
		if existing.Name == i.Name && existing.NameTranslated == i.NameTranslated && existing.ID != i.ID {
			return conflictf("duplicate ingredient %s", i.Name)
		}
	}
	return nil
}

// DeleteIngredient removes the ingredient and detaches it from products.
func (st *state) DeleteIngredient(ctx context.Context, id string) error {
	defer st.lock()()
	if _, ok := st.ingredients[id]; !ok {
		return repository.ErrNotFound
	}
	for productID, ids := range st.productIngredients {
		var kept []string
		for _, ingID := range ids {
			if ingID != id {
				kept = append(kept, ingID)
			}
		}
		st.productIngredients[productID] = kept
	}
	delete(st.ingredients, id)
	return nil
}

func (st *state) ingredientsOf(productID string) []entity.Ingredient {
	ingredients := []entity.Ingredient{}
	for _, id := range st.productIngredients[productID] {
		ingredients = append(ingredients, st.ingredients[id])
	}
	sort.Slice(ingredients, func(i, j int) bool { return ingredients[i].Name < ingredients[j].Name })
	return ingredients
}

// Serving tables

func (st *state) GetServingTableForUpdate(ctx context.Context, id string) (*entity.ServingTable, error) {
	defer st.lock()()
	t, ok := st.tables[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Waiter, t.Orders = nil, nil
	return &t, nil
}

func (st *state) ServingTableCodeTaken(ctx context.Context, waiterID string, code int, excludeID string) (bool, error) {
	defer st.lock()()
	for _, t := range st.tables {
		if t.WaiterID == waiterID && t.Code == code && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (st *state) CreateServingTable(ctx context.Context, table *entity.ServingTable) error {
	defer st.lock()()
	if err := st.check("CreateServingTable"); err != nil {
		return err
	}
	if _, ok := st.waiters[table.WaiterID]; !ok {
		return conflictf("unknown waiter %s", table.WaiterID)
	}
	if table.ID == "" {
		table.ID = uuid.NewString()
	}
	st.tables[table.ID] = *table
	st.track(table.ID)
	return nil
}

func (st *state) UpdateServingTable(ctx context.Context, table *entity.ServingTable) error {
	defer st.lock()()
	if err := st.check("UpdateServingTable"); err != nil {
		return err
	}
	stored := *table
	stored.Waiter, stored.Orders = nil, nil
	st.tables[table.ID] = stored
	return nil
}

// DeleteServingTable removes the table with its orders, lines, kitchen
// orders and payments.
func (st *state) DeleteServingTable(ctx context.Context, id string) error {
	defer st.lock()()
	if _, ok := st.tables[id]; !ok {
		return repository.ErrNotFound
	}
	st.deleteTable(id)
	return nil
}

func (st *state) deleteTable(id string) {
	for orderID, o := range st.orders {
		if o.ServingTableID == id {
			st.deleteOrder(orderID)
		}
	}
	for paymentID, p := range st.payments {
		if p.ServingTableID == id {
			delete(st.payments, paymentID)
		}
	}
	delete(st.tables, id)
}

func (st *state) ListServingTables(ctx context.Context) ([]entity.ServingTable, error) {
	defer st.lock()()
	if err := st.check("ListServingTables"); err != nil {
		return nil, err
	}
	return st.servingTables(""), nil
}

func (st *state) GetServingTable(ctx context.Context, id string) (*entity.ServingTable, error) {
	defer st.lock()()
	tables := st.servingTables(id)
	if len(tables) == 0 {
		return nil, repository.ErrNotFound
	}
	return &tables[0], nil
}

func (st *state) servingTables(id string) []entity.ServingTable {
	var tables []entity.ServingTable
	for _, t := range st.tables {
		if id != "" && t.ID != id {
			continue
		}
		w := st.waiters[t.WaiterID]
		t.Waiter = &entity.WaiterName{FirstName: w.FirstName, LastName: w.LastName}
		t.Orders = st.ordersOf(t.ID)
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Code < tables[j].Code })
	return tables
}

// Orders and lines

func (st *state) CreateOrder(ctx context.Context, order *entity.Order) error {
	defer st.lock()()
	if err := st.check("CreateOrder"); err != nil {
		return err
	}
	if _, ok := st.tables[order.ServingTableID]; !ok {
		return conflictf("unknown serving table %s", order.ServingTableID)
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	stored := *order
	stored.Lines = nil
	st.orders[order.ID] = stored
	st.track(order.ID)
	return nil
}

func (st *state) GetOrderWithLines(ctx context.Context, id string) (*entity.Order, error) {
	defer st.lock()()
	o, ok := st.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Lines = st.linesOf(id)
	return &o, nil
}

func (st *state) UpdateOrderTotal(ctx context.Context, id string, total int64) error {
	defer st.lock()()
	if err := st.check("UpdateOrderTotal"); err != nil {
		return err
	}
	o, ok := st.orders[id]
	if !ok {
		return nil
	}
	o.TotalPrice = total
	st.orders[id] = o
	return nil
}

// DeleteOrder removes the order with its lines and kitchen order.
func (st *state) DeleteOrder(ctx context.Context, id string) error {
	defer st.lock()()
	if err := st.check("DeleteOrder"); err != nil {
		return err
	}
	if _, ok := st.orders[id]; !ok {
		return repository.ErrNotFound
	}
	st.deleteOrder(id)
	return nil
}

func (st *state) deleteOrder(id string) {
	for lineID, l := range st.lines {
		if l.OrderID == id {
			delete(st.lines, lineID)
		}
	}
	for kitchenID, k := range st.kitchenOrders {
		if k.OrderID == id {
			delete(st.kitchenOrders, kitchenID)
		}
	}
	delete(st.orders, id)
}

func (st *state) ordersOf(tableID string) []entity.Order {
	var ids []string
	for id, o := range st.orders {
		if o.ServingTableID == tableID {
			ids = append(ids, id)
		}
	}
	var orders []entity.Order
	for _, id := range st.sorted(ids) {
		o := st.orders[id]
		o.Lines = st.linesOf(id)
		orders = append(orders, o)
	}
	return orders
}

func (st *state) CreateOrderLine(ctx context.Context, line *entity.OrderLine) error {
	defer st.lock()()
	if err := st.check("CreateOrderLine"); err != nil {
		return err
	}
	if _, ok := st.products[line.ProductID]; !ok {
		return conflictf("unknown product %s", line.ProductID)
	}
	if _, ok := st.orders[line.OrderID]; !ok {
		return conflictf("unknown order %s", line.OrderID)
	}
	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	stored := *line
	stored.Product = nil
	st.lines[line.ID] = stored
	st.track(line.ID)
	return nil
}

func (st *state) GetOrderLine(ctx context.Context, id string) (*entity.OrderLine, error) {
	defer st.lock()()
	l, ok := st.lines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := st.products[l.ProductID]
	l.Product = &p
	return &l, nil
}

func (st *state) DeleteOrderLine(ctx context.Context, id string) error {
	defer st.lock()()
	if err := st.check("DeleteOrderLine"); err != nil {
		return err
	}
	if _, ok := st.lines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(st.lines, id)
	return nil
}

// linesOf returns an order's lines with their products, in insertion order.
func (st *state) linesOf(orderID string) []entity.OrderLine {
	var ids []string
	for id, l := range st.lines {
		if l.OrderID == orderID {
			ids = append(ids, id)
		}
	}
	var lines []entity.OrderLine
	for _, id := range st.sorted(ids) {
		l := st.lines[id]
		p := st.products[l.ProductID]
		l.Product = &p
		lines = append(lines, l)
	}
	return lines
}

// Kitchen orders

func (st *state) CreateKitchenOrder(ctx context.Context, kitchenOrder *entity.KitchenOrder) error {
	defer st.lock()()
	if err := st.check("CreateKitchenOrder"); err != nil {
		return err
	}
	for _, k := range st.kitchenOrders {
		if k.OrderID == kitchenOrder.OrderID {
			return conflictf("order %s already has a kitchen order", k.OrderID)
		}
	}
	if kitchenOrder.ID == "" {
		kitchenOrder.ID = uuid.NewString()
	}
	st.kitchenOrders[kitchenOrder.ID] = *kitchenOrder
	st.track(kitchenOrder.ID)
	return nil
}

func (st *state) GetKitchenOrder(ctx context.Context, id string) (*entity.KitchenOrder, error) {
	defer st.lock()()
	k, ok := st.kitchenOrders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &k, nil
}

func (st *state) SetKitchenOrderCompleted(ctx context.Context, id string) error {
	defer st.lock()()
	if err := st.check("SetKitchenOrderCompleted"); err != nil {
		return err
	}
	k, ok := st.kitchenOrders[id]
	if !ok {
		return nil
	}
	k.Completed = true
	st.kitchenOrders[id] = k
	return nil
}

func (st *state) ListUncompletedKitchenOrders(ctx context.Context, excludeCategory entity.ProductCategory) ([]entity.KitchenOrder, error) {
	defer st.lock()()
	var tickets []entity.KitchenOrder
	for _, k := range st.kitchenTickets(false, "") {
		var lines []entity.OrderLine
		for _, l := range st.linesOf(k.OrderID) {
			if l.Product.Category == excludeCategory {
				continue
			}
			l.Product.Ingredients = st.ingredientsOf(l.ProductID)
			lines = append(lines, l)
		}
		if len(lines) == 0 {
			continue
		}
		k.Lines = lines
		tickets = append(tickets, k)
	}
	return tickets, nil
}

func (st *state) ListCompletedKitchenOrders(ctx context.Context, waiterID string) ([]entity.KitchenOrder, error) {
	defer st.lock()()
	return st.kitchenTickets(true, waiterID), nil
}

func (st *state) kitchenTickets(completed bool, waiterID string) []entity.KitchenOrder {
	var ids []string
	for id, k := range st.kitchenOrders {
		if k.Completed == completed && (waiterID == "" || k.WaiterID == waiterID) {
			ids = append(ids, id)
		}
	}
	var tickets []entity.KitchenOrder
	for _, id := range st.sorted(ids) {
		k := st.kitchenOrders[id]
		w := st.waiters[k.WaiterID]
		k.OrderCode = st.orders[k.OrderID].Code
		k.TableCode = st.tables[k.ServingTableID].Code
		k.Waiter = &entity.WaiterName{FirstName: w.FirstName, LastName: w.LastName}
		tickets = append(tickets, k)
	}
	return tickets
}

// Payments

func (st *state) CreatePayment(ctx context.Context, payment *entity.Payment) error {
	defer st.lock()()
	if err := st.check("CreatePayment"); err != nil {
		return err
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	stored := *payment
	stored.Waiter = nil
	st.payments[payment.ID] = stored
	st.track(payment.ID)
	return nil
}

func (st *state) ListPayments(ctx context.Context) ([]entity.Payment, error) {
	defer st.lock()()
	var ids []string
	for id := range st.payments {
		ids = append(ids, id)
	}
	var payments []entity.Payment
	for _, id := range st.sorted(ids) {
		p := st.payments[id]
		w := st.waiters[p.WaiterID]
		p.Waiter = &entity.WaiterName{FirstName: w.FirstName, LastName: w.LastName}
		payments = append(payments, p)
	}
	return payments, nil
}

/*
Package sqlite provides a SQLite-backed implementation of commission.Store.

PURPOSE:
  Persists catalog products and sales, including their payment parts and
  commission entries, scoped by owner. Used by the server for local and
  single-node deployments.

KEY TABLES:
  products:           Catalog entries with their commission rule
  sales:              One row per quota; payment parts as JSON
  commission_entries: Scheduled entries, cascade-deleted with their sale

WHOLE-SALE WRITES:
  SaveSale upserts the sale row and replaces all its entries inside one
  transaction, so a reader never sees a sale with half of its schedule.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Entry lifecycle operations are
  additionally serialized per sale by commission.EntryManager.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/commissions.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := commission.NewSaleService(store, nil, nil)

MIGRATION:
  Versioned migrations under migrations/ are embedded in the binary and
  applied by golang-migrate on New().

SEE ALSO:
  - commission/store.go: Interface definitions
  - commission/store/memory.go: In-memory implementation for testing
  - store/postgres: Multi-node alternative
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/multicota/commission-engine/commission"
)

const timeLayout = time.RFC3339Nano

// Store implements commission.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ commission.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// =============================================================================
// SALES
// =============================================================================

const saleColumns = `id, owner_id, client_name, sale_date, project, product_id, category, role,
	sale_value, entry_table_value, rule_type, rule_value, commission_total, commission_status,
	payments_json, observation, created_at, updated_at`

// ListSales returns all sales of the owner ordered by sale date.
func (s *Store) ListSales(ctx context.Context, owner commission.OwnerID) ([]commission.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE owner_id = ? ORDER BY sale_date ASC, client_name ASC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := []commission.Sale{}
	index := make(map[commission.SaleID]int)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		index[sale.ID] = len(sales)
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries, err := s.queryEntries(ctx,
		`WHERE owner_id = ? ORDER BY sale_id, position`, owner)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if i, ok := index[e.SaleID]; ok {
			sales[i].CommissionEntries = append(sales[i].CommissionEntries, e)
		}
	}
	return sales, nil
}

// GetSale returns commission.ErrSaleNotFound when the owner has no such sale.
func (s *Store) GetSale(ctx context.Context, owner commission.OwnerID, id commission.SaleID) (commission.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE owner_id = ? AND id = ?`, owner, id)
	if err != nil {
		return commission.Sale{}, fmt.Errorf("failed to query sale: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return commission.Sale{}, err
		}
		return commission.Sale{}, commission.ErrSaleNotFound
	}
	sale, err := scanSale(rows)
	if err != nil {
		return commission.Sale{}, err
	}
	rows.Close()

	entries, err := s.queryEntries(ctx,
		`WHERE owner_id = ? AND sale_id = ? ORDER BY position`, owner, id)
	if err != nil {
		return commission.Sale{}, err
	}
	sale.CommissionEntries = append(sale.CommissionEntries, entries...)
	return sale, nil
}

// SaveSale upserts the sale and replaces its entries atomically.
func (s *Store) SaveSale(ctx context.Context, owner commission.OwnerID, sale commission.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payments := sale.EntryPayments
	if payments == nil {
		payments = []commission.PaymentPart{}
	}
	paymentsJSON, err := json.Marshal(payments)
	if err != nil {
		return fmt.Errorf("failed to encode payments: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, id) DO UPDATE SET
			client_name = excluded.client_name,
			sale_date = excluded.sale_date,
			project = excluded.project,
			product_id = excluded.product_id,
			category = excluded.category,
			role = excluded.role,
			sale_value = excluded.sale_value,
			entry_table_value = excluded.entry_table_value,
			rule_type = excluded.rule_type,
			rule_value = excluded.rule_value,
			commission_total = excluded.commission_total,
			commission_status = excluded.commission_status,
			payments_json = excluded.payments_json,
			observation = excluded.observation,
			updated_at = excluded.updated_at
	`,
		sale.ID,
		owner,
		sale.ClientName,
		sale.SaleDate.UTC().Format(timeLayout),
		sale.Project,
		nullString(string(sale.ProductID)),
		nullString(sale.Category),
		sale.Role,
		sale.SaleValue.String(),
		sale.EntryTableValue.String(),
		nullString(string(sale.Rule.Type)),
		sale.Rule.Value.String(),
		sale.CommissionTotal.String(),
		sale.CommissionStatus,
		string(paymentsJSON),
		nullString(sale.Observation),
		sale.CreatedAt.UTC().Format(timeLayout),
		sale.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save sale: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM commission_entries WHERE owner_id = ? AND sale_id = ?`, owner, sale.ID); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO commission_entries
		(id, owner_id, sale_id, position, description, amount, due_date, due_month, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range sale.CommissionEntries {
		_, err := stmt.ExecContext(ctx,
			e.ID, owner, sale.ID, i, e.Description, e.Amount.String(),
			e.DueDate.UTC().Format(timeLayout), e.DueMonth, e.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to save entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteSale removes the sale; its entries are cascade-deleted.
func (s *Store) DeleteSale(ctx context.Context, owner commission.OwnerID, id commission.SaleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE owner_id = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return nil
}

func (s *Store) queryEntries(ctx context.Context, where string, args ...any) ([]commission.CommissionEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, description, amount, due_date, due_month, status
		FROM commission_entries `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []commission.CommissionEntry
	for rows.Next() {
		var (
			e       commission.CommissionEntry
			amount  string
			dueDate string
		)
		if err := rows.Scan(&e.ID, &e.SaleID, &e.Description, &amount, &dueDate, &e.DueMonth, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("entry %s amount: %w", e.ID, err)
		}
		if e.DueDate, err = time.Parse(timeLayout, dueDate); err != nil {
			return nil, fmt.Errorf("entry %s due date: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanSale(rows *sql.Rows) (commission.Sale, error) {
	var (
		sale            commission.Sale
		saleDate        string
		productID       sql.NullString
		category        sql.NullString
		saleValue       string
		entryTableValue string
		ruleType        sql.NullString
		ruleValue       sql.NullString
		total           string
		paymentsJSON    string
		observation     sql.NullString
		createdAt       string
		updatedAt       string
	)

	err := rows.Scan(
		&sale.ID, &sale.OwnerID, &sale.ClientName, &saleDate, &sale.Project, &productID,
		&category, &sale.Role, &saleValue, &entryTableValue, &ruleType, &ruleValue,
		&total, &sale.CommissionStatus, &paymentsJSON, &observation, &createdAt, &updatedAt,
	)
	if err != nil {
		return sale, fmt.Errorf("failed to scan sale: %w", err)
	}

	sale.ProductID = commission.ProductID(productID.String)
	sale.Category = category.String
	sale.Observation = observation.String
	sale.Rule.Type = commission.CommissionType(ruleType.String)

	var d rowDecoder
	sale.SaleDate = d.time("sale_date", saleDate)
	sale.CreatedAt = d.time("created_at", createdAt)
	sale.UpdatedAt = d.time("updated_at", updatedAt)
	sale.SaleValue = d.decimal("sale_value", saleValue)
	sale.EntryTableValue = d.decimal("entry_table_value", entryTableValue)
	sale.CommissionTotal = d.decimal("commission_total", total)
	sale.Rule.Value = decimal.Zero
	if ruleValue.Valid {
		sale.Rule.Value = d.decimal("rule_value", ruleValue.String)
	}
	if d.err != nil {
		return sale, fmt.Errorf("sale %s: %w", sale.ID, d.err)
	}

	sale.EntryPayments = []commission.PaymentPart{}
	if err := json.Unmarshal([]byte(paymentsJSON), &sale.EntryPayments); err != nil {
		return sale, fmt.Errorf("sale %s payments: %w", sale.ID, err)
	}
	sale.CommissionEntries = []commission.CommissionEntry{}
	return sale, nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

const productColumns = `id, owner_id, title, location, price, bedrooms, category,
	rule_type, rule_value, overrides_json, created_at`

// ListProducts returns the owner's catalog, newest first.
func (s *Store) ListProducts(ctx context.Context, owner commission.OwnerID) ([]commission.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE owner_id = ? ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []commission.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct returns commission.ErrProductNotFound when the owner has no such product.
func (s *Store) GetProduct(ctx context.Context, owner commission.OwnerID, id commission.ProductID) (commission.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE owner_id = ? AND id = ?`, owner, id)
	if err != nil {
		return commission.Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return commission.Product{}, err
		}
		return commission.Product{}, commission.ErrProductNotFound
	}
	return scanProduct(rows)
}

// SaveProduct inserts or replaces a product.
func (s *Store) SaveProduct(ctx context.Context, owner commission.OwnerID, p commission.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var overrides sql.NullString
	if p.Overrides != nil {
		data, err := json.Marshal(p.Overrides)
		if err != nil {
			return fmt.Errorf("failed to encode overrides: %w", err)
		}
		overrides = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, id) DO UPDATE SET
			title = excluded.title,
			location = excluded.location,
			price = excluded.price,
			bedrooms = excluded.bedrooms,
			category = excluded.category,
			rule_type = excluded.rule_type,
			rule_value = excluded.rule_value,
			overrides_json = excluded.overrides_json
	`,
		p.ID,
		owner,
		p.Title,
		nullString(p.Location),
		p.Price.String(),
		p.Bedrooms,
		nullString(p.Category),
		p.Rule.Type,
		p.Rule.Value.String(),
		overrides,
		p.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// DeleteProduct removes a product. Sales referencing it keep their copy of
// the project name and rule.
func (s *Store) DeleteProduct(ctx context.Context, owner commission.OwnerID, id commission.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE owner_id = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func scanProduct(rows *sql.Rows) (commission.Product, error) {
	var (
		p         commission.Product
		location  sql.NullString
		price     string
		category  sql.NullString
		ruleValue string
		overrides sql.NullString
		createdAt string
	)

	err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &location, &price, &p.Bedrooms,
		&category, &p.Rule.Type, &ruleValue, &overrides, &createdAt)
	if err != nil {
		return p, fmt.Errorf("failed to scan product: %w", err)
	}

	p.Location = location.String
	p.Category = category.String

	var d rowDecoder
	p.Price = d.decimal("price", price)
	p.Rule.Value = d.decimal("rule_value", ruleValue)
	p.CreatedAt = d.time("created_at", createdAt)
	if d.err != nil {
		return p, fmt.Errorf("product %s: %w", p.ID, d.err)
	}

	if overrides.Valid && overrides.String != "" {
		var rc commission.RoleCommissions
		if err := json.Unmarshal([]byte(overrides.String), &rc); err != nil {
			return p, fmt.Errorf("product %s overrides: %w", p.ID, err)
		}
		p.Overrides = &rc
	}
	return p, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// rowDecoder converts text columns and keeps the first failure.
type rowDecoder struct {
	err error
}

func (d *rowDecoder) decimal(column, s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("%s: %w", column, err)
	}
	return v
}

func (d *rowDecoder) time(column, s string) time.Time {
	v, err := time.Parse(timeLayout, s)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("%s: %w", column, err)
	}
	return v
}

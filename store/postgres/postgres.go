/*
Package postgres provides a PostgreSQL-backed implementation of commission.Store.

PURPOSE:
  Shared persistence for deployments running more than one server process.
  Same contract as store/sqlite; the schema is managed by gorm AutoMigrate.

KEY TABLES:
  products:           Catalog entries, primary key (owner_id, id)
  sales:              One row per quota; payment parts as jsonb
  commission_entries: Scheduled entries, replaced on every sale save

MONEY:
  Amounts are numeric columns scanned straight into decimal.Decimal, so no
  float rounding happens between the engine and the database.

USAGE:
  store, err := postgres.Open(ctx, "host=localhost user=app dbname=multicota sslmode=disable")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - store/sqlite: Single-node implementation
  - commission/store.go: Interface definitions
*/
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/multicota/commission-engine/commission"
)

// =============================================================================
// ROWS
// =============================================================================

// ProductRow is the products table.
type ProductRow struct {
	OwnerID   string          `gorm:"primaryKey;size:64"`
	ID        string          `gorm:"primaryKey;size:64"`
	Title     string          `gorm:"size:255;not null"`
	Location  string          `gorm:"size:255"`
	Price     decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Bedrooms  int             `gorm:"not null;default:0"`
	Category  string          `gorm:"size:100"`
	RuleType  string          `gorm:"size:20;not null"`
	RuleValue decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Overrides *string         `gorm:"type:jsonb"`
	CreatedAt time.Time       `gorm:"index"`
}

func (ProductRow) TableName() string { return "products" }

// SaleRow is the sales table.
type SaleRow struct {
	OwnerID          string          `gorm:"primaryKey;size:64;index:idx_sales_owner_date,priority:1"`
	ID               string          `gorm:"primaryKey;size:64"`
	ClientName       string          `gorm:"size:255;not null"`
	SaleDate         time.Time       `gorm:"not null;index:idx_sales_owner_date,priority:2"`
	Project          string          `gorm:"size:255;not null"`
	ProductID        string          `gorm:"size:64"`
	Category         string          `gorm:"size:100"`
	Role             string          `gorm:"size:20;not null"`
	SaleValue        decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	EntryTableValue  decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	RuleType         string          `gorm:"size:20"`
	RuleValue        decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	CommissionTotal  decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	CommissionStatus string          `gorm:"size:20;not null"`
	Payments         string          `gorm:"type:jsonb;not null;default:'[]'"`
	Observation      string          `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (SaleRow) TableName() string { return "sales" }

// EntryRow is the commission_entries table.
type EntryRow struct {
	OwnerID     string          `gorm:"primaryKey;size:64;index:idx_entries_owner_month,priority:1"`
	SaleID      string          `gorm:"primaryKey;size:64"`
	ID          string          `gorm:"primaryKey;size:64"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"size:255;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	DueDate     time.Time       `gorm:"not null"`
	DueMonth    string          `gorm:"size:7;not null;index:idx_entries_owner_month,priority:2"`
	Status      string          `gorm:"size:20;not null;default:'predicted'"`
}

func (EntryRow) TableName() string { return "commission_entries" }

// =============================================================================
// STORE
// =============================================================================

// Store implements commission.Store on top of gorm.
type Store struct {
	DB *gorm.DB
}

var _ commission.Store = (*Store)(nil)

// Open connects to dsn and migrates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return New(ctx, db)
}

// New wraps an existing connection and migrates the schema.
func New(ctx context.Context, db *gorm.DB) (*Store, error) {
	if err := db.WithContext(ctx).AutoMigrate(&ProductRow{}, &SaleRow{}, &EntryRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// =============================================================================
// SALES
// =============================================================================

func (s *Store) ListSales(ctx context.Context, owner commission.OwnerID) ([]commission.Sale, error) {
	db := s.DB.WithContext(ctx)

	var rows []SaleRow
	if err := db.Where("owner_id = ?", string(owner)).
		Order("sale_date ASC, client_name ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	var entries []EntryRow
	if err := db.Where("owner_id = ?", string(owner)).
		Order("sale_id ASC, position ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	bySale := make(map[string][]EntryRow)
	for _, e := range entries {
		bySale[e.SaleID] = append(bySale[e.SaleID], e)
	}

	sales := make([]commission.Sale, 0, len(rows))
	for _, r := range rows {
		sale, err := fromSaleRow(r, bySale[r.ID])
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func (s *Store) GetSale(ctx context.Context, owner commission.OwnerID, id commission.SaleID) (commission.Sale, error) {
	db := s.DB.WithContext(ctx)

	var row SaleRow
	err := db.Where("owner_id = ? AND id = ?", string(owner), string(id)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return commission.Sale{}, commission.ErrSaleNotFound
	}
	if err != nil {
		return commission.Sale{}, fmt.Errorf("failed to load sale: %w", err)
	}

	var entries []EntryRow
	if err := db.Where("owner_id = ? AND sale_id = ?", string(owner), string(id)).
		Order("position ASC").
		Find(&entries).Error; err != nil {
		return commission.Sale{}, fmt.Errorf("failed to load entries: %w", err)
	}
	return fromSaleRow(row, entries)
}

// SaveSale upserts the sale and replaces its entries in one transaction.
func (s *Store) SaveSale(ctx context.Context, owner commission.OwnerID, sale commission.Sale) error {
	sale.OwnerID = owner
	row, entries, err := toSaleRow(sale)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}
		if err := tx.Where("owner_id = ? AND sale_id = ?", row.OwnerID, row.ID).
			Delete(&EntryRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear entries: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("failed to save entries: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteSale(ctx context.Context, owner commission.OwnerID, id commission.SaleID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ? AND sale_id = ?", string(owner), string(id)).
			Delete(&EntryRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete entries: %w", err)
		}
		if err := tx.Where("owner_id = ? AND id = ?", string(owner), string(id)).
			Delete(&SaleRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete sale: %w", err)
		}
		return nil
	})
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (s *Store) ListProducts(ctx context.Context, owner commission.OwnerID) ([]commission.Product, error) {
	var rows []ProductRow
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ?", string(owner)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]commission.Product, 0, len(rows))
	for _, r := range rows {
		p, err := fromProductRow(r)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, owner commission.OwnerID, id commission.ProductID) (commission.Product, error) {
	var row ProductRow
	err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND id = ?", string(owner), string(id)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return commission.Product{}, commission.ErrProductNotFound
	}
	if err != nil {
		return commission.Product{}, fmt.Errorf("failed to load product: %w", err)
	}
	return fromProductRow(row)
}

func (s *Store) SaveProduct(ctx context.Context, owner commission.OwnerID, p commission.Product) error {
	p.OwnerID = owner
	row, err := toProductRow(p)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, owner commission.OwnerID, id commission.ProductID) error {
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND id = ?", string(owner), string(id)).
		Delete(&ProductRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// =============================================================================
// ROW CONVERSION
// =============================================================================

func toSaleRow(s commission.Sale) (SaleRow, []EntryRow, error) {
	payments := s.EntryPayments
	if payments == nil {
		payments = []commission.PaymentPart{}
	}
	data, err := json.Marshal(payments)
	if err != nil {
		return SaleRow{}, nil, fmt.Errorf("failed to encode payments: %w", err)
	}

	row := SaleRow{
		OwnerID:          string(s.OwnerID),
		ID:               string(s.ID),
		ClientName:       s.ClientName,
		SaleDate:         s.SaleDate.UTC(),
		Project:          s.Project,
		ProductID:        string(s.ProductID),
		Category:         s.Category,
		Role:             string(s.Role),
		SaleValue:        s.SaleValue,
		EntryTableValue:  s.EntryTableValue,
		RuleType:         string(s.Rule.Type),
		RuleValue:        s.Rule.Value,
		CommissionTotal:  s.CommissionTotal,
		CommissionStatus: string(s.CommissionStatus),
		Payments:         string(data),
		Observation:      s.Observation,
		CreatedAt:        s.CreatedAt.UTC(),
		UpdatedAt:        s.UpdatedAt.UTC(),
	}

	entries := make([]EntryRow, 0, len(s.CommissionEntries))
	for i, e := range s.CommissionEntries {
		entries = append(entries, EntryRow{
			OwnerID:     row.OwnerID,
			SaleID:      row.ID,
			ID:          string(e.ID),
			Position:    i,
			Description: e.Description,
			Amount:      e.Amount,
			DueDate:     e.DueDate.UTC(),
			DueMonth:    e.DueMonth,
			Status:      string(e.Status),
		})
	}
	return row, entries, nil
}

func fromSaleRow(r SaleRow, entries []EntryRow) (commission.Sale, error) {
	sale := commission.Sale{
		ID:                commission.SaleID(r.ID),
		OwnerID:           commission.OwnerID(r.OwnerID),
		ClientName:        r.ClientName,
		SaleDate:          r.SaleDate.UTC(),
		Project:           r.Project,
		ProductID:         commission.ProductID(r.ProductID),
		Category:          r.Category,
		Role:              commission.Role(r.Role),
		SaleValue:         r.SaleValue,
		EntryTableValue:   r.EntryTableValue,
		Rule:              commission.CommissionRule{Type: commission.CommissionType(r.RuleType), Value: r.RuleValue},
		CommissionTotal:   r.CommissionTotal,
		CommissionStatus:  commission.CommissionStatus(r.CommissionStatus),
		EntryPayments:     []commission.PaymentPart{},
		CommissionEntries: make([]commission.CommissionEntry, 0, len(entries)),
		Observation:       r.Observation,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
	if r.Payments != "" {
		if err := json.Unmarshal([]byte(r.Payments), &sale.EntryPayments); err != nil {
			return sale, fmt.Errorf("sale %s payments: %w", r.ID, err)
		}
	}
	for _, e := range entries {
		sale.CommissionEntries = append(sale.CommissionEntries, commission.CommissionEntry{
			ID:          commission.EntryID(e.ID),
			SaleID:      sale.ID,
			Description: e.Description,
			Amount:      e.Amount,
			DueDate:     e.DueDate.UTC(),
			DueMonth:    e.DueMonth,
			Status:      commission.EntryStatus(e.Status),
		})
	}
	return sale, nil
}

func toProductRow(p commission.Product) (ProductRow, error) {
	row := ProductRow{
		OwnerID:   string(p.OwnerID),
		ID:        string(p.ID),
		Title:     p.Title,
		Location:  p.Location,
		Price:     p.Price,
		Bedrooms:  p.Bedrooms,
		Category:  p.Category,
		RuleType:  string(p.Rule.Type),
		RuleValue: p.Rule.Value,
		CreatedAt: p.CreatedAt.UTC(),
	}
	if p.Overrides != nil {
		data, err := json.Marshal(p.Overrides)
		if err != nil {
			return row, fmt.Errorf("failed to encode overrides: %w", err)
		}
		s := string(data)
		row.Overrides = &s
	}
	return row, nil
}

func fromProductRow(r ProductRow) (commission.Product, error) {
	p := commission.Product{
		ID:        commission.ProductID(r.ID),
		OwnerID:   commission.OwnerID(r.OwnerID),
		Title:     r.Title,
		Location:  r.Location,
		Price:     r.Price,
		Bedrooms:  r.Bedrooms,
		Category:  r.Category,
		Rule:      commission.CommissionRule{Type: commission.CommissionType(r.RuleType), Value: r.RuleValue},
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.Overrides != nil && *r.Overrides != "" {
		var rc commission.RoleCommissions
		if err := json.Unmarshal([]byte(*r.Overrides), &rc); err != nil {
			return p, fmt.Errorf("product %s overrides: %w", r.ID, err)
		}
		p.Overrides = &rc
	}
	return p, nil
}

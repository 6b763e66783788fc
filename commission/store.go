/*
store.go - Persistence interface for sales and products

PURPOSE:
  Defines the interface between the engine and whatever keeps its records.
  The engine only needs whole-entity reads and writes: list, get, save
  (insert or replace) and delete, scoped to an owner.

EXPLICIT OWNERSHIP:
  Every call takes the OwnerID. Implementations never look up a "current
  user" on their own; the caller decides whose data is read or written.

WHOLE-ENTITY WRITES:
  SaveSale replaces the full sale, entries included. Entry mutations read
  the sale, change one entry and save it back (see lifecycle.go).

IMPLEMENTATIONS:
  - commission/store/memory.go: In-memory for testing and dev
  - store/sqlite/sqlite.go: SQLite with versioned migrations
  - store/postgres/postgres.go: PostgreSQL through gorm

SEE ALSO:
  - lifecycle.go: Read-modify-write of entries
  - service.go: Sale creation and editing
*/
package commission

import "context"

// =============================================================================
// STORES
// =============================================================================

// SaleStore persists sales with their payments and entries.
type SaleStore interface {
	// ListSales returns all sales of the owner ordered by sale date.
	ListSales(ctx context.Context, owner OwnerID) ([]Sale, error)

	// GetSale returns ErrSaleNotFound when the owner has no such sale.
	GetSale(ctx context.Context, owner OwnerID, id SaleID) (Sale, error)

	// SaveSale inserts or replaces the sale.
	SaveSale(ctx context.Context, owner OwnerID, sale Sale) error

	// DeleteSale removes the sale and its entries. Deleting an absent sale
	// is not an error.
	DeleteSale(ctx context.Context, owner OwnerID, id SaleID) error
}

// ProductStore persists the owner's catalog.
type ProductStore interface {
	ListProducts(ctx context.Context, owner OwnerID) ([]Product, error)

	// GetProduct returns ErrProductNotFound when the owner has no such product.
	GetProduct(ctx context.Context, owner OwnerID, id ProductID) (Product, error)

	SaveProduct(ctx context.Context, owner OwnerID, product Product) error
	DeleteProduct(ctx context.Context, owner OwnerID, id ProductID) error
}

// Store is the full persistence collaborator.
type Store interface {
	SaleStore
	ProductStore
}

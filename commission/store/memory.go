// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/multicota/commission-engine/commission"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	sales    map[key]commission.Sale
	products map[key]commission.Product
}

type key struct {
	Owner commission.OwnerID
	ID    string
}

func NewMemory() *Memory {
	return &Memory{
		sales:    make(map[key]commission.Sale),
		products: make(map[key]commission.Product),
	}
}

var _ commission.Store = (*Memory)(nil)

// =============================================================================
// SALES
// =============================================================================

func (m *Memory) ListSales(_ context.Context, owner commission.OwnerID) ([]commission.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []commission.Sale{}
	for k, s := range m.sales {
		if k.Owner == owner {
			result = append(result, cloneSale(s))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].SaleDate.Equal(result[j].SaleDate) {
			return result[i].SaleDate.Before(result[j].SaleDate)
		}
		return result[i].ClientName < result[j].ClientName
	})
	return result, nil
}

func (m *Memory) GetSale(_ context.Context, owner commission.OwnerID, id commission.SaleID) (commission.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sales[key{Owner: owner, ID: string(id)}]
	if !ok {
		return commission.Sale{}, commission.ErrSaleNotFound
	}
	return cloneSale(s), nil
}

// SaveSale stores a copy, so later changes by the caller are not visible.
func (m *Memory) SaveSale(_ context.Context, owner commission.OwnerID, sale commission.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sale.OwnerID = owner
	m.sales[key{Owner: owner, ID: string(sale.ID)}] = cloneSale(sale)
	return nil
}

func (m *Memory) DeleteSale(_ context.Context, owner commission.OwnerID, id commission.SaleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sales, key{Owner: owner, ID: string(id)})
	return nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (m *Memory) ListProducts(_ context.Context, owner commission.OwnerID) ([]commission.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []commission.Product{}
	for k, p := range m.products {
		if k.Owner == owner {
			result = append(result, p)
		}
	}
	// newest first, like the catalog screen
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *Memory) GetProduct(_ context.Context, owner commission.OwnerID, id commission.ProductID) (commission.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[key{Owner: owner, ID: string(id)}]
	if !ok {
		return commission.Product{}, commission.ErrProductNotFound
	}
	return p, nil
}

func (m *Memory) SaveProduct(_ context.Context, owner commission.OwnerID, product commission.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product.OwnerID = owner
	if product.Overrides != nil {
		o := *product.Overrides
		product.Overrides = &o
	}
	m.products[key{Owner: owner, ID: string(product.ID)}] = product
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, owner commission.OwnerID, id commission.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.products, key{Owner: owner, ID: string(id)})
	return nil
}

func cloneSale(s commission.Sale) commission.Sale {
	s.EntryPayments = append([]commission.PaymentPart{}, s.EntryPayments...)
	s.CommissionEntries = append([]commission.CommissionEntry{}, s.CommissionEntries...)
	return s
}

package commission

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SALE SERVICE - builds and persists sales
// =============================================================================

// SaleService resolves projects, runs the builder and stores the result.
type SaleService struct {
	Store   Store
	Builder *SaleBuilder
	Locks   *SaleLocks
}

// NewSaleService wires a service. locks must be the set shared with the
// EntryManager over the same store; nil gets a private set.
func NewSaleService(store Store, builder *SaleBuilder, locks *SaleLocks) *SaleService {
	if builder == nil {
		builder = NewSaleBuilder()
	}
	if locks == nil {
		locks = NewSaleLocks()
	}
	return &SaleService{Store: store, Builder: builder, Locks: locks}
}

// Preview is the commission a submission would generate, without saving.
type Preview struct {
	Total      decimal.Decimal // whole submission
	PerQuota   decimal.Decimal
	QuotaQty   int
	Rule       CommissionRule
	FirstQuota Sale
}

// CreateSales builds one sale per requested quota and saves them in order.
// When a save fails, the sales built so far are returned with the error so
// the computed schedules are not lost.
func (s *SaleService) CreateSales(ctx context.Context, owner OwnerID, req SaleRequest) ([]Sale, error) {
	product, err := s.resolveProduct(ctx, owner, req.Project)
	if err != nil {
		return nil, err
	}

	sales := s.Builder.Build(owner, req, product)
	for _, sale := range sales {
		if err := s.Store.SaveSale(ctx, owner, sale); err != nil {
			return sales, fmt.Errorf("save sale %s: %w", sale.ID, err)
		}
	}
	return sales, nil
}

// UpdateSale rebuilds one existing sale from an edited submission.
func (s *SaleService) UpdateSale(ctx context.Context, owner OwnerID, id SaleID, req SaleRequest) (Sale, error) {
	unlock := s.Locks.Lock(owner, id)
	defer unlock()

	existing, err := s.Store.GetSale(ctx, owner, id)
	if err != nil {
		return Sale{}, err
	}
	product, err := s.resolveProduct(ctx, owner, req.Project)
	if err != nil {
		return Sale{}, err
	}

	sale := s.Builder.Rebuild(existing, req, product)
	if err := s.Store.SaveSale(ctx, owner, sale); err != nil {
		return sale, fmt.Errorf("save sale %s: %w", sale.ID, err)
	}
	return sale, nil
}

// DeleteSale removes a sale together with its entries.
func (s *SaleService) DeleteSale(ctx context.Context, owner OwnerID, id SaleID) error {
	unlock := s.Locks.Lock(owner, id)
	defer unlock()

	return s.Store.DeleteSale(ctx, owner, id)
}

// Preview computes what CreateSales would produce for the first quota.
func (s *SaleService) Preview(ctx context.Context, owner OwnerID, req SaleRequest) (Preview, error) {
	product, err := s.resolveProduct(ctx, owner, req.Project)
	if err != nil {
		return Preview{}, err
	}

	qty := req.QuotaQty
	if qty < 1 {
		qty = 1
	}
	total := s.Builder.Total(req, product)
	first := s.Builder.First(owner, req, product)
	return Preview{
		Total:      total,
		PerQuota:   first.CommissionTotal,
		QuotaQty:   qty,
		Rule:       first.Rule,
		FirstQuota: first,
	}, nil
}

func (s *SaleService) resolveProduct(ctx context.Context, owner OwnerID, ref ProjectRef) (*Product, error) {
	cp, ok := ref.(CatalogProduct)
	if !ok {
		return nil, nil
	}
	p, err := s.Store.GetProduct(ctx, owner, cp.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

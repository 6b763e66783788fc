/*
builder.go - Multi-quota sale construction

PURPOSE:
  Expands one sale submission into independent Sale records, one per quota,
  each carrying its own payments and generated commission schedule.

QUOTA SPLIT:
  - The submitted signal is COMBINED across all quotas: per-quota signal is
    signal / quotaQty
  - The submitted entry value is already PER QUOTA: per-quota remaining is
    max(0, entry - per-quota signal)
  - The commission is resolved once for the whole submission and divided by
    quotaQty, so the quotas sum to the single-request total

NAMING:
  More than one quota suffixes the client name with a two-digit index:
  "Maria - Cota 01", "Maria - Cota 02", ... A single quota is unsuffixed.

EDITING:
  Rebuild always targets exactly one existing sale, whatever its original
  quota count. The sale keeps its ID and creation time; its entries are
  regenerated from the edited request.

SEE ALSO:
  - rule.go: ResolveCommission
  - schedule.go: GenerateSchedule
  - service.go: Persists what the builder produces
*/
package commission

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentLeg is the signal as submitted (combined across quotas).
type PaymentLeg struct {
	Amount decimal.Decimal
	Method PaymentMethod
}

// InstallmentPlan describes how the remaining entry balance is paid.
type InstallmentPlan struct {
	Method PaymentMethod
	Count  int
}

// SaleRequest is one sale submission.
type SaleRequest struct {
	ClientName  string
	SaleDate    time.Time
	Project     ProjectRef
	Category    string
	Role        Role
	TableValue  decimal.Decimal // per quota; falls back to the product price when zero
	EntryValue  decimal.Decimal // per quota
	QuotaQty    int
	Signal      *PaymentLeg
	Plan        *InstallmentPlan
	Observation string

	// ManualRule prices a ManualProject. Ignored for catalog products.
	ManualRule *CommissionRule
}

// SaleBuilder turns requests into sales.
type SaleBuilder struct {
	NewID IDGenerator
	Now   func() time.Time
}

// NewSaleBuilder returns a builder using random UUIDs and the wall clock.
func NewSaleBuilder() *SaleBuilder {
	return &SaleBuilder{NewID: NewUUID, Now: time.Now}
}

// Build creates quotaQty new sales for owner. product must be the resolved
// catalog product for a CatalogProduct request, nil for a ManualProject.
func (b *SaleBuilder) Build(owner OwnerID, req SaleRequest, product *Product) []Sale {
	qty := req.QuotaQty
	if qty < 1 {
		qty = 1
	}

	now := b.now()
	sales := make([]Sale, 0, qty)
	for i := 1; i <= qty; i++ {
		sales = append(sales, b.newQuota(owner, req, product, qty, i, now))
	}
	return sales
}

// First builds only the first of the sales Build would create.
func (b *SaleBuilder) First(owner OwnerID, req SaleRequest, product *Product) Sale {
	qty := req.QuotaQty
	if qty < 1 {
		qty = 1
	}
	return b.newQuota(owner, req, product, qty, 1, b.now())
}

// newQuota builds quota i of qty with a fresh identity.
func (b *SaleBuilder) newQuota(owner OwnerID, req SaleRequest, product *Product, qty, i int, now time.Time) Sale {
	sale := b.quota(req, product, qty)
	sale.ID = SaleID(b.id())
	sale.OwnerID = owner
	sale.ClientName = req.ClientName
	if qty > 1 {
		sale.ClientName = fmt.Sprintf("%s - Cota %02d", req.ClientName, i)
	}
	sale.CreatedAt = now
	sale.UpdatedAt = now
	for j := range sale.CommissionEntries {
		sale.CommissionEntries[j].SaleID = sale.ID
	}
	return sale
}

// Rebuild recomputes one existing sale from an edited request.
func (b *SaleBuilder) Rebuild(existing Sale, req SaleRequest, product *Product) Sale {
	sale := b.quota(req, product, 1)
	sale.ID = existing.ID
	sale.OwnerID = existing.OwnerID
	sale.ClientName = req.ClientName
	sale.CreatedAt = existing.CreatedAt
	sale.UpdatedAt = b.now()
	for j := range sale.CommissionEntries {
		sale.CommissionEntries[j].SaleID = sale.ID
	}
	return sale
}

// Total resolves the commission for the whole submission.
func (b *SaleBuilder) Total(req SaleRequest, product *Product) decimal.Decimal {
	qty := req.QuotaQty
	if qty < 1 {
		qty = 1
	}
	return ResolveCommission(ruleInput(req, product, qty))
}

// quota builds one sale of a submission split into loop quotas. Identity
// fields are filled in by the caller.
func (b *SaleBuilder) quota(req SaleRequest, product *Product, loop int) Sale {
	loopDec := decimal.NewFromInt(int64(loop))
	in := ruleInput(req, product, loop)
	perQuota := ResolveCommission(in).Div(loopDec)

	signal := decimal.Zero
	if req.Signal != nil {
		signal = req.Signal.Amount.Div(loopDec)
	}
	remaining := decimal.Max(decimal.Zero, req.EntryValue.Sub(signal))

	sched := ScheduleInput{
		TotalCommission:     perQuota,
		SaleDate:            req.SaleDate,
		EntryReferenceValue: req.EntryValue,
		NewID:               b.NewID,
	}
	var payments []PaymentPart
	if req.Signal != nil && signal.IsPositive() {
		sched.Signal = &SignalLeg{Amount: signal, Method: req.Signal.Method}
		payments = append(payments, PaymentPart{
			ID: b.id(), Method: req.Signal.Method, Amount: signal, Installments: 1,
		})
	}
	if req.Plan != nil && remaining.IsPositive() && req.Plan.Count > 0 {
		sched.Installments = &InstallmentLeg{Remaining: remaining, Method: req.Plan.Method, Count: req.Plan.Count}
		payments = append(payments, PaymentPart{
			ID: b.id(), Method: req.Plan.Method, Amount: remaining, Installments: req.Plan.Count,
		})
	}
	schedule := GenerateSchedule(sched)

	saleValue := in.TableValue
	if !saleValue.IsPositive() {
		saleValue = req.EntryValue
	}

	sale := Sale{
		SaleDate:          req.SaleDate.UTC(),
		Role:              req.Role,
		SaleValue:         saleValue,
		EntryTableValue:   req.EntryValue,
		Rule:              in.Rule,
		CommissionTotal:   schedule.Total,
		CommissionStatus:  schedule.Status,
		EntryPayments:     payments,
		CommissionEntries: schedule.Entries,
		Observation:       req.Observation,
		Category:          req.Category,
	}
	if payments == nil {
		sale.EntryPayments = []PaymentPart{}
	}

	switch p := req.Project.(type) {
	case CatalogProduct:
		sale.ProductID = p.ID
		if product != nil {
			sale.Project = product.Title
			if sale.Category == "" {
				sale.Category = productCategory(product)
			}
		}
	case ManualProject:
		sale.Project = p.Name
	}
	return sale
}

func ruleInput(req SaleRequest, product *Product, qty int) RuleInput {
	in := RuleInput{Role: req.Role, TableValue: req.TableValue, Quantity: qty}
	if product != nil {
		in.Rule = product.Rule
		in.Overrides = product.Overrides
		if in.TableValue.IsZero() {
			in.TableValue = product.Price
		}
	} else if req.ManualRule != nil {
		in.Rule = *req.ManualRule
	}
	return in
}

func productCategory(p *Product) string {
	if p.Category != "" {
		return p.Category
	}
	if p.Bedrooms > 0 {
		return fmt.Sprintf("%d Quartos", p.Bedrooms)
	}
	return ""
}

func (b *SaleBuilder) id() string {
	if b.NewID == nil {
		return NewUUID()
	}
	return b.NewID()
}

func (b *SaleBuilder) now() time.Time {
	if b.Now == nil {
		return time.Now().UTC()
	}
	return b.Now().UTC()
}

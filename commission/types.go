/*
Package commission provides the commission amortization and entry scheduling engine.

PURPOSE:
  A fractional-ownership ("multicota") sale pays its salesperson in installments
  that mirror the buyer's own entry-payment schedule. This package computes how
  much commission a sale generates, spreads it across a signal payment and N
  monthly installments, and manages the lifecycle of each scheduled entry.

KEY CONCEPTS IN THIS FILE (types.go):
  - Product: catalog item carrying the commission rule
  - Sale: one quota of a transaction, owning its payments and entries
  - CommissionEntry: one scheduled receivable (predicted, received, cancelled)
  - ProjectRef: catalog product or manually named project
  - Role / PaymentMethod: closed enumerations of the domain

DESIGN PRINCIPLES:
  1. Snapshots: a Sale copies the resolved commission rule, it never keeps a
     live reference to the Product
  2. Total functions: degenerate inputs produce empty schedules, not errors
  3. Explicit ownership: every persistence call names the owner

USAGE:
  total := commission.ResolveCommission(commission.RuleInput{
      Rule:       product.Rule,
      Overrides:  product.Overrides,
      Role:       commission.RoleFTB,
      TableValue: product.Price,
      Quantity:   1,
  })

SEE ALSO:
  - calendar.go: Month arithmetic with end-of-month clamping
  - rule.go: Commission rule resolution
  - schedule.go: Entry schedule generation
  - lifecycle.go: Entry mutations
*/
package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OwnerID string
type SaleID string
type EntryID string
type ProductID string

// GuestOwner scopes data for callers that did not identify themselves.
const GuestOwner OwnerID = "00000000-0000-0000-0000-000000000000"

// =============================================================================
// ROLES
// =============================================================================

// Role is the commission-earner role of the salesperson on a sale.
type Role string

const (
	RoleCaptador Role = "CAPTADOR"
	RoleLiner    Role = "LINER"
	RoleCloser   Role = "CLOSER"
	RoleFTB      Role = "FTB" // first-to-book, the primary role
)

// Roles lists every role in display order.
var Roles = []Role{RoleCaptador, RoleLiner, RoleCloser, RoleFTB}

func (r Role) Valid() bool {
	switch r {
	case RoleCaptador, RoleLiner, RoleCloser, RoleFTB:
		return true
	}
	return false
}

// IsPrimary reports whether the role earns the doubled base commission.
func (r Role) IsPrimary() bool { return r == RoleFTB }

// =============================================================================
// PAYMENT METHODS
// =============================================================================

type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "credit_card"
	MethodPix        PaymentMethod = "pix"
	MethodDebitCard  PaymentMethod = "debit_card"
	MethodCash       PaymentMethod = "cash"
	MethodBoleto     PaymentMethod = "boleto"
)

var methodLabels = map[PaymentMethod]string{
	MethodCreditCard: "Cartão de Crédito",
	MethodPix:        "Pix",
	MethodDebitCard:  "Débito",
	MethodCash:       "Dinheiro",
	MethodBoleto:     "Boleto",
}

// Label returns the human-readable name used in entry descriptions.
func (m PaymentMethod) Label() string {
	if l, ok := methodLabels[m]; ok {
		return l
	}
	return string(m)
}

func (m PaymentMethod) Valid() bool {
	_, ok := methodLabels[m]
	return ok
}

// SettlementDelay is the number of months between a payment and the month the
// commission on it becomes due. Card payments settle one month later.
func (m PaymentMethod) SettlementDelay() int {
	if m == MethodCreditCard {
		return 2
	}
	return 1
}

// =============================================================================
// COMMISSION RULE
// =============================================================================

type CommissionType string

const (
	CommissionPercentage CommissionType = "percentage"
	CommissionFixed      CommissionType = "fixed"
)

// CommissionRule is the product-level rule: a percentage of the table value
// or a flat amount per unit.
type CommissionRule struct {
	Type  CommissionType  `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// RoleCommissions holds flat per-unit overrides, one per role. A zero or
// negative value means "no override" for that role.
type RoleCommissions struct {
	Captador decimal.Decimal `json:"captador"`
	Liner    decimal.Decimal `json:"liner"`
	Closer   decimal.Decimal `json:"closer"`
	FTB      decimal.Decimal `json:"ftb"`
}

// For returns the override for role.
func (rc RoleCommissions) For(role Role) decimal.Decimal {
	switch role {
	case RoleCaptador:
		return rc.Captador
	case RoleLiner:
		return rc.Liner
	case RoleCloser:
		return rc.Closer
	case RoleFTB:
		return rc.FTB
	}
	return decimal.Zero
}

// =============================================================================
// PRODUCT
// =============================================================================

type Product struct {
	ID        ProductID        `json:"id"`
	OwnerID   OwnerID          `json:"owner_id"`
	Title     string           `json:"title"`
	Location  string           `json:"location,omitempty"`
	Price     decimal.Decimal  `json:"price"`
	Bedrooms  int              `json:"bedrooms,omitempty"`
	Category  string           `json:"category,omitempty"`
	Rule      CommissionRule   `json:"rule"`
	Overrides *RoleCommissions `json:"overrides,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// =============================================================================
// PROJECT REFERENCE - catalog product or manual project
// =============================================================================

// ProjectRef identifies what was sold. It is either a CatalogProduct or a
// ManualProject; no other implementations exist.
type ProjectRef interface {
	isProjectRef()
}

type CatalogProduct struct {
	ID ProductID
}

type ManualProject struct {
	Name string
}

func (CatalogProduct) isProjectRef() {}
func (ManualProject) isProjectRef()  {}

// =============================================================================
// SALE
// =============================================================================

type CommissionStatus string

const (
	StatusComputed CommissionStatus = "computed"
)

// PaymentPart is one physical payment commitment made by the buyer.
type PaymentPart struct {
	ID           string          `json:"id"`
	Method       PaymentMethod   `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	Installments int             `json:"installments"`
}

// Sale is one quota of a transaction.
type Sale struct {
	ID                SaleID            `json:"id"`
	OwnerID           OwnerID           `json:"owner_id"`
	ClientName        string            `json:"client_name"`
	SaleDate          time.Time         `json:"sale_date"`
	Project           string            `json:"project"`
	ProductID         ProductID         `json:"product_id,omitempty"`
	Category          string            `json:"category,omitempty"`
	Role              Role              `json:"role"`
	SaleValue         decimal.Decimal   `json:"sale_value"`
	EntryTableValue   decimal.Decimal   `json:"entry_table_value"`
	Rule              CommissionRule    `json:"rule"`
	CommissionTotal   decimal.Decimal   `json:"commission_total"`
	CommissionStatus  CommissionStatus  `json:"commission_status"`
	EntryPayments     []PaymentPart     `json:"entry_payments"`
	CommissionEntries []CommissionEntry `json:"commission_entries"`
	Observation       string            `json:"observation,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Entry returns the entry with the given ID.
func (s *Sale) Entry(id EntryID) (CommissionEntry, bool) {
	for _, e := range s.CommissionEntries {
		if e.ID == id {
			return e, true
		}
	}
	return CommissionEntry{}, false
}

// EntriesTotal sums the amounts of all entries, whatever their status.
func (s *Sale) EntriesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.CommissionEntries {
		total = total.Add(e.Amount)
	}
	return total
}

// =============================================================================
// COMMISSION ENTRY
// =============================================================================

type EntryStatus string

const (
	EntryPredicted EntryStatus = "predicted"
	EntryReceived  EntryStatus = "received"
	EntryCancelled EntryStatus = "cancelled"
)

// CommissionEntry is one scheduled commission receivable.
type CommissionEntry struct {
	ID          EntryID         `json:"id"`
	SaleID      SaleID          `json:"sale_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	DueMonth    string          `json:"due_month"`
	Status      EntryStatus     `json:"status"`
}

/*
schedule.go - Commission schedule generation

PURPOSE:
  Turns a per-unit commission total into dated, proportionally sized entries
  that follow how the buyer pays the entry value: a signal (down payment)
  followed by N monthly installments of the remaining balance.

PROPORTIONAL ALLOCATION:
  Commission is earned in proportion to the share of the entry value each
  payment leg collects:

    signal entry      = total * signal / reference
    installment entry = total * remaining / reference / count

  When signal + remaining == reference the entries sum to total.

DUE DATES:
  ┌────────────┐   +1 month (+2 for card)   ┌────────────┐  +1..+N months  ┌──────────────┐
  │ sale date  │ ─────────────────────────▶ │ signal due │ ──────────────▶ │ installments │
  └────────────┘                            └────────────┘                 └──────────────┘

  Installment i is due at base + i months, where base is the signal due date,
  or the sale date when there is no signal. Every step clamps to the end of
  the month (see calendar.go).

DEGENERATE INPUTS:
  - total <= 0:      empty schedule, status computed, total zero
  - reference == 0:  treated as 1
  - absent legs:     simply produce no entries

EXAMPLE:
  s := GenerateSchedule(ScheduleInput{
      TotalCommission:     decimal.NewFromInt(20000),
      SaleDate:            march15,
      EntryReferenceValue: decimal.NewFromInt(4000),
      Signal:              &SignalLeg{Amount: decimal.NewFromInt(1500), Method: MethodPix},
      Installments:        &InstallmentLeg{Remaining: decimal.NewFromInt(2500), Method: MethodBoleto, Count: 4},
  })
  // 7500 due 2024-04-15, then 4 x 3125 due 2024-05-15 .. 2024-08-15

SEE ALSO:
  - rule.go: Produces TotalCommission
  - builder.go: Calls this once per quota
*/
package commission

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SignalLeg is the down payment of the entry value.
type SignalLeg struct {
	Amount decimal.Decimal
	Method PaymentMethod
}

// InstallmentLeg is the remaining entry balance paid in Count installments.
type InstallmentLeg struct {
	Remaining decimal.Decimal
	Method    PaymentMethod
	Count     int
}

// ScheduleInput contains all inputs for schedule generation.
type ScheduleInput struct {
	SaleID              SaleID
	TotalCommission     decimal.Decimal // per unit
	SaleDate            time.Time
	EntryReferenceValue decimal.Decimal
	Signal              *SignalLeg
	Installments        *InstallmentLeg
	NewID               IDGenerator // defaults to NewUUID
}

// Schedule is the generated commission plan for one quota.
type Schedule struct {
	Total   decimal.Decimal
	Status  CommissionStatus
	Entries []CommissionEntry
}

// GenerateSchedule builds the entries for one quota. It has no side effects
// beyond drawing identifiers and is safe for concurrent use.
func GenerateSchedule(in ScheduleInput) Schedule {
	if !in.TotalCommission.IsPositive() {
		return Schedule{Total: decimal.Zero, Status: StatusComputed, Entries: []CommissionEntry{}}
	}

	newID := in.NewID
	if newID == nil {
		newID = NewUUID
	}
	reference := in.EntryReferenceValue
	if reference.IsZero() {
		reference = decimal.NewFromInt(1)
	}

	entries := make([]CommissionEntry, 0, 1+installmentCount(in.Installments))
	base := in.SaleDate.UTC()

	if in.Signal != nil && in.Signal.Amount.IsPositive() {
		due := AddMonths(in.SaleDate, in.Signal.Method.SettlementDelay())
		entries = append(entries, CommissionEntry{
			ID:          EntryID(newID()),
			SaleID:      in.SaleID,
			Description: fmt.Sprintf("Comissão Sinal (%s)", in.Signal.Method.Label()),
			Amount:      in.TotalCommission.Mul(in.Signal.Amount.Div(reference)),
			DueDate:     due,
			DueMonth:    DueMonth(due),
			Status:      EntryPredicted,
		})
		base = due
	}

	if leg := in.Installments; leg != nil && leg.Remaining.IsPositive() && leg.Count > 0 {
		legTotal := in.TotalCommission.Mul(leg.Remaining.Div(reference))
		each := legTotal.Div(decimal.NewFromInt(int64(leg.Count)))
		for i := 1; i <= leg.Count; i++ {
			due := AddMonths(base, i)
			entries = append(entries, CommissionEntry{
				ID:          EntryID(newID()),
				SaleID:      in.SaleID,
				Description: fmt.Sprintf("Comissão Parc. %d/%d", i, leg.Count),
				Amount:      each,
				DueDate:     due,
				DueMonth:    DueMonth(due),
				Status:      EntryPredicted,
			})
		}
	}

	return Schedule{Total: in.TotalCommission, Status: StatusComputed, Entries: entries}
}

func installmentCount(leg *InstallmentLeg) int {
	if leg == nil || leg.Count < 0 {
		return 0
	}
	return leg.Count
}

/*
lifecycle.go - Commission entry lifecycle

PURPOSE:
  Mutates individual commission entries of a persisted sale: mark received,
  block, delete, correct the amount, push to next month.

STATE MACHINE:
                 ToggleReceived
   ┌───────────┐ ◀────────────▶ ┌──────────┐
   │ predicted │                │ received │
   └───────────┘                └──────────┘
        ▲  │
        │  │ ToggleBlocked
        │  ▼
   ┌───────────┐
   │ cancelled │  ToggleReceived is a no-op here
   └───────────┘

  Blocking a received entry is rejected with ErrEntryReceived: a commission
  already in hand cannot be blocked. Unmark it first.

READ-MODIFY-WRITE:
  Each operation loads the whole sale, replaces one entry and saves the whole
  sale back. Operations on the same sale are serialized by a SaleLocks value,
  shared with SaleService so sale edits and deletes queue behind entry
  mutations too. Writers in other processes are not coordinated.

IDEMPOTENCY:
  DeleteEntry on an absent entry is a no-op. The toggles are intentionally
  NOT idempotent: applying one twice returns the entry to where it started.

SEE ALSO:
  - calendar.go: AddMonths used by Reschedule
  - store.go: SaleStore contract
  - locks.go: SaleLocks
*/
package commission

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTRY TRANSITIONS - pure, no persistence
// =============================================================================

// ToggleReceived flips predicted and received. Cancelled entries are
// returned unchanged.
func (e CommissionEntry) ToggleReceived() CommissionEntry {
	switch e.Status {
	case EntryPredicted:
		e.Status = EntryReceived
	case EntryReceived:
		e.Status = EntryPredicted
	}
	return e
}

// ToggleBlocked flips predicted and cancelled.
func (e CommissionEntry) ToggleBlocked() (CommissionEntry, error) {
	switch e.Status {
	case EntryCancelled:
		e.Status = EntryPredicted
	case EntryPredicted:
		e.Status = EntryCancelled
	case EntryReceived:
		return e, &TransitionError{EntryID: e.ID, From: e.Status, Action: "block", Reason: ErrEntryReceived}
	default:
		return e, &TransitionError{EntryID: e.ID, From: e.Status, Action: "block", Reason: fmt.Errorf("unknown status")}
	}
	return e, nil
}

// WithAmount replaces the amount. The sale total is not re-validated.
func (e CommissionEntry) WithAmount(amount decimal.Decimal) CommissionEntry {
	e.Amount = amount
	return e
}

// Rescheduled moves the entry one month forward.
func (e CommissionEntry) Rescheduled() CommissionEntry {
	e.DueDate = AddMonths(e.DueDate, 1)
	e.DueMonth = DueMonth(e.DueDate)
	return e
}

// =============================================================================
// ENTRY MANAGER - persisted mutations
// =============================================================================

// EntryManager applies entry transitions to stored sales.
type EntryManager struct {
	Sales SaleStore
	Locks *SaleLocks
}

// NewEntryManager creates a manager over sales. Pass the SaleLocks of the
// SaleService writing the same store; nil gets a private set.
func NewEntryManager(sales SaleStore, locks *SaleLocks) *EntryManager {
	if locks == nil {
		locks = NewSaleLocks()
	}
	return &EntryManager{Sales: sales, Locks: locks}
}

// ToggleReceived marks the entry received, or back to predicted.
func (m *EntryManager) ToggleReceived(ctx context.Context, owner OwnerID, saleID SaleID, entryID EntryID) (CommissionEntry, error) {
	return m.update(ctx, owner, saleID, entryID, func(e CommissionEntry) (CommissionEntry, error) {
		return e.ToggleReceived(), nil
	})
}

// ToggleBlocked cancels a predicted entry or restores a cancelled one.
func (m *EntryManager) ToggleBlocked(ctx context.Context, owner OwnerID, saleID SaleID, entryID EntryID) (CommissionEntry, error) {
	return m.update(ctx, owner, saleID, entryID, CommissionEntry.ToggleBlocked)
}

// EditAmount overrides the entry amount.
func (m *EntryManager) EditAmount(ctx context.Context, owner OwnerID, saleID SaleID, entryID EntryID, amount decimal.Decimal) (CommissionEntry, error) {
	return m.update(ctx, owner, saleID, entryID, func(e CommissionEntry) (CommissionEntry, error) {
		return e.WithAmount(amount), nil
	})
}

// Reschedule pushes the entry one month forward.
func (m *EntryManager) Reschedule(ctx context.Context, owner OwnerID, saleID SaleID, entryID EntryID) (CommissionEntry, error) {
	return m.update(ctx, owner, saleID, entryID, func(e CommissionEntry) (CommissionEntry, error) {
		return e.Rescheduled(), nil
	})
}

// DeleteEntry removes the entry from its sale. Removing an entry that is
// already gone succeeds without writing.
func (m *EntryManager) DeleteEntry(ctx context.Context, owner OwnerID, saleID SaleID, entryID EntryID) error {
	unlock := m.Locks.Lock(owner, saleID)
	defer unlock()

	sale, err := m.Sales.GetSale(ctx, owner, saleID)
	if err != nil {
		return err
	}

	kept := make([]CommissionEntry, 0, len(sale.CommissionEntries))
	for _, e := range sale.CommissionEntries {
		if e.ID != entryID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(sale.CommissionEntries) {
		return nil
	}
	sale.CommissionEntries = kept
	return m.Sales.SaveSale(ctx, owner, sale)
}

func (m *EntryManager) update(
	ctx context.Context,
	owner OwnerID,
	saleID SaleID,
	entryID EntryID,
	fn func(CommissionEntry) (CommissionEntry, error),
) (CommissionEntry, error) {
	unlock := m.Locks.Lock(owner, saleID)
	defer unlock()

	sale, err := m.Sales.GetSale(ctx, owner, saleID)
	if err != nil {
		return CommissionEntry{}, err
	}

	for i, e := range sale.CommissionEntries {
		if e.ID != entryID {
			continue
		}
		updated, err := fn(e)
		if err != nil {
			return e, err
		}
		if sameEntry(updated, e) {
			return e, nil
		}
		sale.CommissionEntries[i] = updated
		if err := m.Sales.SaveSale(ctx, owner, sale); err != nil {
			return e, fmt.Errorf("save sale %s: %w", saleID, err)
		}
		return updated, nil
	}
	return CommissionEntry{}, fmt.Errorf("entry %s of sale %s: %w", entryID, saleID, ErrEntryNotFound)
}

func sameEntry(a, b CommissionEntry) bool {
	return a.Status == b.Status &&
		a.Amount.Equal(b.Amount) &&
		a.DueDate.Equal(b.DueDate) &&
		a.Description == b.Description
}

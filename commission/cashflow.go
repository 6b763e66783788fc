/*
cashflow.go - Commission cash flow and role reports

PURPOSE:
  Aggregates scheduled entries into due-month buckets so a salesperson can
  see what is expected, what already arrived and what was blocked, month by
  month. Also summarizes sales per role.

BUCKETING:
  Entries fall into the bucket of their DueMonth (YYYY-MM). Buckets are
  returned in ascending month order; months without entries are omitted.

  Pending = predicted amounts only. Cancelled amounts are reported apart
  and never counted as expected income.

SEE ALSO:
  - calendar.go: DueMonth
  - lifecycle.go: Moves entries between statuses and months
*/
package commission

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MonthBucket is the cash flow of one due month.
type MonthBucket struct {
	Month     string
	Predicted decimal.Decimal
	Received  decimal.Decimal
	Cancelled decimal.Decimal
	Entries   int
}

// Expected is what the month should yield: predicted plus received.
func (b MonthBucket) Expected() decimal.Decimal {
	return b.Predicted.Add(b.Received)
}

// BuildCashFlow groups all entries of sales by due month. from and to are
// optional inclusive YYYY-MM bounds; pass "" to leave a side open.
func BuildCashFlow(sales []Sale, from, to string) []MonthBucket {
	buckets := make(map[string]*MonthBucket)
	for _, s := range sales {
		for _, e := range s.CommissionEntries {
			if from != "" && e.DueMonth < from {
				continue
			}
			if to != "" && e.DueMonth > to {
				continue
			}
			b, ok := buckets[e.DueMonth]
			if !ok {
				b = &MonthBucket{
					Month:     e.DueMonth,
					Predicted: decimal.Zero,
					Received:  decimal.Zero,
					Cancelled: decimal.Zero,
				}
				buckets[e.DueMonth] = b
			}
			b.Entries++
			switch e.Status {
			case EntryPredicted:
				b.Predicted = b.Predicted.Add(e.Amount)
			case EntryReceived:
				b.Received = b.Received.Add(e.Amount)
			case EntryCancelled:
				b.Cancelled = b.Cancelled.Add(e.Amount)
			}
		}
	}

	result := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result
}

// RoleSummary aggregates the sales made under one role.
type RoleSummary struct {
	Role            Role
	Sales           int
	TotalSaleValue  decimal.Decimal
	TotalCommission decimal.Decimal
	Received        decimal.Decimal
	Pending         decimal.Decimal
}

// SummarizeRole totals the sales made under role.
func SummarizeRole(sales []Sale, role Role) RoleSummary {
	sum := RoleSummary{
		Role:            role,
		TotalSaleValue:  decimal.Zero,
		TotalCommission: decimal.Zero,
		Received:        decimal.Zero,
		Pending:         decimal.Zero,
	}
	for _, s := range sales {
		if s.Role != role {
			continue
		}
		sum.Sales++
		sum.TotalSaleValue = sum.TotalSaleValue.Add(s.SaleValue)
		sum.TotalCommission = sum.TotalCommission.Add(s.CommissionTotal)
		for _, e := range s.CommissionEntries {
			switch e.Status {
			case EntryReceived:
				sum.Received = sum.Received.Add(e.Amount)
			case EntryPredicted:
				sum.Pending = sum.Pending.Add(e.Amount)
			}
		}
	}
	return sum
}

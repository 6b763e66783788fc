package commission_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multicota/commission-engine/commission"
)

// sequentialIDs returns a deterministic generator: prefix-1, prefix-2, ...
func sequentialIDs(prefix string) commission.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func exampleSchedule() commission.ScheduleInput {
	return commission.ScheduleInput{
		SaleID:              "sale-1",
		TotalCommission:     dec("20000"),
		SaleDate:            date(2024, time.March, 15),
		EntryReferenceValue: dec("4000"),
		Signal:              &commission.SignalLeg{Amount: dec("1500"), Method: commission.MethodPix},
		Installments: &commission.InstallmentLeg{
			Remaining: dec("2500"), Method: commission.MethodBoleto, Count: 4,
		},
		NewID: sequentialIDs("e"),
	}
}

func TestGenerateSchedule_SignalAndInstallments(t *testing.T) {
	// GIVEN: 20000 commission, entry 4000 = 1500 pix signal + 2500 in 4 boletos
	// WHEN: generating the schedule
	s := commission.GenerateSchedule(exampleSchedule())

	// THEN: 7500 one month after the sale, then 4 x 3125 monthly after that
	require.Len(t, s.Entries, 5)
	assert.Equal(t, commission.StatusComputed, s.Status)
	assertDecimal(t, "20000", s.Total)

	signal := s.Entries[0]
	assertDecimal(t, "7500", signal.Amount)
	assert.Equal(t, date(2024, time.April, 15), signal.DueDate)
	assert.Equal(t, "2024-04", signal.DueMonth)
	assert.Equal(t, "Comissão Sinal (Pix)", signal.Description)

	for i, e := range s.Entries[1:] {
		assertDecimal(t, "3125", e.Amount)
		assert.Equal(t, date(2024, time.Month(5+i), 15), e.DueDate)
		assert.Equal(t, fmt.Sprintf("Comissão Parc. %d/4", i+1), e.Description)
	}
	assert.Equal(t, "2024-08", s.Entries[4].DueMonth)
}

func TestGenerateSchedule_EntriesArePredictedAndLinked(t *testing.T) {
	s := commission.GenerateSchedule(exampleSchedule())

	seen := map[commission.EntryID]bool{}
	for _, e := range s.Entries {
		assert.Equal(t, commission.EntryPredicted, e.Status)
		assert.Equal(t, commission.SaleID("sale-1"), e.SaleID)
		assert.Equal(t, commission.DueMonth(e.DueDate), e.DueMonth)
		assert.False(t, seen[e.ID], "duplicate entry id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestGenerateSchedule_CreditCardSignalSettlesTwoMonthsLater(t *testing.T) {
	in := exampleSchedule()
	in.Signal.Method = commission.MethodCreditCard

	s := commission.GenerateSchedule(in)

	require.Len(t, s.Entries, 5)
	assert.Equal(t, date(2024, time.May, 15), s.Entries[0].DueDate)
	assert.Equal(t, "Comissão Sinal (Cartão de Crédito)", s.Entries[0].Description)
	// installments chain from the signal due date
	assert.Equal(t, date(2024, time.June, 15), s.Entries[1].DueDate)
	assert.Equal(t, date(2024, time.September, 15), s.Entries[4].DueDate)
}

func TestGenerateSchedule_InstallmentsWithoutSignalStartFromSaleDate(t *testing.T) {
	// GIVEN: no signal, a sale on the last day of January
	in := exampleSchedule()
	in.Signal = nil
	in.SaleDate = date(2024, time.January, 31)
	in.EntryReferenceValue = dec("2500")
	in.Installments.Count = 3

	s := commission.GenerateSchedule(in)

	// THEN: every installment is offset from the sale date and clamped
	require.Len(t, s.Entries, 3)
	assert.Equal(t, date(2024, time.February, 29), s.Entries[0].DueDate)
	assert.Equal(t, date(2024, time.March, 31), s.Entries[1].DueDate)
	assert.Equal(t, date(2024, time.April, 30), s.Entries[2].DueDate)
}

func TestGenerateSchedule_SignalOnly(t *testing.T) {
	in := exampleSchedule()
	in.Installments = nil
	in.EntryReferenceValue = dec("1500")

	s := commission.GenerateSchedule(in)

	require.Len(t, s.Entries, 1)
	assertDecimal(t, "20000", s.Entries[0].Amount)
}

func TestGenerateSchedule_NonPositiveTotalIsEmpty(t *testing.T) {
	for _, total := range []string{"0", "-10"} {
		in := exampleSchedule()
		in.TotalCommission = dec(total)

		s := commission.GenerateSchedule(in)

		assert.NotNil(t, s.Entries)
		assert.Empty(t, s.Entries)
		assert.Equal(t, commission.StatusComputed, s.Status)
		assertDecimal(t, "0", s.Total)
	}
}

func TestGenerateSchedule_ZeroReferenceCountsAsOne(t *testing.T) {
	in := exampleSchedule()
	in.TotalCommission = dec("10")
	in.EntryReferenceValue = decimal.Zero
	in.Signal.Amount = dec("2")
	in.Installments = nil

	s := commission.GenerateSchedule(in)

	require.Len(t, s.Entries, 1)
	assertDecimal(t, "20", s.Entries[0].Amount)
}

func TestGenerateSchedule_ZeroLegsProduceNoEntries(t *testing.T) {
	in := exampleSchedule()
	in.Signal.Amount = decimal.Zero
	in.Installments.Count = 0

	s := commission.GenerateSchedule(in)

	assert.Empty(t, s.Entries)
}

func TestGenerateSchedule_EntriesSumToTotal(t *testing.T) {
	// GIVEN: legs that always add up to the reference value
	tolerance := dec("0.000001")
	for _, total := range []string{"100", "20000", "1234.56"} {
		for _, signal := range []string{"0", "1000", "1"} {
			for count := 1; count <= 12; count++ {
				in := commission.ScheduleInput{
					TotalCommission:     dec(total),
					SaleDate:            date(2024, time.January, 31),
					EntryReferenceValue: dec("3000"),
					Signal:              &commission.SignalLeg{Amount: dec(signal), Method: commission.MethodCash},
					Installments: &commission.InstallmentLeg{
						Remaining: dec("3000").Sub(dec(signal)), Method: commission.MethodBoleto, Count: count,
					},
				}

				s := commission.GenerateSchedule(in)

				sum := decimal.Zero
				for _, e := range s.Entries {
					sum = sum.Add(e.Amount)
				}
				// THEN: the entries reproduce the total within rounding
				diff := sum.Sub(dec(total)).Abs()
				require.True(t, diff.LessThan(tolerance),
					"total %s signal %s count %d: sum %s", total, signal, count, sum)
			}
		}
	}
}

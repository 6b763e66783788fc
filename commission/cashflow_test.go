package commission_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multicota/commission-engine/commission"
)

func entry(month string, amount string, status commission.EntryStatus) commission.CommissionEntry {
	return commission.CommissionEntry{DueMonth: month, Amount: dec(amount), Status: status}
}

func TestBuildCashFlow_BucketsByMonth(t *testing.T) {
	// GIVEN: two sales with entries spread over three months
	sales := []commission.Sale{
		{CommissionEntries: []commission.CommissionEntry{
			entry("2024-05", "100", commission.EntryPredicted),
			entry("2024-04", "50", commission.EntryReceived),
		}},
		{CommissionEntries: []commission.CommissionEntry{
			entry("2024-05", "25", commission.EntryCancelled),
			entry("2024-05", "10", commission.EntryReceived),
			entry("2024-06", "70", commission.EntryPredicted),
		}},
	}

	// WHEN: building the full cash flow
	flow := commission.BuildCashFlow(sales, "", "")

	// THEN: months are ascending and cancelled is kept apart
	require.Len(t, flow, 3)
	assert.Equal(t, "2024-04", flow[0].Month)
	assert.Equal(t, "2024-05", flow[1].Month)
	assert.Equal(t, "2024-06", flow[2].Month)

	may := flow[1]
	assert.Equal(t, 3, may.Entries)
	assertDecimal(t, "100", may.Predicted)
	assertDecimal(t, "10", may.Received)
	assertDecimal(t, "25", may.Cancelled)
	assertDecimal(t, "110", may.Expected())
}

func TestBuildCashFlow_InclusiveBounds(t *testing.T) {
	sales := []commission.Sale{{CommissionEntries: []commission.CommissionEntry{
		entry("2024-03", "1", commission.EntryPredicted),
		entry("2024-04", "1", commission.EntryPredicted),
		entry("2024-05", "1", commission.EntryPredicted),
		entry("2024-06", "1", commission.EntryPredicted),
	}}}

	flow := commission.BuildCashFlow(sales, "2024-04", "2024-05")

	require.Len(t, flow, 2)
	assert.Equal(t, "2024-04", flow[0].Month)
	assert.Equal(t, "2024-05", flow[1].Month)
}

func TestBuildCashFlow_Empty(t *testing.T) {
	flow := commission.BuildCashFlow(nil, "", "")

	assert.NotNil(t, flow)
	assert.Empty(t, flow)
}

func TestBuildCashFlow_FromGeneratedSchedule(t *testing.T) {
	sale := testBuilder().Build(owner, baseRequest(), testProduct())[0]

	flow := commission.BuildCashFlow([]commission.Sale{sale}, "", "")

	require.Len(t, flow, 5)
	assertDecimal(t, "7500", flow[0].Predicted)
	assert.Equal(t, commission.DueMonth(date(2024, time.August, 15)), flow[4].Month)
}

func TestSummarizeRole(t *testing.T) {
	sales := []commission.Sale{
		{
			Role: commission.RoleCaptador, SaleValue: dec("100000"), CommissionTotal: dec("5000"),
			CommissionEntries: []commission.CommissionEntry{
				entry("2024-04", "2000", commission.EntryReceived),
				entry("2024-05", "3000", commission.EntryPredicted),
			},
		},
		{
			Role: commission.RoleCaptador, SaleValue: dec("50000"), CommissionTotal: dec("2500"),
			CommissionEntries: []commission.CommissionEntry{
				entry("2024-04", "2500", commission.EntryCancelled),
			},
		},
		{Role: commission.RoleFTB, SaleValue: dec("999999"), CommissionTotal: dec("1")},
	}

	sum := commission.SummarizeRole(sales, commission.RoleCaptador)

	assert.Equal(t, commission.RoleCaptador, sum.Role)
	assert.Equal(t, 2, sum.Sales)
	assertDecimal(t, "150000", sum.TotalSaleValue)
	assertDecimal(t, "7500", sum.TotalCommission)
	assertDecimal(t, "2000", sum.Received)
	assertDecimal(t, "3000", sum.Pending)
}

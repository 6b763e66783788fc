package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multicota/commission-engine/commission"
)

func sampleSale() commission.Sale {
	rule := commission.CommissionRule{Type: commission.CommissionPercentage, Value: decimal.NewFromInt(5)}
	req := commission.SaleRequest{
		ClientName: "Maria",
		SaleDate:   time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Project:    commission.ManualProject{Name: "Resort Praia Azul"},
		Role:       commission.RoleFTB,
		TableValue: decimal.NewFromInt(200000),
		EntryValue: decimal.NewFromInt(4000),
		QuotaQty:   1,
		Signal:     &commission.PaymentLeg{Amount: decimal.NewFromInt(1500), Method: commission.MethodCreditCard},
		Plan:       &commission.InstallmentPlan{Method: commission.MethodBoleto, Count: 4},
		ManualRule: &rule,
	}
	return commission.NewSaleBuilder().Build("owner-1", req, nil)[0]
}

func TestSaleRowConversion(t *testing.T) {
	sale := sampleSale()

	row, entries, err := toSaleRow(sale)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", row.OwnerID)
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, i, e.Position)
		assert.Equal(t, row.ID, e.SaleID)
	}

	back, err := fromSaleRow(row, entries)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, back.ID)
	assert.Equal(t, sale.Rule.Type, back.Rule.Type)
	assert.True(t, sale.CommissionTotal.Equal(back.CommissionTotal))
	require.Len(t, back.EntryPayments, 2)
	assert.Equal(t, commission.MethodCreditCard, back.EntryPayments[0].Method)
	assert.True(t, back.EntryPayments[1].Amount.Equal(decimal.NewFromInt(2500)))
	require.Len(t, back.CommissionEntries, 5)
	assert.Equal(t, "2024-05", back.CommissionEntries[0].DueMonth)
	assert.True(t, sale.CommissionEntries[3].Amount.Equal(back.CommissionEntries[3].Amount))
}

func TestSaleRowConversion_NilPaymentsBecomeEmptyArray(t *testing.T) {
	sale := sampleSale()
	sale.EntryPayments = nil

	row, _, err := toSaleRow(sale)

	require.NoError(t, err)
	assert.Equal(t, "[]", row.Payments)
}

func TestProductRowConversion(t *testing.T) {
	p := commission.Product{
		ID:        "prod-1",
		OwnerID:   "owner-1",
		Title:     "Resort Praia Azul",
		Price:     decimal.NewFromInt(180000),
		Rule:      commission.CommissionRule{Type: commission.CommissionFixed, Value: decimal.NewFromInt(900)},
		Overrides: &commission.RoleCommissions{FTB: decimal.NewFromInt(2500)},
	}

	row, err := toProductRow(p)
	require.NoError(t, err)
	require.NotNil(t, row.Overrides)

	back, err := fromProductRow(row)
	require.NoError(t, err)
	assert.Equal(t, p.ID, back.ID)
	require.NotNil(t, back.Overrides)
	assert.True(t, back.Overrides.FTB.Equal(decimal.NewFromInt(2500)))

	p.Overrides = nil
	row, err = toProductRow(p)
	require.NoError(t, err)
	assert.Nil(t, row.Overrides)
}

// TestStore_Postgres runs against a live database when one is configured.
func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("MULTICOTA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MULTICOTA_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	owner := commission.OwnerID("pg-test-" + time.Now().Format("150405.000000"))
	sale := sampleSale()
	require.NoError(t, store.SaveSale(ctx, owner, sale))
	defer store.DeleteSale(ctx, owner, sale.ID)

	got, err := store.GetSale(ctx, owner, sale.ID)
	require.NoError(t, err)
	assert.Len(t, got.CommissionEntries, 5)

	mgr := commission.NewEntryManager(store, nil)
	_, err = mgr.ToggleReceived(ctx, owner, sale.ID, sale.CommissionEntries[0].ID)
	require.NoError(t, err)

	got, err = store.GetSale(ctx, owner, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, commission.EntryReceived, got.CommissionEntries[0].Status)

	require.NoError(t, store.DeleteSale(ctx, owner, sale.ID))
	_, err = store.GetSale(ctx, owner, sale.ID)
	assert.ErrorIs(t, err, commission.ErrSaleNotFound)
}

/*
sqlite_test.go - Round-trip tests for the SQLite store

Tests for:
- Sale save/load including payments and entries
- Entry replacement on re-save
- Owner scoping and not-found errors
- Product overrides
- Corrupt columns surface as errors
*/
package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/multicota/commission-engine/commission"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func builtSale(t *testing.T) commission.Sale {
	t.Helper()
	rule := commission.CommissionRule{Type: commission.CommissionPercentage, Value: decimal.NewFromInt(5)}
	req := commission.SaleRequest{
		ClientName:  "Maria",
		SaleDate:    time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Project:     commission.ManualProject{Name: "Resort Praia Azul"},
		Role:        commission.RoleFTB,
		TableValue:  decimal.NewFromInt(200000),
		EntryValue:  decimal.NewFromInt(4000),
		QuotaQty:    1,
		Signal:      &commission.PaymentLeg{Amount: decimal.NewFromInt(1500), Method: commission.MethodPix},
		Plan:        &commission.InstallmentPlan{Method: commission.MethodBoleto, Count: 4},
		Observation: "cliente indicado",
		ManualRule:  &rule,
	}
	return commission.NewSaleBuilder().Build("owner-1", req, nil)[0]
}

func TestStore_SaleRoundTrip(t *testing.T) {
	// GIVEN: A generated sale with two payment parts and five entries
	store := newTestStore(t)
	ctx := context.Background()
	sale := builtSale(t)

	// WHEN: Saving and loading it
	if err := store.SaveSale(ctx, "owner-1", sale); err != nil {
		t.Fatalf("SaveSale failed: %v", err)
	}
	got, err := store.GetSale(ctx, "owner-1", sale.ID)
	if err != nil {
		t.Fatalf("GetSale failed: %v", err)
	}

	// THEN: Every field survives
	if got.ClientName != "Maria" || got.Project != "Resort Praia Azul" || got.Observation != "cliente indicado" {
		t.Errorf("Unexpected identity fields: %+v", got)
	}
	if !got.SaleDate.Equal(sale.SaleDate) {
		t.Errorf("Expected sale date %v, got %v", sale.SaleDate, got.SaleDate)
	}
	if !got.CommissionTotal.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("Expected total 20000, got %s", got.CommissionTotal)
	}
	if got.Rule.Type != commission.CommissionPercentage || !got.Rule.Value.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Unexpected rule: %+v", got.Rule)
	}
	if len(got.EntryPayments) != 2 {
		t.Fatalf("Expected 2 payments, got %d", len(got.EntryPayments))
	}
	if !got.EntryPayments[1].Amount.Equal(decimal.NewFromInt(2500)) || got.EntryPayments[1].Installments != 4 {
		t.Errorf("Unexpected installment payment: %+v", got.EntryPayments[1])
	}
	if len(got.CommissionEntries) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(got.CommissionEntries))
	}
	for i, e := range got.CommissionEntries {
		want := sale.CommissionEntries[i]
		if e.ID != want.ID || !e.Amount.Equal(want.Amount) || !e.DueDate.Equal(want.DueDate) ||
			e.DueMonth != want.DueMonth || e.Status != want.Status || e.SaleID != sale.ID {
			t.Errorf("Entry %d mismatch: want %+v, got %+v", i, want, e)
		}
	}
}

func TestStore_ResaveReplacesEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sale := builtSale(t)
	if err := store.SaveSale(ctx, "owner-1", sale); err != nil {
		t.Fatalf("SaveSale failed: %v", err)
	}

	// WHEN: One entry is removed and another marked received
	sale.CommissionEntries = sale.CommissionEntries[1:]
	sale.CommissionEntries[0].Status = commission.EntryReceived
	sale.ClientName = "Maria Souza"
	if err := store.SaveSale(ctx, "owner-1", sale); err != nil {
		t.Fatalf("Re-save failed: %v", err)
	}

	// THEN: The stored schedule matches exactly
	got, err := store.GetSale(ctx, "owner-1", sale.ID)
	if err != nil {
		t.Fatalf("GetSale failed: %v", err)
	}
	if len(got.CommissionEntries) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(got.CommissionEntries))
	}
	if got.CommissionEntries[0].Status != commission.EntryReceived {
		t.Errorf("Expected first entry received, got %s", got.CommissionEntries[0].Status)
	}
	if got.ClientName != "Maria Souza" {
		t.Errorf("Expected renamed client, got %s", got.ClientName)
	}
}

func TestStore_DeleteSaleCascadesAndScopes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sale := builtSale(t)
	if err := store.SaveSale(ctx, "owner-1", sale); err != nil {
		t.Fatalf("SaveSale failed: %v", err)
	}

	// Another owner cannot see or delete it
	if _, err := store.GetSale(ctx, "owner-2", sale.ID); !errors.Is(err, commission.ErrSaleNotFound) {
		t.Errorf("Expected ErrSaleNotFound for other owner, got %v", err)
	}
	if err := store.DeleteSale(ctx, "owner-2", sale.ID); err != nil {
		t.Fatalf("DeleteSale for other owner failed: %v", err)
	}
	if sales, _ := store.ListSales(ctx, "owner-1"); len(sales) != 1 {
		t.Fatalf("Expected sale to survive, got %d sales", len(sales))
	}

	if err := store.DeleteSale(ctx, "owner-1", sale.ID); err != nil {
		t.Fatalf("DeleteSale failed: %v", err)
	}
	if _, err := store.GetSale(ctx, "owner-1", sale.ID); !errors.Is(err, commission.ErrSaleNotFound) {
		t.Errorf("Expected ErrSaleNotFound after delete, got %v", err)
	}

	var orphans int
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM commission_entries").Scan(&orphans); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if orphans != 0 {
		t.Errorf("Expected entries to be cascade-deleted, %d left", orphans)
	}
}

func TestStore_ListSalesAttachesEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	first := builtSale(t)
	second := builtSale(t)
	second.SaleDate = first.SaleDate.AddDate(0, 0, -1)
	second.CommissionEntries = second.CommissionEntries[:2]
	for _, s := range []commission.Sale{first, second} {
		if err := store.SaveSale(ctx, "owner-1", s); err != nil {
			t.Fatalf("SaveSale failed: %v", err)
		}
	}

	sales, err := store.ListSales(ctx, "owner-1")
	if err != nil {
		t.Fatalf("ListSales failed: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("Expected 2 sales, got %d", len(sales))
	}
	if sales[0].ID != second.ID || len(sales[0].CommissionEntries) != 2 {
		t.Errorf("Expected earlier sale first with 2 entries, got %s with %d", sales[0].ID, len(sales[0].CommissionEntries))
	}
	if len(sales[1].CommissionEntries) != 5 {
		t.Errorf("Expected 5 entries on second sale, got %d", len(sales[1].CommissionEntries))
	}
}

func TestStore_ProductRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := commission.Product{
		ID:        "prod-1",
		Title:     "Resort Praia Azul",
		Location:  "Caldas Novas",
		Price:     decimal.RequireFromString("185000.50"),
		Bedrooms:  2,
		Rule:      commission.CommissionRule{Type: commission.CommissionFixed, Value: decimal.NewFromInt(900)},
		Overrides: &commission.RoleCommissions{Closer: decimal.NewFromInt(700)},
		CreatedAt: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
	}

	if err := store.SaveProduct(ctx, "owner-1", p); err != nil {
		t.Fatalf("SaveProduct failed: %v", err)
	}
	got, err := store.GetProduct(ctx, "owner-1", "prod-1")
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}

	if !got.Price.Equal(p.Price) || got.Bedrooms != 2 || got.Location != "Caldas Novas" {
		t.Errorf("Unexpected product: %+v", got)
	}
	if got.Overrides == nil || !got.Overrides.Closer.Equal(decimal.NewFromInt(700)) {
		t.Errorf("Expected closer override 700, got %+v", got.Overrides)
	}
	if got.OwnerID != "owner-1" {
		t.Errorf("Expected owner-1, got %s", got.OwnerID)
	}

	if _, err := store.GetProduct(ctx, "owner-2", "prod-1"); !errors.Is(err, commission.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
	if err := store.DeleteProduct(ctx, "owner-1", "prod-1"); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}
	if list, _ := store.ListProducts(ctx, "owner-1"); len(list) != 0 {
		t.Errorf("Expected empty catalog, got %d", len(list))
	}
}

func TestStore_CorruptColumnsAreReported(t *testing.T) {
	// GIVEN: A stored sale and product whose text columns were damaged
	store := newTestStore(t)
	ctx := context.Background()
	sale := builtSale(t)
	if err := store.SaveSale(ctx, "owner-1", sale); err != nil {
		t.Fatalf("SaveSale failed: %v", err)
	}
	p := commission.Product{ID: "prod-1", Title: "Resort", Price: decimal.NewFromInt(1000)}
	if err := store.SaveProduct(ctx, "owner-1", p); err != nil {
		t.Fatalf("SaveProduct failed: %v", err)
	}

	// WHEN/THEN: A bad decimal fails the read instead of loading as zero
	if _, err := store.db.ExecContext(ctx, "UPDATE sales SET commission_total = 'n/a'"); err != nil {
		t.Fatalf("Corrupting sale failed: %v", err)
	}
	if _, err := store.GetSale(ctx, "owner-1", sale.ID); err == nil {
		t.Error("Expected GetSale to fail on a corrupt commission_total")
	}
	if _, err := store.ListSales(ctx, "owner-1"); err == nil {
		t.Error("Expected ListSales to fail on a corrupt commission_total")
	}

	// A bad date fails the read instead of loading as the zero time
	if _, err := store.db.ExecContext(ctx, "UPDATE sales SET commission_total = '20000', sale_date = '15/03/2024'"); err != nil {
		t.Fatalf("Corrupting sale date failed: %v", err)
	}
	if _, err := store.GetSale(ctx, "owner-1", sale.ID); err == nil {
		t.Error("Expected GetSale to fail on a corrupt sale_date")
	}

	if _, err := store.db.ExecContext(ctx, "UPDATE products SET price = 'cheap'"); err != nil {
		t.Fatalf("Corrupting product failed: %v", err)
	}
	if _, err := store.GetProduct(ctx, "owner-1", "prod-1"); err == nil {
		t.Error("Expected GetProduct to fail on a corrupt price")
	}
	if _, err := store.ListProducts(ctx, "owner-1"); err == nil {
		t.Error("Expected ListProducts to fail on a corrupt price")
	}
}

func TestStore_EntryManagerOnSQLite(t *testing.T) {
	// GIVEN: A sale persisted in SQLite
	store := newTestStore(t)
	ctx := context.Background()
	sale := builtSale(t)
	if err := store.SaveSale(ctx, "owner-1", sale); err != nil {
		t.Fatalf("SaveSale failed: %v", err)
	}
	mgr := commission.NewEntryManager(store, nil)

	// WHEN: Rescheduling the signal entry
	if _, err := mgr.Reschedule(ctx, "owner-1", sale.ID, sale.CommissionEntries[0].ID); err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}

	// THEN: The new due month is persisted
	got, _ := store.GetSale(ctx, "owner-1", sale.ID)
	if got.CommissionEntries[0].DueMonth != "2024-05" {
		t.Errorf("Expected 2024-05, got %s", got.CommissionEntries[0].DueMonth)
	}
}

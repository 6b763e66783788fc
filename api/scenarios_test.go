/*
scenarios_test.go - Tests for demo scenario loading

Tests for:
- Every scenario loads and produces the expected sales
- Reloading replaces the owner's data instead of appending
- Other owners are untouched
*/
package api

import (
	"net/http"
	"testing"
)

func loadScenario(t *testing.T, srv http.Handler, id, owner string) {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id}, owner)
	expectStatus(t, rec, http.StatusOK)
}

func listSales(t *testing.T, srv http.Handler, owner string) []SaleDTO {
	t.Helper()
	rec := do(t, srv, http.MethodGet, "/api/sales", nil, owner)
	expectStatus(t, rec, http.StatusOK)
	return decode[[]SaleDTO](t, rec)
}

func TestListScenarios(t *testing.T) {
	srv := newTestServer(t)

	got := decode[[]ScenarioDTO](t, do(t, srv, http.MethodGet, "/api/scenarios", nil, ""))

	if len(got) != len(scenarios) {
		t.Fatalf("Expected %d scenarios, got %d", len(scenarios), len(got))
	}
	loaders := (&Handler{}).scenarioLoaders()
	for _, s := range got {
		if _, ok := loaders[s.ID]; !ok {
			t.Errorf("Scenario %s has no loader", s.ID)
		}
	}
}

func TestAllScenariosLoad(t *testing.T) {
	srv := newTestServer(t)
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			loadScenario(t, srv, s.ID, "")
			if len(listSales(t, srv, "")) == 0 {
				t.Errorf("Scenario %s created no sales", s.ID)
			}

			current := decode[ScenarioDTO](t, do(t, srv, http.MethodGet, "/api/scenarios/current", nil, ""))
			if current.ID != s.ID {
				t.Errorf("Expected current scenario %s, got %s", s.ID, current.ID)
			}
		})
	}
}

func TestWorkedExampleScenario(t *testing.T) {
	srv := newTestServer(t)
	loadScenario(t, srv, "worked-example", "")

	sales := listSales(t, srv, "")
	if len(sales) != 1 {
		t.Fatalf("Expected 1 sale, got %d", len(sales))
	}
	s := sales[0]
	if s.CommissionTotal != 20000 || len(s.CommissionEntries) != 5 {
		t.Errorf("Unexpected sale: total=%v entries=%d", s.CommissionTotal, len(s.CommissionEntries))
	}
	if s.CommissionEntries[0].Amount != 7500 {
		t.Errorf("Expected signal commission 7500, got %v", s.CommissionEntries[0].Amount)
	}
}

func TestMultiQuotaScenario(t *testing.T) {
	srv := newTestServer(t)
	loadScenario(t, srv, "multi-quota", "")

	sales := listSales(t, srv, "")
	if len(sales) != 3 {
		t.Fatalf("Expected 3 quotas, got %d", len(sales))
	}
	for _, s := range sales {
		// captador override of 1000 per unit
		if s.CommissionTotal != 1000 {
			t.Errorf("Expected 1000 per quota, got %v", s.CommissionTotal)
		}
		if s.EntryPayments[0].Amount != 1000 {
			t.Errorf("Expected per-quota signal 1000, got %v", s.EntryPayments[0].Amount)
		}
	}
}

func TestMonthEndScenario(t *testing.T) {
	srv := newTestServer(t)
	loadScenario(t, srv, "month-end", "")

	sales := listSales(t, srv, "")
	if len(sales) != 1 {
		t.Fatalf("Expected 1 sale, got %d", len(sales))
	}
	entries := sales[0].CommissionEntries
	if len(entries) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(entries))
	}
	if entries[0].Status != "received" || entries[1].Status != "cancelled" || entries[2].Status != "predicted" {
		t.Errorf("Unexpected statuses: %s %s %s", entries[0].Status, entries[1].Status, entries[2].Status)
	}
	// card signal settles two months out, installments follow month-end
	if entries[0].DueDate != "2024-03-31" || entries[1].DueDate != "2024-04-30" {
		t.Errorf("Unexpected due dates %s, %s", entries[0].DueDate, entries[1].DueDate)
	}
	if sales[0].SaleValue != 320000 {
		t.Errorf("Expected product price fallback, got %v", sales[0].SaleValue)
	}
}

func TestTeamRolesScenario(t *testing.T) {
	srv := newTestServer(t)
	loadScenario(t, srv, "team-roles", "")

	all := decode[[]RoleSummaryDTO](t, do(t, srv, http.MethodGet, "/api/reports/roles", nil, ""))
	counts := map[string]int{}
	for _, s := range all {
		counts[s.Role] = s.Sales
	}
	want := map[string]int{"CAPTADOR": 1, "LINER": 2, "CLOSER": 1, "FTB": 1}
	for role, n := range want {
		if counts[role] != n {
			t.Errorf("%s: expected %d sales, got %d", role, n, counts[role])
		}
	}
}

func TestLoadScenario_ReplacesOwnerData(t *testing.T) {
	srv := newTestServer(t)

	// other owner keeps its data
	createWorkedExample(t, srv, otherOwner)

	loadScenario(t, srv, "multi-quota", "")
	loadScenario(t, srv, "worked-example", "")

	if got := listSales(t, srv, ""); len(got) != 1 {
		t.Errorf("Expected reload to replace sales, got %d", len(got))
	}
	if got := listSales(t, srv, otherOwner); len(got) != 1 {
		t.Errorf("Expected other owner untouched, got %d sales", len(got))
	}
	products := decode[[]ProductDTO](t, do(t, srv, http.MethodGet, "/api/products", nil, ""))
	if len(products) != 3 {
		t.Errorf("Expected the 3 demo products, got %d", len(products))
	}
}

func TestLoadScenario_Unknown(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"}, "")

	expectStatus(t, rec, http.StatusBadRequest)
}

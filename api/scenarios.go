/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the caller's workspace with a
	realistic catalog and sales. Each scenario demonstrates one part of the
	commission engine.

AVAILABLE SCENARIOS:

	worked-example:  One FTB sale, pix signal plus four boletos
	multi-quota:     Three-quota captador sale with a product override
	month-end:       Card sale on Jan 31, one entry received, one blocked
	team-roles:      The same resort sold under every role

HOW SCENARIOS WORK:
 1. Clear the owner's sales and catalog
 2. Import the demo catalog (YAML, via factory)
 3. Create sales through the sale service
 4. Optionally move entries through the entry manager

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "multi-quota"}

NOTE:

	Loading a scenario deletes everything the owner has. Only the owner in
	X-Owner-ID is affected.

SEE ALSO:
  - handlers.go: Handler struct and response helpers
  - factory/catalog.go: Catalog YAML schema
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/multicota/commission-engine/commission"
	"github.com/multicota/commission-engine/logger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "worked-example",
		Name:        "Worked Example",
		Description: "FTB sale of R$ 200.000 at 5%, R$ 1.500 pix signal and 4 boletos",
	},
	{
		ID:          "multi-quota",
		Name:        "Multi-Quota",
		Description: "Three quotas sold by a captador, priced by a flat product override",
	},
	{
		ID:          "month-end",
		Name:        "Month-End Sale",
		Description: "Credit card signal on Jan 31 with clamped due dates and mixed entry statuses",
	},
	{
		ID:          "team-roles",
		Name:        "Team Roles",
		Description: "One resort sold under every role, for the role summaries",
	},
}

const demoCatalog = `
products:
  - id: praia-azul
    title: Resort Praia Azul
    location: Caldas Novas
    price: 200000
    bedrooms: 2
    commission_type: percentage
    commission_value: 5
  - id: serra-verde
    title: Chalés Serra Verde
    location: Gramado
    price: 150000
    bedrooms: 1
    commission_type: percentage
    commission_value: 4
    overrides:
      captador: 1000
      liner: 1500
  - id: lagoa-norte
    title: Lagoa Norte Residence
    location: Florianópolis
    price: 320000
    bedrooms: 3
    commission_type: fixed
    commission_value: 6000
`

type scenarioLoader func(ctx context.Context, owner commission.OwnerID) error

func (h *Handler) scenarioLoaders() map[string]scenarioLoader {
	return map[string]scenarioLoader{
		"worked-example": h.loadWorkedExampleScenario,
		"multi-quota":    h.loadMultiQuotaScenario,
		"month-end":      h.loadMonthEndScenario,
		"team-roles":     h.loadTeamRolesScenario,
	}
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns all available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the scenario the owner loaded last, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	h.mu.Lock()
	current := h.scenarios[owner]
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario replaces the owner's data with a demo scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := h.scenarioLoaders()[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.clearOwner(ctx, owner); err != nil {
		h.internalError(w, r, "Failed to reset data", err)
		return
	}
	if err := h.loadDemoCatalog(ctx, owner); err != nil {
		h.internalError(w, r, "Failed to load catalog", err)
		return
	}
	if err := load(ctx, owner); err != nil {
		h.internalError(w, r, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.invalidateReports(owner)

	h.mu.Lock()
	h.scenarios[owner] = req.ScenarioID
	h.mu.Unlock()

	logger.FromContext(ctx).Info("scenario loaded", "owner", owner, "scenario", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// clearOwner deletes every sale and product of owner.
func (h *Handler) clearOwner(ctx context.Context, owner commission.OwnerID) error {
	sales, err := h.Store.ListSales(ctx, owner)
	if err != nil {
		return err
	}
	for _, s := range sales {
		if err := h.Store.DeleteSale(ctx, owner, s.ID); err != nil {
			return err
		}
	}

	products, err := h.Store.ListProducts(ctx, owner)
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := h.Store.DeleteProduct(ctx, owner, p.ID); err != nil {
			return err
		}
	}

	h.mu.Lock()
	delete(h.scenarios, owner)
	h.mu.Unlock()
	return nil
}

func (h *Handler) loadDemoCatalog(ctx context.Context, owner commission.OwnerID) error {
	products, err := h.Catalog.ParseYAML([]byte(demoCatalog))
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := h.Store.SaveProduct(ctx, owner, p); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadWorkedExampleScenario(ctx context.Context, owner commission.OwnerID) error {
	// 5% of 200000, doubled for FTB: 20000.
	// Signal share 1500/4000 due a month after the sale, rest over 4 boletos.
	_, err := h.Sales.CreateSales(ctx, owner, commission.SaleRequest{
		ClientName: "Maria Souza",
		SaleDate:   demoDate(2024, time.March, 15),
		Project:    commission.CatalogProduct{ID: "praia-azul"},
		Role:       commission.RoleFTB,
		TableValue: decimal.NewFromInt(200000),
		EntryValue: decimal.NewFromInt(4000),
		QuotaQty:   1,
		Signal:     &commission.PaymentLeg{Amount: decimal.NewFromInt(1500), Method: commission.MethodPix},
		Plan:       &commission.InstallmentPlan{Method: commission.MethodBoleto, Count: 4},
	})
	return err
}

func (h *Handler) loadMultiQuotaScenario(ctx context.Context, owner commission.OwnerID) error {
	// Captador override of 1000 per quota; the signal and plan are split
	// evenly across the three quotas.
	_, err := h.Sales.CreateSales(ctx, owner, commission.SaleRequest{
		ClientName:  "João e Ana Lima",
		SaleDate:    demoDate(2024, time.May, 10),
		Project:     commission.CatalogProduct{ID: "serra-verde"},
		Role:        commission.RoleCaptador,
		TableValue:  decimal.NewFromInt(150000),
		EntryValue:  decimal.NewFromInt(3000),
		QuotaQty:    3,
		Signal:      &commission.PaymentLeg{Amount: decimal.NewFromInt(3000), Method: commission.MethodPix},
		Plan:        &commission.InstallmentPlan{Method: commission.MethodBoleto, Count: 6},
		Observation: "Família comprou três cotas",
	})
	return err
}

func (h *Handler) loadMonthEndScenario(ctx context.Context, owner commission.OwnerID) error {
	sales, err := h.Sales.CreateSales(ctx, owner, commission.SaleRequest{
		ClientName: "Carlos Pereira",
		SaleDate:   demoDate(2024, time.January, 31),
		Project:    commission.CatalogProduct{ID: "lagoa-norte"},
		Role:       commission.RoleCloser,
		EntryValue: decimal.NewFromInt(10000),
		QuotaQty:   1,
		Signal:     &commission.PaymentLeg{Amount: decimal.NewFromInt(2000), Method: commission.MethodCreditCard},
		Plan:       &commission.InstallmentPlan{Method: commission.MethodBoleto, Count: 3},
	})
	if err != nil {
		return err
	}

	sale := sales[0]
	if len(sale.CommissionEntries) < 2 {
		return nil
	}
	if _, err := h.Entries.ToggleReceived(ctx, owner, sale.ID, sale.CommissionEntries[0].ID); err != nil {
		return err
	}
	_, err = h.Entries.ToggleBlocked(ctx, owner, sale.ID, sale.CommissionEntries[1].ID)
	return err
}

func (h *Handler) loadTeamRolesScenario(ctx context.Context, owner commission.OwnerID) error {
	clients := []string{"Ana Costa", "Bruno Alves", "Clara Dias", "Diego Rocha"}
	for i, role := range commission.Roles {
		_, err := h.Sales.CreateSales(ctx, owner, commission.SaleRequest{
			ClientName: clients[i],
			SaleDate:   demoDate(2024, time.Month(2+i), 5),
			Project:    commission.CatalogProduct{ID: "praia-azul"},
			Role:       role,
			EntryValue: decimal.NewFromInt(5000),
			QuotaQty:   1,
			Signal:     &commission.PaymentLeg{Amount: decimal.NewFromInt(1000), Method: commission.MethodPix},
			Plan:       &commission.InstallmentPlan{Method: commission.MethodBoleto, Count: 2},
		})
		if err != nil {
			return fmt.Errorf("%s sale: %w", role, err)
		}
	}

	// A manual project outside the catalog, priced by its own rule.
	rule := commission.CommissionRule{Type: commission.CommissionFixed, Value: decimal.NewFromInt(2500)}
	_, err := h.Sales.CreateSales(ctx, owner, commission.SaleRequest{
		ClientName: "Eduarda Nunes",
		SaleDate:   demoDate(2024, time.June, 20),
		Project:    commission.ManualProject{Name: "Pousada Mar Aberto"},
		Role:       commission.RoleLiner,
		TableValue: decimal.NewFromInt(120000),
		EntryValue: decimal.NewFromInt(2500),
		QuotaQty:   1,
		Plan:       &commission.InstallmentPlan{Method: commission.MethodDebitCard, Count: 1},
		ManualRule: &rule,
	})
	return err
}

func demoDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

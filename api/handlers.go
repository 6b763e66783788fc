/*
handlers.go - HTTP API handlers for the commission engine

PURPOSE:
  Exposes the commission engine via REST API. Handles HTTP request/response,
  JSON serialization, input validation, and delegates to the commission
  package for every computation.

ENDPOINTS:
  Catalog:
    GET    /api/products                    List products
    POST   /api/products                    Create product
    POST   /api/products/import             Bulk import (JSON or YAML body)
    GET    /api/products/export             Export catalog as YAML
    GET    /api/products/{id}               Get product
    DELETE /api/products/{id}               Delete product

  Sales:
    GET    /api/sales                       List sales (?role=)
    POST   /api/sales                       Create one sale per quota
    POST   /api/sales/preview               Compute without saving
    GET    /api/sales/{id}                  Get sale
    PUT    /api/sales/{id}                  Rebuild sale from edited request
    DELETE /api/sales/{id}                  Delete sale and its entries

  Entries:
    POST   /api/sales/{id}/entries/{entryID}/received    Toggle received
    POST   /api/sales/{id}/entries/{entryID}/block       Toggle blocked
    POST   /api/sales/{id}/entries/{entryID}/reschedule  Push one month
    PATCH  /api/sales/{id}/entries/{entryID}             Edit amount
    DELETE /api/sales/{id}/entries/{entryID}             Delete entry

  Reports:
    GET    /api/reports/cashflow            Month buckets (?from=YYYY-MM&to=YYYY-MM)
    GET    /api/reports/roles               Summary for every role
    GET    /api/reports/roles/{role}        Summary for one role

OWNERSHIP:
  Every call is scoped to the owner in the X-Owner-ID header (a UUID).
  Without the header the guest owner is used.

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Sales and catalog persistence
  - Sales: Builds and saves sales
  - Entries: Entry lifecycle with per-sale locking
  - Catalog: JSON/YAML to Product conversion
  - reports: Report cache, invalidated per owner on every write

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Sale, entry or product not found
  - 409: Transition not allowed (e.g. blocking a received entry)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/multicota/commission-engine/commission"
	"github.com/multicota/commission-engine/factory"
	"github.com/multicota/commission-engine/logger"
)

// OwnerHeader carries the caller's owner ID.
const OwnerHeader = "X-Owner-ID"

const (
	maxQuotas       = 100
	maxInstallments = 120
	maxBodyBytes    = 1 << 20
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   commission.Store
	Sales   *commission.SaleService
	Entries *commission.EntryManager
	Catalog *factory.CatalogFactory

	reports *cache.Cache
	// bumped on every invalidation; a report read under an older
	// generation is not cached
	reportsMu   sync.Mutex
	generations map[commission.OwnerID]uint64

	// currently loaded demo scenario per owner
	mu        sync.Mutex
	scenarios map[commission.OwnerID]string
}

// NewHandler creates a new handler with the given store. Reports are cached
// for reportTTL.
func NewHandler(store commission.Store, reportTTL time.Duration) *Handler {
	if reportTTL <= 0 {
		reportTTL = 5 * time.Minute
	}
	// sale edits and entry mutations serialize on the same locks
	locks := commission.NewSaleLocks()
	return &Handler{
		Store:       store,
		Sales:       commission.NewSaleService(store, nil, locks),
		Entries:     commission.NewEntryManager(store, locks),
		Catalog:     factory.NewCatalogFactory(),
		reports:     cache.New(reportTTL, 2*reportTTL),
		generations: make(map[commission.OwnerID]uint64),
		scenarios:   make(map[commission.OwnerID]string),
	}
}

// ownerFrom resolves the owner of a request.
func ownerFrom(r *http.Request) (commission.OwnerID, error) {
	raw := strings.TrimSpace(r.Header.Get(OwnerHeader))
	if raw == "" {
		return commission.GuestOwner, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s header: %w", OwnerHeader, err)
	}
	return commission.OwnerID(id.String()), nil
}

// withOwner adapts a handler that needs the request owner.
func (h *Handler) withOwner(fn func(w http.ResponseWriter, r *http.Request, owner commission.OwnerID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFrom(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid owner", err)
			return
		}
		fn(w, r, owner)
	}
}

// =============================================================================
// HEALTH
// =============================================================================

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the store is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListProducts returns the owner's catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	products, err := h.Store.ListProducts(r.Context(), owner)
	if err != nil {
		h.internalError(w, r, "Failed to list products", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// GetProduct returns one product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	p, err := h.Store.GetProduct(r.Context(), owner, commission.ProductID(chi.URLParam(r, "id")))
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

// CreateProduct adds a product from its JSON definition.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	var req factory.ProductJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Catalog.FromJSON(req)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	if err := h.Store.SaveProduct(r.Context(), owner, p); err != nil {
		h.internalError(w, r, "Failed to save product", err)
		return
	}
	p.OwnerID = owner

	logger.FromContext(r.Context()).Info("product created", "owner", owner, "product_id", p.ID)
	writeJSON(w, http.StatusCreated, toProductDTO(p))
}

// DeleteProduct removes a product. Existing sales keep their data.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	id := commission.ProductID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteProduct(r.Context(), owner, id); err != nil {
		h.internalError(w, r, "Failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportCatalog loads a whole catalog document. YAML is detected from the
// Content-Type; anything else is parsed as JSON.
func (h *Handler) ImportCatalog(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	var products []commission.Product
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		products, err = h.Catalog.ParseYAML(body)
	} else {
		products, err = h.Catalog.ParseJSON(body)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid catalog", err)
		return
	}

	for i := range products {
		if err := h.Store.SaveProduct(r.Context(), owner, products[i]); err != nil {
			h.internalError(w, r, "Failed to save product", err)
			return
		}
		products[i].OwnerID = owner
	}

	logger.FromContext(r.Context()).Info("catalog imported", "owner", owner, "count", len(products))
	writeJSON(w, http.StatusCreated, ImportResponse{Imported: len(products), Products: toProductDTOs(products)})
}

// ExportCatalog renders the owner's catalog as a YAML document that
// ImportCatalog accepts.
func (h *Handler) ExportCatalog(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	products, err := h.Store.ListProducts(r.Context(), owner)
	if err != nil {
		h.internalError(w, r, "Failed to list products", err)
		return
	}
	out, err := h.Catalog.ExportYAML(products)
	if err != nil {
		h.internalError(w, r, "Failed to encode catalog", err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// ListSales returns the owner's sales, optionally filtered by ?role=.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	sales, err := h.Store.ListSales(r.Context(), owner)
	if err != nil {
		h.internalError(w, r, "Failed to list sales", err)
		return
	}

	if role := r.URL.Query().Get("role"); role != "" {
		want := commission.Role(strings.ToUpper(role))
		if !want.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid role", nil)
			return
		}
		filtered := sales[:0]
		for _, s := range sales {
			if s.Role == want {
				filtered = append(filtered, s)
			}
		}
		sales = filtered
	}

	writeJSON(w, http.StatusOK, toSaleDTOs(sales))
}

// GetSale returns one sale with its entries.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	sale, err := h.Store.GetSale(r.Context(), owner, commission.SaleID(chi.URLParam(r, "id")))
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTO(sale))
}

// CreateSale builds and saves one sale per requested quota.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	req, ok := h.decodeSaleRequest(w, r)
	if !ok {
		return
	}

	sales, err := h.Sales.CreateSales(r.Context(), owner, req)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	h.invalidateReports(owner)

	logger.FromContext(r.Context()).Info("sales created",
		"owner", owner, "client", req.ClientName, "quotas", len(sales), "role", req.Role)
	writeJSON(w, http.StatusCreated, toSaleDTOs(sales))
}

// PreviewSale computes the commission of a submission without saving.
func (h *Handler) PreviewSale(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	req, ok := h.decodeSaleRequest(w, r)
	if !ok {
		return
	}

	p, err := h.Sales.Preview(r.Context(), owner, req)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewDTO{
		Total:      p.Total.InexactFloat64(),
		PerQuota:   p.PerQuota.InexactFloat64(),
		QuotaQty:   p.QuotaQty,
		FirstQuota: toSaleDTO(p.FirstQuota),
	})
}

// UpdateSale rebuilds one sale. The quota count of the request is ignored:
// an edit always targets exactly this sale.
func (h *Handler) UpdateSale(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	req, ok := h.decodeSaleRequest(w, r)
	if !ok {
		return
	}

	sale, err := h.Sales.UpdateSale(r.Context(), owner, commission.SaleID(chi.URLParam(r, "id")), req)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	h.invalidateReports(owner)
	writeJSON(w, http.StatusOK, toSaleDTO(sale))
}

// DeleteSale removes a sale and its entries.
func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	if err := h.Sales.DeleteSale(r.Context(), owner, commission.SaleID(chi.URLParam(r, "id"))); err != nil {
		h.internalError(w, r, "Failed to delete sale", err)
		return
	}
	h.invalidateReports(owner)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

type entryAction func(ctx context.Context, owner commission.OwnerID, sale commission.SaleID, entry commission.EntryID) (commission.CommissionEntry, error)

func (h *Handler) entryHandler(action entryAction) func(http.ResponseWriter, *http.Request, commission.OwnerID) {
	return func(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
		e, err := action(r.Context(), owner,
			commission.SaleID(chi.URLParam(r, "id")),
			commission.EntryID(chi.URLParam(r, "entryID")))
		if err != nil {
			h.domainError(w, r, err)
			return
		}
		h.invalidateReports(owner)
		writeJSON(w, http.StatusOK, toEntryDTO(e))
	}
}

// ToggleReceived marks an entry received, or back to predicted.
func (h *Handler) ToggleReceived(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	h.entryHandler(h.Entries.ToggleReceived)(w, r, owner)
}

// ToggleBlocked cancels a predicted entry or restores a cancelled one.
func (h *Handler) ToggleBlocked(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	h.entryHandler(h.Entries.ToggleBlocked)(w, r, owner)
}

// RescheduleEntry pushes an entry one month forward.
func (h *Handler) RescheduleEntry(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	h.entryHandler(h.Entries.Reschedule)(w, r, owner)
}

// EditEntryAmount overrides an entry amount.
func (h *Handler) EditEntryAmount(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	var req AmountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Amount == nil || *req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must be a non-negative number", nil)
		return
	}
	amount := decimal.NewFromFloat(*req.Amount)

	h.entryHandler(func(ctx context.Context, o commission.OwnerID, s commission.SaleID, e commission.EntryID) (commission.CommissionEntry, error) {
		return h.Entries.EditAmount(ctx, o, s, e, amount)
	})(w, r, owner)
}

// DeleteEntry removes an entry. Deleting an absent entry succeeds.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	err := h.Entries.DeleteEntry(r.Context(), owner,
		commission.SaleID(chi.URLParam(r, "id")),
		commission.EntryID(chi.URLParam(r, "entryID")))
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	h.invalidateReports(owner)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// CashFlow returns entries grouped by due month.
func (h *Handler) CashFlow(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	for _, m := range []*string{&from, &to} {
		if *m == "" {
			continue
		}
		parsed, err := commission.ParseMonth(*m)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
		*m = parsed
	}
	if from != "" && to != "" && from > to {
		writeError(w, http.StatusBadRequest, "from must not be after to", nil)
		return
	}

	key := reportKey(owner, "cashflow", from, to)
	if cached, ok := h.reports.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}
	gen := h.reportGeneration(owner)

	sales, err := h.Store.ListSales(r.Context(), owner)
	if err != nil {
		h.internalError(w, r, "Failed to list sales", err)
		return
	}

	resp := CashFlowResponse{From: from, To: to, Months: []MonthBucketDTO{}}
	predicted, received, cancelled := decimal.Zero, decimal.Zero, decimal.Zero
	for _, b := range commission.BuildCashFlow(sales, from, to) {
		resp.Months = append(resp.Months, MonthBucketDTO{
			Month:     b.Month,
			Predicted: b.Predicted.InexactFloat64(),
			Received:  b.Received.InexactFloat64(),
			Cancelled: b.Cancelled.InexactFloat64(),
			Expected:  b.Expected().InexactFloat64(),
			Entries:   b.Entries,
		})
		predicted = predicted.Add(b.Predicted)
		received = received.Add(b.Received)
		cancelled = cancelled.Add(b.Cancelled)
	}
	resp.Predicted = predicted.InexactFloat64()
	resp.Received = received.InexactFloat64()
	resp.Cancelled = cancelled.InexactFloat64()

	h.cacheReport(owner, gen, key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// RoleSummaries returns one summary per role.
func (h *Handler) RoleSummaries(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	key := reportKey(owner, "roles")
	if cached, ok := h.reports.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}
	gen := h.reportGeneration(owner)

	sales, err := h.Store.ListSales(r.Context(), owner)
	if err != nil {
		h.internalError(w, r, "Failed to list sales", err)
		return
	}
	resp := make([]RoleSummaryDTO, 0, len(commission.Roles))
	for _, role := range commission.Roles {
		resp = append(resp, toRoleSummaryDTO(commission.SummarizeRole(sales, role)))
	}

	h.cacheReport(owner, gen, key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// RoleSummary returns the summary for the role in the URL.
func (h *Handler) RoleSummary(w http.ResponseWriter, r *http.Request, owner commission.OwnerID) {
	role := commission.Role(strings.ToUpper(chi.URLParam(r, "role")))
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid role", nil)
		return
	}

	sales, err := h.Store.ListSales(r.Context(), owner)
	if err != nil {
		h.internalError(w, r, "Failed to list sales", err)
		return
	}
	writeJSON(w, http.StatusOK, toRoleSummaryDTO(commission.SummarizeRole(sales, role)))
}

func reportKey(owner commission.OwnerID, parts ...string) string {
	return string(owner) + "|" + strings.Join(parts, "|")
}

func (h *Handler) reportGeneration(owner commission.OwnerID) uint64 {
	h.reportsMu.Lock()
	defer h.reportsMu.Unlock()
	return h.generations[owner]
}

// cacheReport stores v unless owner's reports were invalidated since gen was
// read.
func (h *Handler) cacheReport(owner commission.OwnerID, gen uint64, key string, v any) {
	h.reportsMu.Lock()
	defer h.reportsMu.Unlock()
	if h.generations[owner] != gen {
		return
	}
	h.reports.SetDefault(key, v)
}

// invalidateReports drops every cached report of owner.
func (h *Handler) invalidateReports(owner commission.OwnerID) {
	h.reportsMu.Lock()
	defer h.reportsMu.Unlock()
	h.generations[owner]++
	prefix := string(owner) + "|"
	for k := range h.reports.Items() {
		if strings.HasPrefix(k, prefix) {
			h.reports.Delete(k)
		}
	}
}

// =============================================================================
// REQUEST PARSING
// =============================================================================

func (h *Handler) decodeSaleRequest(w http.ResponseWriter, r *http.Request) (commission.SaleRequest, bool) {
	var dto SaleRequest
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return commission.SaleRequest{}, false
	}
	req, err := parseSaleRequest(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale", err)
		return commission.SaleRequest{}, false
	}
	return req, true
}

// parseSaleRequest validates a sale submission and converts it to the
// engine's request.
func parseSaleRequest(dto SaleRequest) (commission.SaleRequest, error) {
	req := commission.SaleRequest{
		ClientName:  strings.TrimSpace(dto.ClientName),
		Category:    strings.TrimSpace(dto.Category),
		Role:        commission.Role(strings.ToUpper(strings.TrimSpace(dto.Role))),
		QuotaQty:    dto.QuotaQty,
		Observation: dto.Observation,
	}

	if req.ClientName == "" {
		return req, errors.New("client_name is required")
	}
	saleDate, err := commission.ParseDate(dto.SaleDate)
	if err != nil {
		return req, err
	}
	req.SaleDate = saleDate
	if !req.Role.Valid() {
		return req, fmt.Errorf("invalid role %q", dto.Role)
	}

	productID := strings.TrimSpace(dto.ProductID)
	projectName := strings.TrimSpace(dto.ProjectName)
	switch {
	case productID != "" && projectName != "":
		return req, errors.New("use either product_id or project_name, not both")
	case productID != "":
		req.Project = commission.CatalogProduct{ID: commission.ProductID(productID)}
	case projectName != "":
		req.Project = commission.ManualProject{Name: projectName}
		if dto.CommissionValue != nil {
			rule, err := manualRule(dto.CommissionType, *dto.CommissionValue)
			if err != nil {
				return req, err
			}
			req.ManualRule = &rule
		}
	default:
		return req, errors.New("product_id or project_name is required")
	}

	if dto.TableValue < 0 || dto.EntryValue < 0 {
		return req, errors.New("values must not be negative")
	}
	req.TableValue = decimal.NewFromFloat(dto.TableValue)
	req.EntryValue = decimal.NewFromFloat(dto.EntryValue)

	if req.QuotaQty == 0 {
		req.QuotaQty = 1
	}
	if req.QuotaQty < 1 || req.QuotaQty > maxQuotas {
		return req, fmt.Errorf("quota_qty must be between 1 and %d", maxQuotas)
	}

	if s := dto.Signal; s != nil && s.Amount != 0 {
		method := commission.PaymentMethod(s.Method)
		if s.Amount < 0 {
			return req, errors.New("signal amount must not be negative")
		}
		if !method.Valid() {
			return req, fmt.Errorf("invalid signal method %q", s.Method)
		}
		req.Signal = &commission.PaymentLeg{Amount: decimal.NewFromFloat(s.Amount), Method: method}
	}

	if p := dto.Installments; p != nil && p.Count != 0 {
		method := commission.PaymentMethod(p.Method)
		if p.Count < 1 || p.Count > maxInstallments {
			return req, fmt.Errorf("installment count must be between 1 and %d", maxInstallments)
		}
		if !method.Valid() {
			return req, fmt.Errorf("invalid installment method %q", p.Method)
		}
		req.Plan = &commission.InstallmentPlan{Method: method, Count: p.Count}
	}

	return req, nil
}

func manualRule(kind string, value float64) (commission.CommissionRule, error) {
	if value < 0 {
		return commission.CommissionRule{}, errors.New("commission_value must not be negative")
	}
	rule := commission.CommissionRule{Value: decimal.NewFromFloat(value)}
	switch strings.ToLower(kind) {
	case "", "percentage":
		rule.Type = commission.CommissionPercentage
	case "fixed":
		rule.Type = commission.CommissionFixed
	default:
		return rule, fmt.Errorf("invalid commission_type %q", kind)
	}
	return rule, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// domainError maps engine errors to HTTP statuses.
func (h *Handler) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case commission.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case commission.IsClientError(err):
		writeError(w, http.StatusConflict, "Transition not allowed", err)
	case errors.Is(err, factory.ErrInvalidProduct):
		writeError(w, http.StatusBadRequest, "Invalid product", err)
	default:
		h.internalError(w, r, "Internal error", err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	logger.FromContext(r.Context()).Error(message, "error", err, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, message, err)
}

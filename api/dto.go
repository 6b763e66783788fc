/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Catalog:
    ProductDTO (create requests use factory.ProductJSON)

  Sales:
    SaleRequest, SaleDTO, PaymentPartDTO, EntryDTO, PreviewDTO

  Entries:
    AmountRequest

  Reports:
    CashFlowResponse, MonthBucketDTO, RoleSummaryDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

MONEY:
  Amounts travel as JSON numbers. They are converted to decimal.Decimal on
  the way in and rendered with InexactFloat64 on the way out.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/catalog.go: ProductJSON type
*/
package api

import (
	"time"

	"github.com/multicota/commission-engine/commission"
)

// =============================================================================
// CATALOG
// =============================================================================

// ProductDTO represents a catalog product in API responses.
type ProductDTO struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Location        string              `json:"location,omitempty"`
	Price           float64             `json:"price"`
	Bedrooms        int                 `json:"bedrooms,omitempty"`
	Category        string              `json:"category,omitempty"`
	CommissionType  string              `json:"commission_type"`
	CommissionValue float64             `json:"commission_value"`
	Overrides       *RoleCommissionsDTO `json:"overrides,omitempty"`
	CreatedAt       string              `json:"created_at,omitempty"`
}

// RoleCommissionsDTO holds per-role flat commissions.
type RoleCommissionsDTO struct {
	Captador float64 `json:"captador"`
	Liner    float64 `json:"liner"`
	Closer   float64 `json:"closer"`
	FTB      float64 `json:"ftb"`
}

// ImportResponse reports a bulk catalog import.
type ImportResponse struct {
	Imported int          `json:"imported"`
	Products []ProductDTO `json:"products"`
}

// =============================================================================
// SALES
// =============================================================================

// SaleRequest is the body of create, update and preview calls.
//
// Exactly one of ProductID and ProjectName identifies what was sold. A manual
// project is priced by CommissionType/CommissionValue.
type SaleRequest struct {
	ClientName      string              `json:"client_name"`
	SaleDate        string              `json:"sale_date"`
	ProductID       string              `json:"product_id,omitempty"`
	ProjectName     string              `json:"project_name,omitempty"`
	Category        string              `json:"category,omitempty"`
	Role            string              `json:"role"`
	TableValue      float64             `json:"table_value"`
	EntryValue      float64             `json:"entry_value"`
	QuotaQty        int                 `json:"quota_qty,omitempty"`
	Signal          *PaymentLegRequest  `json:"signal,omitempty"`
	Installments    *InstallmentRequest `json:"installments,omitempty"`
	Observation     string              `json:"observation,omitempty"`
	CommissionType  string              `json:"commission_type,omitempty"`
	CommissionValue *float64            `json:"commission_value,omitempty"`
}

// PaymentLegRequest is the signal, combined across all quotas.
type PaymentLegRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

// InstallmentRequest describes how the remaining entry balance is paid.
type InstallmentRequest struct {
	Method string `json:"method"`
	Count  int    `json:"count"`
}

// SaleDTO represents a sale in API responses.
type SaleDTO struct {
	ID                string           `json:"id"`
	ClientName        string           `json:"client_name"`
	SaleDate          string           `json:"sale_date"`
	Project           string           `json:"project"`
	ProductID         string           `json:"product_id,omitempty"`
	Category          string           `json:"category,omitempty"`
	Role              string           `json:"role"`
	SaleValue         float64          `json:"sale_value"`
	EntryTableValue   float64          `json:"entry_table_value"`
	CommissionType    string           `json:"commission_type,omitempty"`
	CommissionValue   float64          `json:"commission_value"`
	CommissionTotal   float64          `json:"commission_total"`
	CommissionStatus  string           `json:"commission_status"`
	EntryPayments     []PaymentPartDTO `json:"entry_payments"`
	CommissionEntries []EntryDTO       `json:"commission_entries"`
	Observation       string           `json:"observation,omitempty"`
	CreatedAt         string           `json:"created_at,omitempty"`
	UpdatedAt         string           `json:"updated_at,omitempty"`
}

// PaymentPartDTO is one payment commitment of the buyer.
type PaymentPartDTO struct {
	ID           string  `json:"id"`
	Method       string  `json:"method"`
	MethodLabel  string  `json:"method_label"`
	Amount       float64 `json:"amount"`
	Installments int     `json:"installments"`
}

// EntryDTO is one scheduled commission entry.
type EntryDTO struct {
	ID          string  `json:"id"`
	SaleID      string  `json:"sale_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date"`
	DueMonth    string  `json:"due_month"`
	Status      string  `json:"status"`
}

// PreviewDTO is the commission a submission would generate.
type PreviewDTO struct {
	Total      float64 `json:"total"`
	PerQuota   float64 `json:"per_quota"`
	QuotaQty   int     `json:"quota_qty"`
	FirstQuota SaleDTO `json:"first_quota"`
}

// AmountRequest edits an entry amount.
type AmountRequest struct {
	Amount *float64 `json:"amount"`
}

// =============================================================================
// REPORTS
// =============================================================================

// CashFlowResponse is the month-by-month commission forecast.
type CashFlowResponse struct {
	From      string           `json:"from,omitempty"`
	To        string           `json:"to,omitempty"`
	Months    []MonthBucketDTO `json:"months"`
	Predicted float64          `json:"predicted"`
	Received  float64          `json:"received"`
	Cancelled float64          `json:"cancelled"`
}

// MonthBucketDTO is one due month.
type MonthBucketDTO struct {
	Month     string  `json:"month"`
	Predicted float64 `json:"predicted"`
	Received  float64 `json:"received"`
	Cancelled float64 `json:"cancelled"`
	Expected  float64 `json:"expected"`
	Entries   int     `json:"entries"`
}

// RoleSummaryDTO aggregates the sales made under one role.
type RoleSummaryDTO struct {
	Role            string  `json:"role"`
	Sales           int     `json:"sales"`
	TotalSaleValue  float64 `json:"total_sale_value"`
	TotalCommission float64 `json:"total_commission"`
	Received        float64 `json:"received"`
	Pending         float64 `json:"pending"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toProductDTO(p commission.Product) ProductDTO {
	dto := ProductDTO{
		ID:              string(p.ID),
		Title:           p.Title,
		Location:        p.Location,
		Price:           p.Price.InexactFloat64(),
		Bedrooms:        p.Bedrooms,
		Category:        p.Category,
		CommissionType:  string(p.Rule.Type),
		CommissionValue: p.Rule.Value.InexactFloat64(),
		CreatedAt:       formatTime(p.CreatedAt),
	}
	if o := p.Overrides; o != nil {
		dto.Overrides = &RoleCommissionsDTO{
			Captador: o.Captador.InexactFloat64(),
			Liner:    o.Liner.InexactFloat64(),
			Closer:   o.Closer.InexactFloat64(),
			FTB:      o.FTB.InexactFloat64(),
		}
	}
	return dto
}

func toProductDTOs(products []commission.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}
	return dtos
}

func toSaleDTO(s commission.Sale) SaleDTO {
	dto := SaleDTO{
		ID:                string(s.ID),
		ClientName:        s.ClientName,
		SaleDate:          commission.FormatDate(s.SaleDate),
		Project:           s.Project,
		ProductID:         string(s.ProductID),
		Category:          s.Category,
		Role:              string(s.Role),
		SaleValue:         s.SaleValue.InexactFloat64(),
		EntryTableValue:   s.EntryTableValue.InexactFloat64(),
		CommissionType:    string(s.Rule.Type),
		CommissionValue:   s.Rule.Value.InexactFloat64(),
		CommissionTotal:   s.CommissionTotal.InexactFloat64(),
		CommissionStatus:  string(s.CommissionStatus),
		EntryPayments:     make([]PaymentPartDTO, 0, len(s.EntryPayments)),
		CommissionEntries: make([]EntryDTO, 0, len(s.CommissionEntries)),
		Observation:       s.Observation,
		CreatedAt:         formatTime(s.CreatedAt),
		UpdatedAt:         formatTime(s.UpdatedAt),
	}
	for _, p := range s.EntryPayments {
		dto.EntryPayments = append(dto.EntryPayments, PaymentPartDTO{
			ID:           p.ID,
			Method:       string(p.Method),
			MethodLabel:  p.Method.Label(),
			Amount:       p.Amount.InexactFloat64(),
			Installments: p.Installments,
		})
	}
	for _, e := range s.CommissionEntries {
		dto.CommissionEntries = append(dto.CommissionEntries, toEntryDTO(e))
	}
	return dto
}

func toSaleDTOs(sales []commission.Sale) []SaleDTO {
	dtos := make([]SaleDTO, 0, len(sales))
	for _, s := range sales {
		dtos = append(dtos, toSaleDTO(s))
	}
	return dtos
}

func toEntryDTO(e commission.CommissionEntry) EntryDTO {
	return EntryDTO{
		ID:          string(e.ID),
		SaleID:      string(e.SaleID),
		Description: e.Description,
		Amount:      e.Amount.InexactFloat64(),
		DueDate:     commission.FormatDate(e.DueDate),
		DueMonth:    e.DueMonth,
		Status:      string(e.Status),
	}
}

func toRoleSummaryDTO(s commission.RoleSummary) RoleSummaryDTO {
	return RoleSummaryDTO{
		Role:            string(s.Role),
		Sales:           s.Sales,
		TotalSaleValue:  s.TotalSaleValue.InexactFloat64(),
		TotalCommission: s.TotalCommission.InexactFloat64(),
		Received:        s.Received.InexactFloat64(),
		Pending:         s.Pending.InexactFloat64(),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

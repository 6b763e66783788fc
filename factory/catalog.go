/*
Package factory provides JSON/YAML to Go catalog conversion.

PURPOSE:
  Converts catalog definitions (products with their commission rules) into
  commission.Product values. Lets an operator seed or bulk-load a catalog
  from a file instead of creating products one by one over the API.

SCHEMA (YAML shown, JSON uses the same keys):
  products:
    - id: resort-praia-azul          # optional, generated when empty
      title: Resort Praia Azul
      location: Caldas Novas
      price: 200000
      bedrooms: 2
      category: 2 Quartos            # optional, derived from bedrooms
      commission_type: percentage    # percentage | fixed, default percentage
      commission_value: 5
      overrides:                     # optional flat per-unit amounts
        liner: 1500

KEY FEATURES:
  - Validates rule type and non-negative amounts
  - Sets sensible defaults (ID, rule type, category)
  - Round-trips: ToJSON / ExportYAML produce loadable documents

USAGE:
  f := factory.NewCatalogFactory()
  products, err := f.LoadFile("./catalog.yaml")

SEE ALSO:
  - commission/types.go: Product and CommissionRule
  - api/handlers.go: Catalog import/export endpoints
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/multicota/commission-engine/commission"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// CatalogJSON is a document holding many products.
type CatalogJSON struct {
	Products []ProductJSON `json:"products" yaml:"products"`
}

// ProductJSON is the file representation of a product.
type ProductJSON struct {
	ID              string         `json:"id,omitempty" yaml:"id,omitempty"`
	Title           string         `json:"title" yaml:"title"`
	Location        string         `json:"location,omitempty" yaml:"location,omitempty"`
	Price           float64        `json:"price" yaml:"price"`
	Bedrooms        int            `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty"`
	Category        string         `json:"category,omitempty" yaml:"category,omitempty"`
	CommissionType  string         `json:"commission_type,omitempty" yaml:"commission_type,omitempty"`
	CommissionValue float64        `json:"commission_value" yaml:"commission_value"`
	Overrides       *OverridesJSON `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// OverridesJSON holds per-role flat commissions.
type OverridesJSON struct {
	Captador float64 `json:"captador,omitempty" yaml:"captador,omitempty"`
	Liner    float64 `json:"liner,omitempty" yaml:"liner,omitempty"`
	Closer   float64 `json:"closer,omitempty" yaml:"closer,omitempty"`
	FTB      float64 `json:"ftb,omitempty" yaml:"ftb,omitempty"`
}

// ErrInvalidProduct wraps every validation failure.
var ErrInvalidProduct = errors.New("invalid product")

// =============================================================================
// CATALOG FACTORY
// =============================================================================

// CatalogFactory converts catalog documents to products.
type CatalogFactory struct {
	NewID commission.IDGenerator
	Now   func() time.Time
}

// NewCatalogFactory creates a factory using random UUIDs and the wall clock.
func NewCatalogFactory() *CatalogFactory {
	return &CatalogFactory{NewID: commission.NewUUID, Now: time.Now}
}

// ParseJSON parses a JSON catalog document.
func (f *CatalogFactory) ParseJSON(data []byte) ([]commission.Product, error) {
	var doc CatalogJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	return f.FromDocument(doc)
}

// ParseYAML parses a YAML catalog document.
func (f *CatalogFactory) ParseYAML(data []byte) ([]commission.Product, error) {
	var doc CatalogJSON
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return f.FromDocument(doc)
}

// LoadFile reads a catalog from disk. Files ending in .yaml or .yml are read
// as YAML, anything else as JSON.
func (f *CatalogFactory) LoadFile(path string) ([]commission.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ParseYAML(data)
	default:
		return f.ParseJSON(data)
	}
}

// FromDocument converts every product of doc. The first invalid product
// aborts the conversion.
func (f *CatalogFactory) FromDocument(doc CatalogJSON) ([]commission.Product, error) {
	products := make([]commission.Product, 0, len(doc.Products))
	for i, pj := range doc.Products {
		p, err := f.FromJSON(pj)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i+1, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// FromJSON converts and validates a single product.
func (f *CatalogFactory) FromJSON(pj ProductJSON) (commission.Product, error) {
	if strings.TrimSpace(pj.Title) == "" {
		return commission.Product{}, fmt.Errorf("%w: title is required", ErrInvalidProduct)
	}
	if pj.Price < 0 {
		return commission.Product{}, fmt.Errorf("%w: negative price", ErrInvalidProduct)
	}
	if pj.CommissionValue < 0 {
		return commission.Product{}, fmt.Errorf("%w: negative commission value", ErrInvalidProduct)
	}
	ruleType, err := parseCommissionType(pj.CommissionType)
	if err != nil {
		return commission.Product{}, err
	}

	p := commission.Product{
		ID:       commission.ProductID(pj.ID),
		Title:    strings.TrimSpace(pj.Title),
		Location: pj.Location,
		Price:    decimal.NewFromFloat(pj.Price),
		Bedrooms: pj.Bedrooms,
		Category: pj.Category,
		Rule: commission.CommissionRule{
			Type:  ruleType,
			Value: decimal.NewFromFloat(pj.CommissionValue),
		},
		CreatedAt: f.now(),
	}
	if p.ID == "" {
		p.ID = commission.ProductID(f.id())
	}
	if p.Category == "" && p.Bedrooms > 0 {
		p.Category = fmt.Sprintf("%d Quartos", p.Bedrooms)
	}
	if o := pj.Overrides; o != nil {
		p.Overrides = &commission.RoleCommissions{
			Captador: decimal.NewFromFloat(o.Captador),
			Liner:    decimal.NewFromFloat(o.Liner),
			Closer:   decimal.NewFromFloat(o.Closer),
			FTB:      decimal.NewFromFloat(o.FTB),
		}
	}
	return p, nil
}

// ToJSON converts a product back to its file representation.
func (f *CatalogFactory) ToJSON(p commission.Product) ProductJSON {
	pj := ProductJSON{
		ID:              string(p.ID),
		Title:           p.Title,
		Location:        p.Location,
		Price:           p.Price.InexactFloat64(),
		Bedrooms:        p.Bedrooms,
		Category:        p.Category,
		CommissionType:  string(p.Rule.Type),
		CommissionValue: p.Rule.Value.InexactFloat64(),
	}
	if o := p.Overrides; o != nil {
		pj.Overrides = &OverridesJSON{
			Captador: o.Captador.InexactFloat64(),
			Liner:    o.Liner.InexactFloat64(),
			Closer:   o.Closer.InexactFloat64(),
			FTB:      o.FTB.InexactFloat64(),
		}
	}
	return pj
}

// ExportYAML renders products as a YAML catalog document.
func (f *CatalogFactory) ExportYAML(products []commission.Product) ([]byte, error) {
	doc := CatalogJSON{Products: make([]ProductJSON, 0, len(products))}
	for _, p := range products {
		doc.Products = append(doc.Products, f.ToJSON(p))
	}
	return yaml.Marshal(doc)
}

func parseCommissionType(s string) (commission.CommissionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "percentage", "percent":
		return commission.CommissionPercentage, nil
	case "fixed":
		return commission.CommissionFixed, nil
	default:
		return "", fmt.Errorf("%w: unknown commission type %q", ErrInvalidProduct, s)
	}
}

func (f *CatalogFactory) id() string {
	if f.NewID == nil {
		return commission.NewUUID()
	}
	return f.NewID()
}

func (f *CatalogFactory) now() time.Time {
	if f.Now == nil {
		return time.Now().UTC()
	}
	return f.Now().UTC()
}

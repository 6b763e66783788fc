/*
rule.go - Commission rule resolution

PURPOSE:
  Computes the total commission a request generates from a product's rule and
  the salesperson's role. The result feeds the schedule generator.

RESOLUTION ORDER:
  1. Per-role override (flat amount per unit) if positive for the role
  2. Otherwise base unit commission:
       percentage: table value * value / 100
       fixed:      value
  3. Role multiplier: FTB earns double, every other role earns the base
  4. Multiply by the quota quantity

  Overrides bypass steps 2 and 3 entirely.

FAILURE MODES:
  None. Missing rule data resolves to zero, and so do negative results.

EXAMPLE:
  // 5% of 200,000 for FTB on one quota = 20,000
  total := ResolveCommission(RuleInput{
      Rule:       CommissionRule{Type: CommissionPercentage, Value: decimal.NewFromInt(5)},
      Role:       RoleFTB,
      TableValue: decimal.NewFromInt(200000),
      Quantity:   1,
  })

SEE ALSO:
  - schedule.go: Consumes the resolved total
  - builder.go: Resolves once per submission, splits per quota
*/
package commission

import "github.com/shopspring/decimal"

var (
	hundred           = decimal.NewFromInt(100)
	primaryMultiplier = decimal.NewFromInt(2)
)

// RuleInput carries everything needed to resolve a commission.
type RuleInput struct {
	Rule       CommissionRule
	Overrides  *RoleCommissions // nil when the product defines none
	Role       Role
	TableValue decimal.Decimal // per-unit table value
	Quantity   int             // quotas priced; < 1 is treated as 1
}

// ResolveUnitCommission returns the commission for a single unit, role
// multiplier included.
func ResolveUnitCommission(in RuleInput) decimal.Decimal {
	if in.Overrides != nil {
		if o := in.Overrides.For(in.Role); o.IsPositive() {
			return o
		}
	}

	var base decimal.Decimal
	switch in.Rule.Type {
	case CommissionPercentage:
		base = in.TableValue.Mul(in.Rule.Value.Div(hundred))
	case CommissionFixed:
		base = in.Rule.Value
	default:
		return decimal.Zero
	}

	if in.Role.IsPrimary() {
		base = base.Mul(primaryMultiplier)
	}
	return base
}

// ResolveCommission returns the total commission for the requested quantity.
// The result is never negative.
func ResolveCommission(in RuleInput) decimal.Decimal {
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}
	total := ResolveUnitCommission(in).Mul(decimal.NewFromInt(int64(qty)))
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

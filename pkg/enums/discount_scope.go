package enums

import "fmt"

// DiscountScope identifies which relation a discount is attached to.
type DiscountScope string

const (
	DiscountScopeProduct DiscountScope = "product"
	DiscountScopeMember  DiscountScope = "member"
	DiscountScopeTier    DiscountScope = "tier"
	DiscountScopeGlobal  DiscountScope = "global"
)

var validDiscountScopes = []DiscountScope{
	DiscountScopeProduct,
	DiscountScopeMember,
	DiscountScopeTier,
	DiscountScopeGlobal,
}

// String implements fmt.Stringer.
func (d DiscountScope) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountScope.
func (d DiscountScope) IsValid() bool {
	for _, candidate := range validDiscountScopes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountScope converts raw input into a DiscountScope.
func ParseDiscountScope(value string) (DiscountScope, error) {
	for _, candidate := range validDiscountScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount scope %q", value)
}

package enums

// UserRole identifies the access level of an account.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleSeller   UserRole = "seller"
	RoleAdmin    UserRole = "admin"
)

// IsValid reports whether the role is one of the known values.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanSell reports whether the role may manage product listings.
func (r UserRole) CanSell() bool {
	return r == RoleSeller || r == RoleAdmin
}

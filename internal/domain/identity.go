package domain

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// Identity is the already-validated caller identity supplied by the
// auth collaborator. No token handling happens in this module.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

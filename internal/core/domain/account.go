package domain

import (
	"errors"
	"fmt"
	"time"
)

// Role is the closed set of profiles an account can hold.
type Role string

const (
	RolePecas      Role = "pecas"
	RoleComercial  Role = "comercial"
	RoleFinanceiro Role = "financeiro"
	RoleGerente    Role = "gerente"
	RoleAdmin      Role = "admin"
)

// roleLabels keeps the enumeration in display order.
var roleLabels = []struct {
	role  Role
	label string
}{
	{RolePecas, "Peças"},
	{RoleComercial, "Comercial"},
	{RoleFinanceiro, "Financeiro"},
	{RoleGerente, "Gerente"},
	{RoleAdmin, "Administrador"},
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrLastAdmin          = errors.New("the last admin account cannot be removed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("access forbidden")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// Roles returns every valid role in display order.
func Roles() []Role {
	out := make([]Role, 0, len(roleLabels))
	for _, r := range roleLabels {
		out = append(out, r.role)
	}
	return out
}

// Valid reports whether r belongs to the enumeration.
func (r Role) Valid() bool {
	for _, known := range roleLabels {
		if known.role == r {
			return true
		}
	}
	return false
}

// Label is the human-facing name of the role.
func (r Role) Label() string {
	for _, known := range roleLabels {
		if known.role == r {
			return known.label
		}
	}
	return string(r)
}

// ParseRole converts s into a Role, rejecting anything outside the enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
	return r, nil
}

// Account is a stored user record. PasswordHash never leaves the core.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the account holds the administrative role.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Projection strips the credential from the account.
func (a Account) Projection() Projection {
	return Projection{
		ID:       a.ID,
		Username: a.Username,
		Role:     a.Role,
		Name:     a.Name,
	}
}

// Projection is the credential-free view of an account. It is what sessions
// persist and what the API returns.
type Projection struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

// Validate checks the fields a session record must carry.
func (p Projection) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	case p.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	case !p.Role.Valid():
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, p.Role)
	}
	return nil
}

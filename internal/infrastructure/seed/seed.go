// Package seed holds the demo accounts created on an empty store.
package seed

import (
	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
)

// DemoAccounts returns one account per profile. The admin account is what
// keeps a fresh installation administrable.
func DemoAccounts() []ports.CreateAccountInput {
	return []ports.CreateAccountInput{
		{Username: "pecas", Name: "Usuário Peças", Role: domain.RolePecas, Password: "senha123"},
		{Username: "comercial", Name: "Usuário Comercial", Role: domain.RoleComercial, Password: "senha123"},
		{Username: "financeiro", Name: "Usuário Financeiro", Role: domain.RoleFinanceiro, Password: "senha123"},
		{Username: "gerente", Name: "Usuário Gerente", Role: domain.RoleGerente, Password: "senha123"},
		{Username: "admin", Name: "Administrador", Role: domain.RoleAdmin, Password: "admin123"},
	}
}

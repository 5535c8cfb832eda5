package user

import (
	"strings"
	"time"
)

const (
	RoleAdmin      = "ADMIN"
	RoleSupervisor = "SUPERVISOR"
	RoleBackoffice = "BACKOFFICE"
)

var validRoles = map[string]struct{}{
	RoleAdmin:      {},
	RoleSupervisor: {},
	RoleBackoffice: {},
}

// User representa um membro da equipe interna com papel de acesso.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	SenhaHash string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Actor é a identidade resolvida que acompanha cada requisição.
// O núcleo confia no par (id, papel) entregue pela autenticação externa.
type Actor struct {
	ID   int64
	Role string
}

// CreateInput encapsula campos para cadastro de usuário.
type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// NormalizeRole padroniza papel em maiúsculas.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// IsValidRole indica se o papel é aceito.
func IsValidRole(role string) bool {
	_, ok := validRoles[NormalizeRole(role)]
	return ok
}

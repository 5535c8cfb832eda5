package demand

import (
	"github.com/i9parcerias/demandas/internal/user"
)

// Policy expõe as capacidades de um papel sobre demandas. A edição é avaliada
// contra o responsável persistido; a atribuição contra o responsável
// pretendido. São capacidades ortogonais: poder tocar o registro não implica
// poder redirecionar a posse dele.
type Policy interface {
	// CanEdit decide se o ator pode alterar uma demanda cujo responsável
	// atual é (assigneeID, assigneeRole).
	CanEdit(actor user.Actor, assigneeID int64, assigneeRole string) bool
	// CanAssign decide se o ator pode criar uma demanda atribuída a
	// (targetID, targetRole) ou transferi-la para esse alvo.
	CanAssign(actor user.Actor, targetID int64, targetRole string) bool
	// CanDelete decide se o ator pode excluir demandas.
	CanDelete(actor user.Actor) bool
}

type adminPolicy struct{}

func (adminPolicy) CanEdit(user.Actor, int64, string) bool   { return true }
func (adminPolicy) CanAssign(user.Actor, int64, string) bool { return true }
func (adminPolicy) CanDelete(user.Actor) bool                { return true }

type supervisorPolicy struct{}

func (supervisorPolicy) CanEdit(actor user.Actor, assigneeID int64, assigneeRole string) bool {
	return assigneeID == actor.ID || assigneeRole == user.RoleBackoffice
}

func (supervisorPolicy) CanAssign(actor user.Actor, targetID int64, targetRole string) bool {
	return targetID == actor.ID || targetRole == user.RoleBackoffice
}

func (supervisorPolicy) CanDelete(user.Actor) bool { return false }

type backofficePolicy struct{}

func (backofficePolicy) CanEdit(actor user.Actor, assigneeID int64, _ string) bool {
	return assigneeID == actor.ID
}

func (backofficePolicy) CanAssign(actor user.Actor, targetID int64, _ string) bool {
	return targetID == actor.ID
}

func (backofficePolicy) CanDelete(user.Actor) bool { return false }

var policies = map[string]Policy{
	user.RoleAdmin:      adminPolicy{},
	user.RoleSupervisor: supervisorPolicy{},
	user.RoleBackoffice: backofficePolicy{},
}

// PolicyFor devolve a estratégia do papel; papel desconhecido nega tudo.
func PolicyFor(role string) (Policy, bool) {
	p, ok := policies[role]
	return p, ok
}

// CanEdit avalia edição contra o responsável persistido da demanda.
func CanEdit(actor user.Actor, d *Demand) bool {
	p, ok := PolicyFor(actor.Role)
	if !ok {
		return false
	}
	return p.CanEdit(actor, d.AssigneeID, d.AssigneeRole)
}

// CanAssign avalia criação atribuída ou transferência para o alvo informado.
func CanAssign(actor user.Actor, targetID int64, targetRole string) bool {
	p, ok := PolicyFor(actor.Role)
	if !ok {
		return false
	}
	return p.CanAssign(actor, targetID, targetRole)
}

// CanDelete avalia exclusão; somente ADMIN.
func CanDelete(actor user.Actor) bool {
	p, ok := PolicyFor(actor.Role)
	if !ok {
		return false
	}
	return p.CanDelete(actor)
}

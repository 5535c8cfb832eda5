package demand

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/i9parcerias/demandas/internal/apperr"
	"github.com/i9parcerias/demandas/internal/partner"
	"github.com/i9parcerias/demandas/internal/user"
)

// Store define o acesso à persistência exigido pelo serviço.
type Store interface {
	Create(ctx context.Context, input CreateInput, creatorID int64) (*Demand, error)
	Get(ctx context.Context, id int64) (*Demand, error)
	Update(ctx context.Context, rec UpdateRecord) (*Demand, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter Filter) ([]Demand, error)
	ListOpenWithPrazo(ctx context.Context) ([]Demand, error)
}

// RoleDirectory resolve o papel de um usuário candidato a responsável.
// É a única leitura externa no caminho de escrita: se o papel não puder ser
// resolvido, a operação falha fechada com acesso negado.
type RoleDirectory interface {
	GetRole(ctx context.Context, id int64) (string, error)
}

// CollaboratorDirectory valida o vínculo colaborador/parceiro na escrita.
type CollaboratorDirectory interface {
	GetCollaborator(ctx context.Context, id int64) (*partner.Collaborator, error)
}

// UpdateRecord é o que o serviço manda persistir após as verificações.
// EvidenceFinish nulo preserva a evidência de encerramento atual.
type UpdateRecord struct {
	ID             int64
	PartnerID      int64
	CollaboratorID *int64
	AssigneeID     int64
	EditorID       int64
	Tipo           string
	Urgencia       string
	Prazo          *time.Time
	Descricao      string
	Status         string
	EvidenceFinish *string
}

// Service aplica o protocolo de permissão e o ciclo de vida das demandas.
type Service struct {
	store         Store
	roles         RoleDirectory
	collaborators CollaboratorDirectory
}

// NewService cria uma nova instância do serviço.
func NewService(store Store, roles RoleDirectory, collaborators CollaboratorDirectory) *Service {
	return &Service{store: store, roles: roles, collaborators: collaborators}
}

// Create abre demanda em ABERTA, com hierarquia aninhada opcional criada na
// mesma transação (tudo ou nada). A regra de atribuição é avaliada contra o
// responsável pretendido.
func (s *Service) Create(ctx context.Context, actor user.Actor, input CreateInput) (*Demand, error) {
	input.Tipo = strings.TrimSpace(input.Tipo)
	input.Descricao = strings.TrimSpace(input.Descricao)
	input.Urgencia = NormalizeUrgencia(input.Urgencia)

	fields := map[string]string{}
	if input.PartnerID <= 0 {
		fields["partnerId"] = "parceiro é obrigatório"
	}
	if input.AssigneeID <= 0 {
		fields["assigneeId"] = "responsável é obrigatório"
	}
	if input.Tipo == "" {
		fields["tipo"] = "tipo é obrigatório"
	}
	if !IsValidUrgencia(input.Urgencia) {
		fields["urgencia"] = "urgência inválida"
	}
	for _, sd := range input.SubDemands {
		if strings.TrimSpace(sd.Titulo) == "" {
			fields["subDemands"] = "toda sub-demanda precisa de título"
		}
		for _, step := range sd.SubSteps {
			if strings.TrimSpace(step.Nome) == "" {
				fields["subSteps"] = "toda sub-etapa precisa de nome"
			}
		}
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	if err := s.checkCollaborator(ctx, input.CollaboratorID, input.PartnerID); err != nil {
		return nil, err
	}

	if err := s.checkAssign(ctx, actor, input.AssigneeID); err != nil {
		return nil, err
	}

	return s.store.Create(ctx, input, actor.ID)
}

// Get recupera demanda com hierarquia e dados de exibição.
func (s *Service) Get(ctx context.Context, id int64) (*Demand, error) {
	return s.store.Get(ctx, id)
}

// List devolve demandas que casam com todos os filtros informados.
// O sentinela "all" em status equivale a não filtrar.
func (s *Service) List(ctx context.Context, filter Filter) ([]Demand, error) {
	if filter.Status != nil {
		status := NormalizeStatus(*filter.Status)
		if status == "" || status == "ALL" {
			filter.Status = nil
		} else {
			if !IsValidStatus(status) {
				return nil, apperr.Validation("status", "status inválido")
			}
			filter.Status = &status
		}
	}
	return s.store.List(ctx, filter)
}

// Update aplica edição completa. A permissão de edição é avaliada contra o
// responsável persistido; a de transferência, somente quando o responsável
// muda. Se a transferência for negada, a edição inteira é rejeitada.
func (s *Service) Update(ctx context.Context, actor user.Actor, id int64, input UpdateInput) (*Demand, error) {
	input.Tipo = strings.TrimSpace(input.Tipo)
	input.Descricao = strings.TrimSpace(input.Descricao)
	input.Urgencia = NormalizeUrgencia(input.Urgencia)
	input.Status = NormalizeStatus(input.Status)

	fields := map[string]string{}
	if input.PartnerID <= 0 {
		fields["partnerId"] = "parceiro é obrigatório"
	}
	if input.AssigneeID <= 0 {
		fields["assigneeId"] = "responsável é obrigatório"
	}
	if input.Tipo == "" {
		fields["tipo"] = "tipo é obrigatório"
	}
	if !IsValidUrgencia(input.Urgencia) {
		fields["urgencia"] = "urgência inválida"
	}
	if input.Status != "" && !IsValidStatus(input.Status) {
		fields["status"] = "status inválido"
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanEdit(actor, existing) {
		return nil, apperr.ErrForbidden
	}

	if input.AssigneeID != existing.AssigneeID {
		if err := s.checkAssign(ctx, actor, input.AssigneeID); err != nil {
			return nil, err
		}
	}

	status := input.Status
	if status == "" {
		status = existing.Status
	}
	if IsTerminal(existing.Status) && !IsTerminal(status) {
		return nil, apperr.Validation("status", "demanda encerrada não pode voltar a ficar ativa")
	}

	if err := s.checkCollaborator(ctx, input.CollaboratorID, input.PartnerID); err != nil {
		return nil, err
	}

	return s.store.Update(ctx, UpdateRecord{
		ID:             id,
		PartnerID:      input.PartnerID,
		CollaboratorID: input.CollaboratorID,
		AssigneeID:     input.AssigneeID,
		EditorID:       actor.ID,
		Tipo:           input.Tipo,
		Urgencia:       input.Urgencia,
		Prazo:          input.Prazo,
		Descricao:      input.Descricao,
		Status:         status,
	})
}

// Finish conclui a demanda preservando os demais campos, com evidência de
// encerramento opcional. É a ação de caso comum da interface e não exige que
// o chamador reenvie o registro completo.
func (s *Service) Finish(ctx context.Context, actor user.Actor, id int64, evidenceFinish string) (*Demand, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanEdit(actor, existing) {
		return nil, apperr.ErrForbidden
	}

	rec := UpdateRecord{
		ID:             id,
		PartnerID:      existing.PartnerID,
		CollaboratorID: existing.CollaboratorID,
		AssigneeID:     existing.AssigneeID,
		EditorID:       actor.ID,
		Tipo:           existing.Tipo,
		Urgencia:       existing.Urgencia,
		Prazo:          existing.Prazo,
		Descricao:      existing.Descricao,
		Status:         StatusConcluida,
	}
	if evidence := strings.TrimSpace(evidenceFinish); evidence != "" {
		rec.EvidenceFinish = &evidence
	}

	return s.store.Update(ctx, rec)
}

// Delete remove a demanda de forma definitiva; somente ADMIN.
func (s *Service) Delete(ctx context.Context, actor user.Actor, id int64) error {
	if !CanDelete(actor) {
		return apperr.ErrForbidden
	}
	return s.store.Delete(ctx, id)
}

// DeadlineFeed monta o feed de atrasadas/próximas do prazo no instante dado.
func (s *Service) DeadlineFeed(ctx context.Context, now time.Time) (Feed, error) {
	demands, err := s.store.ListOpenWithPrazo(ctx)
	if err != nil {
		return Feed{}, err
	}
	return BuildFeed(now, demands), nil
}

// checkAssign aplica a regra de atribuição/transferência contra o alvo.
func (s *Service) checkAssign(ctx context.Context, actor user.Actor, targetID int64) error {
	targetRole := actor.Role
	if targetID != actor.ID {
		role, err := s.roles.GetRole(ctx, targetID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.ErrForbidden
			}
			return err
		}
		targetRole = role
	}

	if !CanAssign(actor, targetID, targetRole) {
		return apperr.ErrForbidden
	}
	return nil
}

// checkCollaborator garante que o colaborador informado pertence ao parceiro.
func (s *Service) checkCollaborator(ctx context.Context, collaboratorID *int64, partnerID int64) error {
	if collaboratorID == nil {
		return nil
	}

	collab, err := s.collaborators.GetCollaborator(ctx, *collaboratorID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("collaboratorId", "colaborador inexistente")
		}
		return err
	}
	if collab.PartnerID != partnerID {
		return apperr.Validation("collaboratorId", "colaborador não pertence ao parceiro da demanda")
	}
	return nil
}

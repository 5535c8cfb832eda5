package task

import (
	"context"
	"strings"
	"time"

	"github.com/i9parcerias/demandas/internal/apperr"
)

// Store define o acesso à persistência exigido pelo serviço.
type Store interface {
	CreateSubDemand(ctx context.Context, input CreateSubDemandInput) (*SubDemand, error)
	GetSubDemand(ctx context.Context, id int64) (*SubDemand, error)
	ListByDemand(ctx context.Context, demandID int64) ([]SubDemand, error)
	UpdateSubDemand(ctx context.Context, input UpdateSubDemandInput) (*SubDemand, error)
	CreateSubStep(ctx context.Context, subDemandID int64, nome string, prazo *time.Time) (*SubStep, error)
	GetSubStep(ctx context.Context, id int64) (*SubStep, error)
	UpdateSubStep(ctx context.Context, id int64, nome, status string) (*SubStep, error)
	DeleteSubStep(ctx context.Context, id int64) error
}

// Service reúne regras da hierarquia de tarefas (sub-demandas e sub-etapas).
// As mutações não exigem posse da demanda-mãe: a hierarquia funciona como
// lista de trabalho compartilhada entre a equipe autenticada.
type Service struct {
	store Store
}

// NewService cria uma nova instância do serviço.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateSubDemand adiciona sub-demanda a uma demanda existente.
func (s *Service) CreateSubDemand(ctx context.Context, input CreateSubDemandInput) (*SubDemand, error) {
	input.Titulo = strings.TrimSpace(input.Titulo)
	input.Descricao = strings.TrimSpace(input.Descricao)

	if input.DemandID <= 0 {
		return nil, apperr.Validation("demandId", "demanda é obrigatória")
	}
	if input.Titulo == "" {
		return nil, apperr.Validation("titulo", "título é obrigatório")
	}

	return s.store.CreateSubDemand(ctx, input)
}

// ListByDemand lista sub-demandas da demanda com etapas aninhadas.
func (s *Service) ListByDemand(ctx context.Context, demandID int64) ([]SubDemand, error) {
	return s.store.ListByDemand(ctx, demandID)
}

// UpdateSubDemand altera campos informados da sub-demanda.
func (s *Service) UpdateSubDemand(ctx context.Context, input UpdateSubDemandInput) (*SubDemand, error) {
	if input.Titulo != nil {
		trimmed := strings.TrimSpace(*input.Titulo)
		if trimmed == "" {
			return nil, apperr.Validation("titulo", "título é obrigatório")
		}
		input.Titulo = &trimmed
	}
	return s.store.UpdateSubDemand(ctx, input)
}

// CreateSubStep adiciona sub-etapa já em PENDENTE.
func (s *Service) CreateSubStep(ctx context.Context, subDemandID int64, nome string, prazo *time.Time) (*SubStep, error) {
	nome = strings.TrimSpace(nome)
	if subDemandID <= 0 {
		return nil, apperr.Validation("subDemandId", "sub-demanda é obrigatória")
	}
	if nome == "" {
		return nil, apperr.Validation("nome", "nome é obrigatório")
	}

	if _, err := s.store.GetSubDemand(ctx, subDemandID); err != nil {
		return nil, err
	}

	return s.store.CreateSubStep(ctx, subDemandID, nome, prazo)
}

// ToggleSubStep alterna PENDENTE e CONCLUIDA; duas chamadas restauram o estado.
func (s *Service) ToggleSubStep(ctx context.Context, id int64) (*SubStep, error) {
	step, err := s.store.GetSubStep(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateSubStep(ctx, id, step.Nome, ToggleStatus(step.Status))
}

// RenameSubStep altera apenas o nome da sub-etapa.
func (s *Service) RenameSubStep(ctx context.Context, id int64, nome string) (*SubStep, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return nil, apperr.Validation("nome", "nome é obrigatório")
	}

	step, err := s.store.GetSubStep(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateSubStep(ctx, id, nome, step.Status)
}

// UpdateSubStep aplica nome e/ou status; campos nulos preservam o atual.
func (s *Service) UpdateSubStep(ctx context.Context, id int64, nome, status *string) (*SubStep, error) {
	step, err := s.store.GetSubStep(ctx, id)
	if err != nil {
		return nil, err
	}

	novoNome := step.Nome
	if nome != nil {
		trimmed := strings.TrimSpace(*nome)
		if trimmed == "" {
			return nil, apperr.Validation("nome", "nome é obrigatório")
		}
		novoNome = trimmed
	}

	novoStatus := step.Status
	if status != nil {
		normalized := strings.ToUpper(strings.TrimSpace(*status))
		if normalized != StepPendente && normalized != StepConcluida {
			return nil, apperr.Validation("status", "status inválido")
		}
		novoStatus = normalized
	}

	return s.store.UpdateSubStep(ctx, id, novoNome, novoStatus)
}

// DeleteSubStep remove a sub-etapa definitivamente.
func (s *Service) DeleteSubStep(ctx context.Context, id int64) error {
	return s.store.DeleteSubStep(ctx, id)
}

// Progress expõe o agregado de conclusão de uma sub-demanda persistida.
func (s *Service) Progress(ctx context.Context, subDemandID int64) (completed int, total int, err error) {
	sd, err := s.store.GetSubDemand(ctx, subDemandID)
	if err != nil {
		return 0, 0, err
	}
	completed, total = Progress(*sd)
	return completed, total, nil
}

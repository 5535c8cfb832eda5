package partner

import (
	"context"
	"strings"

	"github.com/i9parcerias/demandas/internal/apperr"
)

// Store define o acesso à persistência exigido pelo serviço.
type Store interface {
	CreatePartner(ctx context.Context, input CreatePartnerInput) (*Partner, error)
	GetPartner(ctx context.Context, id int64) (*Partner, error)
	ListPartners(ctx context.Context) ([]Partner, error)
	CreateCollaborator(ctx context.Context, input CreateCollaboratorInput) (*Collaborator, error)
	GetCollaborator(ctx context.Context, id int64) (*Collaborator, error)
	ListCollaborators(ctx context.Context, partnerID *int64) ([]Collaborator, error)
}

// Service reúne regras de negócio de parceiros e colaboradores.
type Service struct {
	store Store
}

// NewService cria uma nova instância do serviço.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreatePartner cadastra parceiro; o apelido é o único campo obrigatório.
func (s *Service) CreatePartner(ctx context.Context, input CreatePartnerInput) (*Partner, error) {
	input.Nickname = strings.TrimSpace(input.Nickname)
	input.NomeFantasia = strings.TrimSpace(input.NomeFantasia)
	input.RazaoSocial = strings.TrimSpace(input.RazaoSocial)
	input.CNPJ = strings.TrimSpace(input.CNPJ)
	input.SapCliente = strings.TrimSpace(input.SapCliente)
	input.SapFornecedor = strings.TrimSpace(input.SapFornecedor)

	if input.Nickname == "" {
		return nil, apperr.Validation("nickname", "nickname é obrigatório")
	}

	return s.store.CreatePartner(ctx, input)
}

// ListPartners lista parceiros em ordem alfabética com contadores.
func (s *Service) ListPartners(ctx context.Context) ([]Partner, error) {
	return s.store.ListPartners(ctx)
}

// CreateCollaborator cadastra colaborador validando matrícula e telefone.
func (s *Service) CreateCollaborator(ctx context.Context, input CreateCollaboratorInput) (*Collaborator, error) {
	input.Nome = strings.TrimSpace(input.Nome)
	input.Cargo = strings.TrimSpace(input.Cargo)
	input.Matricula = strings.TrimSpace(input.Matricula)
	input.Telefone = NormalizeTelefone(input.Telefone)

	fields := map[string]string{}
	if input.PartnerID <= 0 {
		fields["partnerId"] = "parceiro é obrigatório"
	}
	if input.Nome == "" {
		fields["nome"] = "nome é obrigatório"
	}
	if len(input.Telefone) < 10 {
		fields["telefone"] = "telefone inválido"
	}
	if !IsValidMatricula(input.Matricula) {
		fields["matricula"] = "matrícula deve ter formato T1234567"
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	if _, err := s.store.GetPartner(ctx, input.PartnerID); err != nil {
		return nil, err
	}

	return s.store.CreateCollaborator(ctx, input)
}

// ListCollaborators lista colaboradores, opcionalmente de um parceiro.
func (s *Service) ListCollaborators(ctx context.Context, partnerID *int64) ([]Collaborator, error) {
	return s.store.ListCollaborators(ctx, partnerID)
}

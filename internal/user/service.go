package user

import (
	"context"
	"net/mail"
	"strings"

	"github.com/i9parcerias/demandas/internal/apperr"
	"github.com/i9parcerias/demandas/internal/auth"
)

// Store define o acesso à persistência exigido pelo serviço.
type Store interface {
	Create(ctx context.Context, input CreateInput, senhaHash string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetRole(ctx context.Context, id int64) (string, error)
	ListVisible(ctx context.Context, actor Actor) ([]User, error)
}

// Service reúne regras de negócio para usuários da equipe.
type Service struct {
	store Store
}

// NewService cria uma nova instância do serviço.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create cadastra novo usuário; apenas ADMIN pode criar contas.
func (s *Service) Create(ctx context.Context, actor Actor, input CreateInput) (*User, error) {
	if actor.Role != RoleAdmin {
		return nil, apperr.ErrForbidden
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Role = NormalizeRole(input.Role)

	fields := map[string]string{}
	if input.Name == "" {
		fields["name"] = "nome é obrigatório"
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		fields["email"] = "email inválido"
	}
	if len(input.Password) < 6 {
		fields["password"] = "senha deve ter no mínimo 6 caracteres"
	}
	if !IsValidRole(input.Role) {
		fields["role"] = "papel inválido"
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	hash, err := auth.Hash(input.Password)
	if err != nil {
		return nil, apperr.Dependency("hash de senha", err)
	}

	return s.store.Create(ctx, input, hash)
}

// ListVisible devolve os usuários que o ator pode enxergar (e aos quais pode
// pretender atribuir demandas).
func (s *Service) ListVisible(ctx context.Context, actor Actor) ([]User, error) {
	return s.store.ListVisible(ctx, actor)
}

// Get recupera um usuário pelo id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.store.GetByID(ctx, id)
}

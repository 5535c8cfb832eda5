package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/i9parcerias/demandas/internal/apperr"
	"github.com/i9parcerias/demandas/internal/auth"
	"github.com/i9parcerias/demandas/internal/user"
)

var (
	// ErrInvalidCredentials cobre e-mail inexistente e senha incorreta sem
	// distinguir os casos para o chamador.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
)

// UserDirectory é a fatia de usuários de que a autenticação precisa.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// AuthService emite e rotaciona credenciais da equipe interna.
type AuthService struct {
	users      UserDirectory
	redis      *redis.Client
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria nova instância.
func NewAuthService(users UserDirectory, redisClient *redis.Client, jwtManager *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{users: users, redis: redisClient, jwt: jwtManager, refreshTTL: refreshTTL}
}

// TokenPair agrupa o resultado de login/refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	User         user.User
}

// JWT expõe o gerenciador para o middleware de autenticação.
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Login valida credenciais e emite par de tokens.
func (s *AuthService) Login(ctx context.Context, email, senha string) (*TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, u.SenhaHash)
	if err != nil {
		return nil, apperr.Dependency("verificação de senha", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(ctx, u)
}

// Refresh rotaciona o refresh token: o antigo é invalidado antes do novo par.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	hash := auth.HashRefreshToken(rawRefresh)
	key := auth.RefreshRedisKey(hash)

	stored, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, auth.ErrInvalidRefresh
		}
		return nil, apperr.Dependency("sessão de refresh", err)
	}

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return nil, apperr.Dependency("rotação de refresh", err)
	}

	id, err := strconv.ParseInt(stored, 10, 64)
	if err != nil {
		return nil, auth.ErrInvalidRefresh
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, auth.ErrInvalidRefresh
		}
		return nil, err
	}

	return s.issuePair(ctx, u)
}

// Logout invalida o refresh token informado.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	key := auth.RefreshRedisKey(auth.HashRefreshToken(rawRefresh))
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return apperr.Dependency("logout", err)
	}
	return nil
}

// Me devolve o usuário autenticado.
func (s *AuthService) Me(ctx context.Context, id int64) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) issuePair(ctx context.Context, u *user.User) (*TokenPair, error) {
	access, _, err := s.jwt.GenerateAccessToken(strconv.FormatInt(u.ID, 10), u.Role)
	if err != nil {
		return nil, apperr.Dependency("emissão de access token", err)
	}

	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, apperr.Dependency("emissão de refresh token", err)
	}

	key := auth.RefreshRedisKey(hash)
	value := fmt.Sprintf("%d", u.ID)
	if err := s.redis.Set(ctx, key, value, s.refreshTTL).Err(); err != nil {
		return nil, apperr.Dependency("persistência de refresh", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: raw, User: *u}, nil
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/i9parcerias/demandas/internal/auth"
	"github.com/i9parcerias/demandas/internal/service"
)

type loginPayload struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type refreshPayload struct {
	RefreshToken string `json:"refreshToken"`
}

// Login autentica por e-mail/senha e devolve par de tokens.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	email := strings.TrimSpace(strings.ToLower(payload.Email))
	if email == "" || payload.Senha == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "email e senha são obrigatórios", nil)
		return
	}

	pair, err := h.auth.Login(r.Context(), email, payload.Senha)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "credenciais inválidas", nil)
			return
		}
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"user":         pair.User,
	})
}

// Refresh rotaciona o refresh token e emite novo par.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload refreshPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	if strings.TrimSpace(payload.RefreshToken) == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "refreshToken é obrigatório", nil)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefresh) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "sessão expirada", nil)
			return
		}
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"user":         pair.User,
	})
}

// Logout revoga o refresh token informado.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var payload refreshPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if strings.TrimSpace(payload.RefreshToken) != "" {
		if err := h.auth.Logout(r.Context(), payload.RefreshToken); err != nil {
			WriteServiceError(w, err)
			return
		}
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Me devolve o perfil do usuário autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	u, err := h.auth.Me(r.Context(), actor.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": u})
}

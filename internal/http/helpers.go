package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/i9parcerias/demandas/internal/http/middleware"
	"github.com/i9parcerias/demandas/internal/user"
)

// actorFrom resolve o usuário autenticado injetado pelo middleware.
func actorFrom(r *http.Request) (user.Actor, bool) {
	return middleware.GetActor(r.Context())
}

// pathID extrai o parâmetro {id} numérico da rota.
func pathID(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseDate aceita RFC3339 completo ou data simples (AAAA-MM-DD).
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", value)
}

func writeUnauthenticated(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "AUTH", "credenciais ausentes ou inválidas", nil)
}

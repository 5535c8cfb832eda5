package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/i9parcerias/demandas/internal/apperr"
)

// SuccessEnvelope padroniza respostas com dados.
type SuccessEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// ErrorEnvelope padroniza respostas de erro.
type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{Data: data, Error: nil})
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:  nil,
		Error: &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// WriteServiceError mapeia a taxonomia de erros do núcleo para HTTP.
// "Não existe" e "existe mas você não pode tocar" nunca se confundem para
// chamadores autenticados; falhas de dependência não vazam detalhes internos.
func WriteServiceError(w http.ResponseWriter, err error) {
	if v, ok := apperr.AsValidation(err); ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "dados inválidos", v.Fields)
		return
	}

	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "AUTH", "não autenticado", nil)
	case errors.Is(err, apperr.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
	case errors.Is(err, apperr.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado", nil)
	case errors.Is(err, apperr.ErrConflict):
		WriteError(w, http.StatusConflict, "CONFLICT", "registro duplicado", nil)
	default:
		log.Error().Err(err).Msg("falha de dependência")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

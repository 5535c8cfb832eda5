package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated indica ausência de ator autenticado.
	ErrUnauthenticated = errors.New("não autenticado")
	// ErrForbidden indica ator autenticado sem permissão para a operação.
	ErrForbidden = errors.New("acesso negado")
	// ErrNotFound indica registro inexistente.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrConflict indica violação de unicidade (ex.: e-mail duplicado).
	ErrConflict = errors.New("registro duplicado")
)

// ValidationError agrega mensagens por campo para correção pelo chamador.
type ValidationError struct {
	Fields map[string]string
}

// Error devolve resumo legível das falhas de validação.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "dados inválidos"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "dados inválidos: " + strings.Join(parts, "; ")
}

// Validation cria erro de validação para um único campo.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// AsValidation extrai ValidationError da cadeia, se presente.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Dependency envolve falha de colaborador externo (banco, storage) sem vazar detalhes.
func Dependency(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

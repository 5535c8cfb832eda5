package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/i9parcerias/demandas/internal/task"
)

type createSubDemandPayload struct {
	DemandID  int64   `json:"demandId"`
	Titulo    string  `json:"titulo"`
	Descricao string  `json:"descricao"`
	Prazo     *string `json:"prazo"`
	Evidence  string  `json:"evidence"`
}

type updateSubDemandPayload struct {
	Titulo    *string `json:"titulo"`
	Descricao *string `json:"descricao"`
	Prazo     *string `json:"prazo"`
	Evidence  *string `json:"evidence"`
}

type createSubStepPayload struct {
	SubDemandID int64   `json:"subDemandId"`
	Nome        string  `json:"nome"`
	Prazo       *string `json:"prazo"`
}

type updateSubStepPayload struct {
	Nome   *string `json:"nome"`
	Status *string `json:"status"`
}

// ListSubDemands devolve sub-demandas de uma demanda, com sub-etapas.
func (h *Handler) ListSubDemands(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("demandId"))
	demandID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || demandID <= 0 {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "demandId inválido", nil)
		return
	}

	subs, err := h.tasks.ListByDemand(r.Context(), demandID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"subDemands": subs})
}

// CreateSubDemand anexa sub-demanda a uma demanda existente.
func (h *Handler) CreateSubDemand(w http.ResponseWriter, r *http.Request) {
	var payload createSubDemandPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	prazo, err := parseOptionalDate(payload.Prazo, "prazo")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	created, err := h.tasks.CreateSubDemand(r.Context(), task.CreateSubDemandInput{
		DemandID:  payload.DemandID,
		Titulo:    payload.Titulo,
		Descricao: payload.Descricao,
		Prazo:     prazo,
		Evidence:  payload.Evidence,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"subDemand": created})
}

// UpdateSubDemand atualiza campos da sub-demanda; campos ausentes são
// preservados.
func (h *Handler) UpdateSubDemand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload updateSubDemandPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	prazo, err := parseOptionalDate(payload.Prazo, "prazo")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	updated, err := h.tasks.UpdateSubDemand(r.Context(), task.UpdateSubDemandInput{
		ID:        id,
		Titulo:    payload.Titulo,
		Descricao: payload.Descricao,
		Prazo:     prazo,
		Evidence:  payload.Evidence,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"subDemand": updated})
}

// SubDemandProgress devolve o agregado de conclusão da sub-demanda.
func (h *Handler) SubDemandProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	completed, total, err := h.tasks.Progress(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"completed": completed, "total": total})
}

// CreateSubStep anexa sub-etapa pendente a uma sub-demanda.
func (h *Handler) CreateSubStep(w http.ResponseWriter, r *http.Request) {
	var payload createSubStepPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if payload.SubDemandID <= 0 {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "subDemandId é obrigatório", nil)
		return
	}

	prazo, err := parseOptionalDate(payload.Prazo, "prazo")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	created, err := h.tasks.CreateSubStep(r.Context(), payload.SubDemandID, payload.Nome, prazo)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"subStep": created})
}

// UpdateSubStep renomeia e/ou define o status da sub-etapa.
func (h *Handler) UpdateSubStep(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload updateSubStepPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	updated, err := h.tasks.UpdateSubStep(r.Context(), id, payload.Nome, payload.Status)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"subStep": updated})
}

// ToggleSubStep alterna a sub-etapa entre pendente e concluída.
func (h *Handler) ToggleSubStep(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	toggled, err := h.tasks.ToggleSubStep(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"subStep": toggled})
}

// DeleteSubStep remove a sub-etapa.
func (h *Handler) DeleteSubStep(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.tasks.DeleteSubStep(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

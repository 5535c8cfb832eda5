package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/i9parcerias/demandas/internal/demand"
	"github.com/i9parcerias/demandas/internal/export"
)

type demandPayload struct {
	PartnerID      int64              `json:"partnerId"`
	CollaboratorID *int64             `json:"collaboratorId"`
	AssigneeID     int64              `json:"assigneeId"`
	Tipo           string             `json:"tipo"`
	Urgencia       string             `json:"urgencia"`
	Prazo          *string            `json:"prazo"`
	Descricao      string             `json:"descricao"`
	Status         string             `json:"status"`
	EvidenceOpen   string             `json:"evidenceOpen"`
	SubDemands     []subDemandPayload `json:"subDemands"`
}

type subDemandPayload struct {
	Titulo    string           `json:"titulo"`
	Descricao string           `json:"descricao"`
	Prazo     *string          `json:"prazo"`
	Evidence  string           `json:"evidence"`
	SubSteps  []subStepPayload `json:"subSteps"`
}

type subStepPayload struct {
	Nome  string  `json:"nome"`
	Prazo *string `json:"prazo"`
}

type finishPayload struct {
	EvidenceFinish string `json:"evidenceFinish"`
}

// demandFilterFromQuery monta o filtro compartilhado entre listagem e
// exportação a partir da query string.
func demandFilterFromQuery(r *http.Request) (demand.Filter, error) {
	var filter demand.Filter
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("partnerId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, fmt.Errorf("partnerId inválido")
		}
		filter.PartnerID = &id
	}

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		filter.Status = &raw
	}

	if raw := strings.TrimSpace(query.Get("startDate")); raw != "" {
		ts, err := parseDate(raw)
		if err != nil {
			return filter, fmt.Errorf("startDate inválida")
		}
		filter.CriadaDesde = &ts
	}

	if raw := strings.TrimSpace(query.Get("endDate")); raw != "" {
		ts, err := parseDate(raw)
		if err != nil {
			return filter, fmt.Errorf("endDate inválida")
		}
		// Data simples vira fim do dia para a faixa ser inclusiva.
		if ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 {
			ts = ts.Add(24*time.Hour - time.Nanosecond)
		}
		filter.CriadaAte = &ts
	}

	return filter, nil
}

func parseOptionalDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	ts, err := parseDate(*raw)
	if err != nil {
		return nil, fmt.Errorf("%s inválido", field)
	}
	return &ts, nil
}

// ListDemands devolve demandas filtradas, com hierarquia embutida.
func (h *Handler) ListDemands(w http.ResponseWriter, r *http.Request) {
	filter, err := demandFilterFromQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	demands, err := h.demands.List(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"demands": demands})
}

// GetDemand devolve uma demanda específica com sub-demandas e sub-etapas.
func (h *Handler) GetDemand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	d, err := h.demands.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"demand": d})
}

// CreateDemand abre demanda com hierarquia aninhada opcional em uma única
// operação atômica.
func (h *Handler) CreateDemand(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var payload demandPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	input, err := payload.toCreateInput()
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	created, err := h.demands.Create(r.Context(), actor, *input)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"demand": created})
}

func (p demandPayload) toCreateInput() (*demand.CreateInput, error) {
	prazo, err := parseOptionalDate(p.Prazo, "prazo")
	if err != nil {
		return nil, err
	}

	input := demand.CreateInput{
		PartnerID:      p.PartnerID,
		CollaboratorID: p.CollaboratorID,
		AssigneeID:     p.AssigneeID,
		Tipo:           p.Tipo,
		Urgencia:       p.Urgencia,
		Prazo:          prazo,
		Descricao:      p.Descricao,
		EvidenceOpen:   p.EvidenceOpen,
	}

	for i, sd := range p.SubDemands {
		sdPrazo, err := parseOptionalDate(sd.Prazo, fmt.Sprintf("subDemands[%d].prazo", i))
		if err != nil {
			return nil, err
		}
		sub := demand.SubDemandInput{
			Titulo:    sd.Titulo,
			Descricao: sd.Descricao,
			Prazo:     sdPrazo,
			Evidence:  sd.Evidence,
		}
		for j, ss := range sd.SubSteps {
			ssPrazo, err := parseOptionalDate(ss.Prazo, fmt.Sprintf("subDemands[%d].subSteps[%d].prazo", i, j))
			if err != nil {
				return nil, err
			}
			sub.SubSteps = append(sub.SubSteps, demand.SubStepInput{Nome: ss.Nome, Prazo: ssPrazo})
		}
		input.SubDemands = append(input.SubDemands, sub)
	}

	return &input, nil
}

// UpdateDemand aplica edição completa sujeita às regras de permissão e de
// transferência de responsável.
func (h *Handler) UpdateDemand(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	id, ok := pathID(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload demandPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	prazo, err := parseOptionalDate(payload.Prazo, "prazo")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	updated, err := h.demands.Update(r.Context(), actor, id, demand.UpdateInput{
		PartnerID:      payload.PartnerID,
		CollaboratorID: payload.CollaboratorID,
		AssigneeID:     payload.AssigneeID,
		Tipo:           payload.Tipo,
		Urgencia:       payload.Urgencia,
		Prazo:          prazo,
		Descricao:      payload.Descricao,
		Status:         payload.Status,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"demand": updated})
}

// FinishDemand conclui a demanda, opcionalmente anexando evidência de
// encerramento.
func (h *Handler) FinishDemand(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	id, ok := pathID(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload finishPayload
	if r.Body != nil {
		// Corpo vazio é aceito; evidência é opcional.
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	finished, err := h.demands.Finish(r.Context(), actor, id, payload.EvidenceFinish)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"demand": finished})
}

// DeleteDemand remove a demanda e toda a hierarquia (somente administradores).
func (h *Handler) DeleteDemand(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	id, ok := pathID(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.demands.Delete(r.Context(), actor, id); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Notifications devolve o feed de prazos (atrasadas e próximas do prazo).
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	feed, err := h.demands.DeadlineFeed(r.Context(), time.Now())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, feed)
}

// ExportDemands gera planilha .xlsx com o mesmo filtro da listagem.
func (h *Handler) ExportDemands(w http.ResponseWriter, r *http.Request) {
	filter, err := demandFilterFromQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	demands, err := h.demands.List(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	content, err := export.WriteXLSX(export.FromDemands(demands))
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

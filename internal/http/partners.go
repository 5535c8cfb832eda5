package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/i9parcerias/demandas/internal/partner"
)

type partnerPayload struct {
	Nickname      string `json:"nickname"`
	NomeFantasia  string `json:"nomeFantasia"`
	RazaoSocial   string `json:"razaoSocial"`
	CNPJ          string `json:"cnpj"`
	SapCliente    string `json:"sapCliente"`
	SapFornecedor string `json:"sapFornecedor"`
}

type collaboratorPayload struct {
	PartnerID int64  `json:"partnerId"`
	Nome      string `json:"nome"`
	Cargo     string `json:"cargo"`
	Telefone  string `json:"telefone"`
	Matricula string `json:"matricula"`
}

// ListPartners devolve os parceiros com contadores de demandas e colaboradores.
func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.partners.ListPartners(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"partners": partners})
}

// CreatePartner cadastra novo parceiro de negócio.
func (h *Handler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var payload partnerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	created, err := h.partners.CreatePartner(r.Context(), partner.CreatePartnerInput{
		Nickname:      payload.Nickname,
		NomeFantasia:  payload.NomeFantasia,
		RazaoSocial:   payload.RazaoSocial,
		CNPJ:          payload.CNPJ,
		SapCliente:    payload.SapCliente,
		SapFornecedor: payload.SapFornecedor,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"partner": created})
}

// ListCollaborators devolve colaboradores, opcionalmente filtrados por parceiro.
func (h *Handler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	var partnerID *int64
	if raw := strings.TrimSpace(r.URL.Query().Get("partnerId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "partnerId inválido", nil)
			return
		}
		partnerID = &id
	}

	collaborators, err := h.partners.ListCollaborators(r.Context(), partnerID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"collaborators": collaborators})
}

// CreateCollaborator cadastra contato vinculado a um parceiro.
func (h *Handler) CreateCollaborator(w http.ResponseWriter, r *http.Request) {
	var payload collaboratorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	created, err := h.partners.CreateCollaborator(r.Context(), partner.CreateCollaboratorInput{
		PartnerID: payload.PartnerID,
		Nome:      payload.Nome,
		Cargo:     payload.Cargo,
		Telefone:  payload.Telefone,
		Matricula: payload.Matricula,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"collaborator": created})
}

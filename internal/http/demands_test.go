package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/i9parcerias/demandas/internal/apperr"
	"github.com/i9parcerias/demandas/internal/demand"
	"github.com/i9parcerias/demandas/internal/export"
	"github.com/i9parcerias/demandas/internal/http/middleware"
	"github.com/i9parcerias/demandas/internal/partner"
	"github.com/i9parcerias/demandas/internal/user"
)

type stubDemandStore struct {
	demands map[int64]*demand.Demand
	deleted []int64
}

func newStubDemandStore(demands ...*demand.Demand) *stubDemandStore {
	s := &stubDemandStore{demands: map[int64]*demand.Demand{}}
	for _, d := range demands {
		s.demands[d.ID] = d
	}
	return s
}

func (s *stubDemandStore) Create(ctx context.Context, input demand.CreateInput, creatorID int64) (*demand.Demand, error) {
	d := &demand.Demand{
		ID:         int64(len(s.demands) + 1),
		PartnerID:  input.PartnerID,
		AssigneeID: input.AssigneeID,
		Tipo:       input.Tipo,
		Urgencia:   input.Urgencia,
		Status:     demand.StatusAberta,
	}
	s.demands[d.ID] = d
	return d, nil
}

func (s *stubDemandStore) Get(ctx context.Context, id int64) (*demand.Demand, error) {
	d, ok := s.demands[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (s *stubDemandStore) Update(ctx context.Context, rec demand.UpdateRecord) (*demand.Demand, error) {
	d, ok := s.demands[rec.ID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	updated := *d
	updated.Status = rec.Status
	updated.Descricao = rec.Descricao
	s.demands[rec.ID] = &updated
	return &updated, nil
}

func (s *stubDemandStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.demands[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.demands, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubDemandStore) List(ctx context.Context, filter demand.Filter) ([]demand.Demand, error) {
	out := []demand.Demand{}
	for _, d := range s.demands {
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		if filter.PartnerID != nil && d.PartnerID != *filter.PartnerID {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *stubDemandStore) ListOpenWithPrazo(ctx context.Context) ([]demand.Demand, error) {
	var out []demand.Demand
	for _, d := range s.demands {
		if !demand.IsTerminal(d.Status) && d.Prazo != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

type stubRoleDir map[int64]string

func (s stubRoleDir) GetRole(ctx context.Context, id int64) (string, error) {
	role, ok := s[id]
	if !ok {
		return "", apperr.ErrNotFound
	}
	return role, nil
}

type stubCollabDir map[int64]*partner.Collaborator

func (s stubCollabDir) GetCollaborator(ctx context.Context, id int64) (*partner.Collaborator, error) {
	c, ok := s[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

func newDemandTestHandler(store *stubDemandStore, roles stubRoleDir) *Handler {
	demandService := demand.NewService(store, roles, stubCollabDir{})
	return NewHandler(nil, nil, nil, nil, demandService, nil, nil)
}

func demandRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/demands", h.ListDemands)
	r.Post("/demands", h.CreateDemand)
	r.Put("/demands/{id}", h.UpdateDemand)
	r.Delete("/demands/{id}", h.DeleteDemand)
	r.Get("/notifications", h.Notifications)
	r.Post("/export", h.ExportDemands)
	return r
}

func asActor(r *http.Request, id int64, role string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeySubject, strconv.FormatInt(id, 10))
	ctx = context.WithValue(ctx, middleware.ContextKeyRole, role)
	return r.WithContext(ctx)
}

func TestListDemandsStatusAll(t *testing.T) {
	store := newStubDemandStore(
		&demand.Demand{ID: 1, PartnerID: 10, AssigneeID: 1, Status: demand.StatusAberta},
		&demand.Demand{ID: 2, PartnerID: 10, AssigneeID: 1, Status: demand.StatusConcluida},
	)
	router := demandRouter(newDemandTestHandler(store, stubRoleDir{}))

	req := httptest.NewRequest(http.MethodGet, "/demands?status=all", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, corpo %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Demands []demand.Demand `json:"demands"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("resposta ilegível: %v", err)
	}
	if len(envelope.Data.Demands) != 2 {
		t.Fatalf("demandas = %d, esperado 2", len(envelope.Data.Demands))
	}
}

func TestListDemandsInvalidStatusIsValidationError(t *testing.T) {
	router := demandRouter(newDemandTestHandler(newStubDemandStore(), stubRoleDir{}))

	req := httptest.NewRequest(http.MethodGet, "/demands?status=FECHADA", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, esperado 400", rec.Code)
	}
}

func TestCreateDemandRequiresActor(t *testing.T) {
	router := demandRouter(newDemandTestHandler(newStubDemandStore(), stubRoleDir{}))

	body := bytes.NewBufferString(`{"partnerId":10,"assigneeId":1,"tipo":"Auditoria"}`)
	req := httptest.NewRequest(http.MethodPost, "/demands", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, esperado 401", rec.Code)
	}
}

func TestUpdateDemandForbiddenForOutsider(t *testing.T) {
	store := newStubDemandStore(&demand.Demand{
		ID: 5, PartnerID: 10, AssigneeID: 4, AssigneeRole: user.RoleSupervisor,
		Tipo: "Auditoria", Urgencia: demand.UrgenciaMedia, Status: demand.StatusAberta,
	})
	router := demandRouter(newDemandTestHandler(store, stubRoleDir{4: user.RoleSupervisor}))

	body := bytes.NewBufferString(`{"partnerId":10,"assigneeId":4,"tipo":"Auditoria"}`)
	req := asActor(httptest.NewRequest(http.MethodPut, "/demands/5", body), 3, user.RoleBackoffice)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, esperado 403 (corpo %s)", rec.Code, rec.Body.String())
	}
}

func TestDeleteDemandOnlyAdmin(t *testing.T) {
	store := newStubDemandStore(&demand.Demand{ID: 5, PartnerID: 10, AssigneeID: 1, Status: demand.StatusAberta})
	router := demandRouter(newDemandTestHandler(store, stubRoleDir{}))

	req := asActor(httptest.NewRequest(http.MethodDelete, "/demands/5", nil), 2, user.RoleSupervisor)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, esperado 403", rec.Code)
	}

	req = asActor(httptest.NewRequest(http.MethodDelete, "/demands/5", nil), 1, user.RoleAdmin)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, esperado 200", rec.Code)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("exclusões = %v", store.deleted)
	}
}

func TestNotificationsSplitsFeed(t *testing.T) {
	now := time.Now()
	late := now.Add(-2 * time.Hour)
	soon := now.Add(time.Hour)
	store := newStubDemandStore(
		&demand.Demand{ID: 1, PartnerID: 10, AssigneeID: 1, Status: demand.StatusAberta, Prazo: &late},
		&demand.Demand{ID: 2, PartnerID: 10, AssigneeID: 1, Status: demand.StatusEmAndamento, Prazo: &soon},
	)
	router := demandRouter(newDemandTestHandler(store, stubRoleDir{}))

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var envelope struct {
		Data demand.Feed `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("resposta ilegível: %v", err)
	}
	if len(envelope.Data.Delayed) != 1 || envelope.Data.Delayed[0].ID != 1 {
		t.Fatalf("atrasadas inesperadas: %+v", envelope.Data.Delayed)
	}
	if len(envelope.Data.Upcoming) != 1 || envelope.Data.Upcoming[0].ID != 2 {
		t.Fatalf("próximas inesperadas: %+v", envelope.Data.Upcoming)
	}
}

func TestExportDemandsReturnsAttachment(t *testing.T) {
	store := newStubDemandStore(&demand.Demand{
		ID: 1, PartnerID: 10, AssigneeID: 1, Status: demand.StatusAberta,
		Tipo: "Auditoria", Urgencia: demand.UrgenciaMedia, PartnerNickname: "ACME",
	})
	router := demandRouter(newDemandTestHandler(store, stubRoleDir{}))

	req := httptest.NewRequest(http.MethodPost, "/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="`+export.Filename+`"` {
		t.Fatalf("Content-Disposition = %q", got)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("planilha vazia")
	}
}

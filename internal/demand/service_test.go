package demand

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i9parcerias/demandas/internal/apperr"
	"github.com/i9parcerias/demandas/internal/partner"
	"github.com/i9parcerias/demandas/internal/user"
)

type stubStore struct {
	demands    map[int64]*Demand
	lastUpdate *UpdateRecord
	deleted    []int64
	open       []Demand
}

func newStubStore(demands ...*Demand) *stubStore {
	s := &stubStore{demands: map[int64]*Demand{}}
	for _, d := range demands {
		s.demands[d.ID] = d
	}
	return s
}

func (s *stubStore) Create(ctx context.Context, input CreateInput, creatorID int64) (*Demand, error) {
	d := &Demand{
		ID:         int64(len(s.demands) + 1),
		PartnerID:  input.PartnerID,
		AssigneeID: input.AssigneeID,
		Tipo:       input.Tipo,
		Urgencia:   input.Urgencia,
		Status:     StatusAberta,
		CreatorID:  &creatorID,
	}
	s.demands[d.ID] = d
	return d, nil
}

func (s *stubStore) Get(ctx context.Context, id int64) (*Demand, error) {
	d, ok := s.demands[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

func (s *stubStore) Update(ctx context.Context, rec UpdateRecord) (*Demand, error) {
	d, ok := s.demands[rec.ID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	s.lastUpdate = &rec
	updated := *d
	updated.PartnerID = rec.PartnerID
	updated.CollaboratorID = rec.CollaboratorID
	updated.AssigneeID = rec.AssigneeID
	updated.EditorID = &rec.EditorID
	updated.Tipo = rec.Tipo
	updated.Urgencia = rec.Urgencia
	updated.Prazo = rec.Prazo
	updated.Descricao = rec.Descricao
	updated.Status = rec.Status
	if rec.EvidenceFinish != nil {
		updated.EvidenceFinish = *rec.EvidenceFinish
	}
	s.demands[rec.ID] = &updated
	return &updated, nil
}

func (s *stubStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.demands[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.demands, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubStore) List(ctx context.Context, filter Filter) ([]Demand, error) {
	var out []Demand
	for _, d := range s.demands {
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *stubStore) ListOpenWithPrazo(ctx context.Context) ([]Demand, error) {
	return s.open, nil
}

type stubRoles struct {
	roles map[int64]string
}

func (s stubRoles) GetRole(ctx context.Context, id int64) (string, error) {
	role, ok := s.roles[id]
	if !ok {
		return "", apperr.ErrNotFound
	}
	return role, nil
}

type stubCollaborators struct {
	collabs map[int64]*partner.Collaborator
}

func (s stubCollaborators) GetCollaborator(ctx context.Context, id int64) (*partner.Collaborator, error) {
	c, ok := s.collabs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

func newTestService(store *stubStore, roles map[int64]string, collabs map[int64]*partner.Collaborator) *Service {
	return NewService(store, stubRoles{roles: roles}, stubCollaborators{collabs: collabs})
}

func baseUpdate(d *Demand) UpdateInput {
	return UpdateInput{
		PartnerID:  d.PartnerID,
		AssigneeID: d.AssigneeID,
		Tipo:       d.Tipo,
		Urgencia:   d.Urgencia,
		Descricao:  d.Descricao,
	}
}

func TestCreateRequiresFields(t *testing.T) {
	svc := newTestService(newStubStore(), nil, nil)
	actor := user.Actor{ID: 1, Role: user.RoleAdmin}

	_, err := svc.Create(context.Background(), actor, CreateInput{})

	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("esperado erro de validação, veio %v", err)
	}
	for _, field := range []string{"partnerId", "assigneeId", "tipo"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("campo %s ausente nos erros: %v", field, verr.Fields)
		}
	}
}

func TestCreateDefaultsUrgencia(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil, nil)
	actor := user.Actor{ID: 1, Role: user.RoleAdmin}

	created, err := svc.Create(context.Background(), actor, CreateInput{
		PartnerID:  10,
		AssigneeID: 1,
		Tipo:       "Auditoria",
	})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if created.Urgencia != UrgenciaMedia {
		t.Fatalf("urgência = %s, esperado %s", created.Urgencia, UrgenciaMedia)
	}
	if created.Status != StatusAberta {
		t.Fatalf("status = %s, esperado %s", created.Status, StatusAberta)
	}
}

func TestCreateRejectsCollaboratorFromOtherPartner(t *testing.T) {
	collabID := int64(7)
	svc := newTestService(newStubStore(), nil, map[int64]*partner.Collaborator{
		collabID: {ID: collabID, PartnerID: 99},
	})
	actor := user.Actor{ID: 1, Role: user.RoleAdmin}

	_, err := svc.Create(context.Background(), actor, CreateInput{
		PartnerID:      10,
		CollaboratorID: &collabID,
		AssigneeID:     1,
		Tipo:           "Auditoria",
	})

	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("esperado erro de validação, veio %v", err)
	}
	if _, ok := verr.Fields["collaboratorId"]; !ok {
		t.Fatalf("esperado erro em collaboratorId: %v", verr.Fields)
	}
}

func TestCreateSupervisorCannotAssignPeer(t *testing.T) {
	svc := newTestService(newStubStore(), map[int64]string{
		4: user.RoleSupervisor,
	}, nil)
	actor := user.Actor{ID: 2, Role: user.RoleSupervisor}

	_, err := svc.Create(context.Background(), actor, CreateInput{
		PartnerID:  10,
		AssigneeID: 4,
		Tipo:       "Auditoria",
	})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("esperado ErrForbidden, veio %v", err)
	}
}

func TestUpdateSupervisorEditsBackofficeDemand(t *testing.T) {
	existing := &Demand{
		ID: 5, PartnerID: 10, AssigneeID: 3, AssigneeRole: user.RoleBackoffice,
		Tipo: "Auditoria", Urgencia: UrgenciaMedia, Status: StatusAberta,
	}
	store := newStubStore(existing)
	svc := newTestService(store, map[int64]string{3: user.RoleBackoffice}, nil)
	actor := user.Actor{ID: 2, Role: user.RoleSupervisor}

	input := baseUpdate(existing)
	input.Descricao = "ajustada"

	updated, err := svc.Update(context.Background(), actor, 5, input)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if updated.Descricao != "ajustada" {
		t.Fatalf("descrição = %q, esperado %q", updated.Descricao, "ajustada")
	}
	if store.lastUpdate.EditorID != actor.ID {
		t.Fatalf("editor = %d, esperado %d", store.lastUpdate.EditorID, actor.ID)
	}
}

func TestUpdateReassignToPeerRejectsWholeEdit(t *testing.T) {
	existing := &Demand{
		ID: 5, PartnerID: 10, AssigneeID: 3, AssigneeRole: user.RoleBackoffice,
		Tipo: "Auditoria", Urgencia: UrgenciaMedia, Status: StatusAberta,
	}
	store := newStubStore(existing)
	svc := newTestService(store, map[int64]string{
		3: user.RoleBackoffice,
		4: user.RoleSupervisor,
	}, nil)
	actor := user.Actor{ID: 2, Role: user.RoleSupervisor}

	input := baseUpdate(existing)
	input.AssigneeID = 4
	input.Descricao = "não deve persistir"

	_, err := svc.Update(context.Background(), actor, 5, input)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("esperado ErrForbidden, veio %v", err)
	}
	if store.lastUpdate != nil {
		t.Fatal("nenhuma escrita deveria ter ocorrido")
	}
}

func TestUpdateSameAssigneeSkipsTransferCheck(t *testing.T) {
	// O responsável 9 não existe no diretório: se a regra de transferência
	// fosse avaliada, falharia. Responsável inalterado não a aciona.
	existing := &Demand{
		ID: 5, PartnerID: 10, AssigneeID: 9, AssigneeRole: user.RoleSupervisor,
		Tipo: "Auditoria", Urgencia: UrgenciaMedia, Status: StatusAberta,
	}
	store := newStubStore(existing)
	svc := newTestService(store, map[int64]string{}, nil)
	actor := user.Actor{ID: 1, Role: user.RoleAdmin}

	if _, err := svc.Update(context.Background(), actor, 5, baseUpdate(existing)); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
}

func TestUpdateUnresolvableTargetFailsClosed(t *testing.T) {
	existing := &Demand{
		ID: 5, PartnerID: 10, AssigneeID: 2, AssigneeRole: user.RoleSupervisor,
		Tipo: "Auditoria", Urgencia: UrgenciaMedia, Status: StatusAberta,
	}
	store := newStubStore(existing)
	svc := newTestService(store, map[int64]string{}, nil)
	actor := user.Actor{ID: 2, Role: user.RoleSupervisor}

	input := baseUpdate(existing)
	input.AssigneeID = 777

	_, err := svc.Update(context.Background(), actor, 5, input)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("esperado ErrForbidden, veio %v", err)
	}
}

func TestUpdateEmptyStatusPreservesExisting(t *testing.T) {
	existing := &Demand{
		ID: 5, PartnerID: 10, AssigneeID: 1, AssigneeRole: user.RoleAdmin,
		Tipo: "Auditoria", Urgencia: UrgenciaMedia, Status: StatusEmAndamento,
	}
	store := newStubStore(existing)
	svc := newTestService(store, nil, nil)
	actor := user.Actor{ID: 1, Role: user.RoleAdmin}

	updated, err := svc.Update(context.Background(), actor, 5, baseUpdate(existing))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if updated.Status != StatusEmAndamento {
		t.Fatalf("status = %s, esperado %s", updated.Status, StatusEmAndamento)
	}
}

func TestUpdateTerminalCannotReopen(t *testing.T) {
	existing := &Demand{
		ID: 5, PartnerID: 10, AssigneeID: 1, AssigneeRole: user.RoleAdmin,
		Tipo: "Auditoria", Urgencia: UrgenciaMedia, Status: StatusConcluida,
	}
	store := newStubStore(existing)
	svc := newTestService(store, nil, nil)
	actor := user.Actor{ID: 1, Role: user.RoleAdmin}

	input := baseUpdate(existing)
	input.Status = StatusAberta

	_, err := svc.Update(context.Background(), actor, 5, input)
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("esperado erro de validação, veio %v", err)
	}
	if _, ok := verr.Fields["status"]; !ok {
		t.Fatalf("esperado erro em status: %v", verr.Fields)
	}
}

func TestFinishPreservesFieldsAndSetsEvidence(t *testing.T) {
	prazo := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	collabID := int64(7)
	existing := &Demand{
		ID: 5, PartnerID: 10, CollaboratorID: &collabID, AssigneeID: 3,
		AssigneeRole: user.RoleBackoffice, Tipo: "Auditoria",
		Urgencia: UrgenciaAlta, Prazo: &prazo, Descricao: "verificar lote",
		Status: StatusEmAndamento,
	}
	store := newStubStore(existing)
	svc := newTestService(store, nil, nil)
	actor := user.Actor{ID: 3, Role: user.RoleBackoffice}

	finished, err := svc.Finish(context.Background(), actor, 5, "https://files/evidencia.pdf")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if finished.Status != StatusConcluida {
		t.Fatalf("status = %s, esperado %s", finished.Status, StatusConcluida)
	}
	if finished.Tipo != "Auditoria" || finished.Urgencia != UrgenciaAlta || finished.Descricao != "verificar lote" {
		t.Fatal("campos da demanda deveriam ser preservados na conclusão")
	}
	if finished.EvidenceFinish != "https://files/evidencia.pdf" {
		t.Fatalf("evidência = %q", finished.EvidenceFinish)
	}
}

func TestFinishRequiresEditPermission(t *testing.T) {
	existing := &Demand{
		ID: 5, PartnerID: 10, AssigneeID: 4, AssigneeRole: user.RoleSupervisor,
		Tipo: "Auditoria", Urgencia: UrgenciaMedia, Status: StatusAberta,
	}
	svc := newTestService(newStubStore(existing), nil, nil)
	actor := user.Actor{ID: 3, Role: user.RoleBackoffice}

	_, err := svc.Finish(context.Background(), actor, 5, "")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("esperado ErrForbidden, veio %v", err)
	}
}

func TestDeleteOnlyAdmin(t *testing.T) {
	existing := &Demand{ID: 5, PartnerID: 10, AssigneeID: 1, Status: StatusAberta}
	store := newStubStore(existing)
	svc := newTestService(store, nil, nil)

	if err := svc.Delete(context.Background(), user.Actor{ID: 2, Role: user.RoleSupervisor}, 5); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("esperado ErrForbidden, veio %v", err)
	}
	if err := svc.Delete(context.Background(), user.Actor{ID: 1, Role: user.RoleAdmin}, 5); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 5 {
		t.Fatalf("exclusões registradas: %v", store.deleted)
	}
}

func TestListAllSentinelDisablesStatusFilter(t *testing.T) {
	open := &Demand{ID: 1, PartnerID: 10, AssigneeID: 1, Status: StatusAberta}
	done := &Demand{ID: 2, PartnerID: 10, AssigneeID: 1, Status: StatusConcluida}
	svc := newTestService(newStubStore(open, done), nil, nil)

	all := "all"
	demands, err := svc.List(context.Background(), Filter{Status: &all})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if len(demands) != 2 {
		t.Fatalf("demandas = %d, esperado 2", len(demands))
	}

	bogus := "FECHADA"
	if _, err := svc.List(context.Background(), Filter{Status: &bogus}); err == nil {
		t.Fatal("status inválido deveria falhar")
	}
}

func TestDeadlineFeedUsesOpenDemands(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	late := now.Add(-time.Hour)
	soon := now.Add(time.Hour)
	store := newStubStore()
	store.open = []Demand{
		{ID: 1, Status: StatusAberta, Prazo: &late},
		{ID: 2, Status: StatusEmAndamento, Prazo: &soon},
	}
	svc := newTestService(store, nil, nil)

	feed, err := svc.DeadlineFeed(context.Background(), now)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if len(feed.Delayed) != 1 || feed.Delayed[0].ID != 1 {
		t.Fatalf("atrasadas inesperadas: %+v", feed.Delayed)
	}
	if len(feed.Upcoming) != 1 || feed.Upcoming[0].ID != 2 {
		t.Fatalf("próximas inesperadas: %+v", feed.Upcoming)
	}
}

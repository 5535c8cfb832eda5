package demand

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i9parcerias/demandas/internal/apperr"
	"github.com/i9parcerias/demandas/internal/db"
	"github.com/i9parcerias/demandas/internal/task"
)

// Repository provê acesso à tabela de demandas e à hierarquia aninhada.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const demandSelect = `
        SELECT d.id, d.partner_id, d.collaborator_id, d.creator_id, d.assignee_id, d.editor_id,
               d.tipo, d.urgencia, d.prazo, d.descricao, d.status, d.evidence_open, d.evidence_finish,
               d.criada_em, d.atualizada_em,
               p.nickname, c.nome, cr.name, a.name, a.role, e.name
        FROM demands d
        JOIN partners p ON p.id = d.partner_id
        JOIN users a ON a.id = d.assignee_id
        LEFT JOIN collaborators c ON c.id = d.collaborator_id
        LEFT JOIN users cr ON cr.id = d.creator_id
        LEFT JOIN users e ON e.id = d.editor_id`

// Create insere a demanda e toda a hierarquia aninhada numa única transação:
// ou tudo é persistido, ou nada é.
func (r *Repository) Create(ctx context.Context, input CreateInput, creatorID int64) (*Demand, error) {
	var demandID int64

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const insertDemand = `
            INSERT INTO demands (partner_id, collaborator_id, creator_id, assignee_id, tipo, urgencia, prazo, descricao, status, evidence_open)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
            RETURNING id
        `

		err := tx.QueryRow(ctx, insertDemand,
			input.PartnerID,
			input.CollaboratorID,
			creatorID,
			input.AssigneeID,
			input.Tipo,
			input.Urgencia,
			input.Prazo,
			input.Descricao,
			StatusAberta,
			input.EvidenceOpen,
		).Scan(&demandID)
		if err != nil {
			return err
		}

		for _, sd := range input.SubDemands {
			const insertSub = `
                INSERT INTO sub_demands (demand_id, titulo, descricao, prazo, evidence)
                VALUES ($1, $2, $3, $4, $5)
                RETURNING id
            `

			var subID int64
			if err := tx.QueryRow(ctx, insertSub, demandID, sd.Titulo, sd.Descricao, sd.Prazo, sd.Evidence).Scan(&subID); err != nil {
				return err
			}

			for _, step := range sd.SubSteps {
				const insertStep = `
                    INSERT INTO sub_steps (sub_demand_id, nome, status, prazo)
                    VALUES ($1, $2, $3, $4)
                `
				if _, err := tx.Exec(ctx, insertStep, subID, step.Nome, task.StepPendente, step.Prazo); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, demandID)
}

// Get busca demanda com junções de exibição e hierarquia completa.
func (r *Repository) Get(ctx context.Context, id int64) (*Demand, error) {
	row := r.pool.QueryRow(ctx, demandSelect+` WHERE d.id = $1`, id)
	d, err := scanDemand(row)
	if err != nil {
		return nil, err
	}

	subs, err := r.loadSubDemands(ctx, []int64{d.ID})
	if err != nil {
		return nil, err
	}
	d.SubDemands = subs[d.ID]
	if d.SubDemands == nil {
		d.SubDemands = []task.SubDemand{}
	}
	return d, nil
}

// List devolve demandas aplicando filtros com semântica AND, mais recentes
// primeiro, com hierarquia aninhada.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Demand, error) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.PartnerID != nil {
		clauses = append(clauses, fmt.Sprintf("d.partner_id = $%d", idx))
		args = append(args, *filter.PartnerID)
		idx++
	}
	if filter.Status != nil {
		clauses = append(clauses, fmt.Sprintf("d.status = $%d", idx))
		args = append(args, *filter.Status)
		idx++
	}
	if filter.CriadaDesde != nil {
		clauses = append(clauses, fmt.Sprintf("d.criada_em >= $%d", idx))
		args = append(args, *filter.CriadaDesde)
		idx++
	}
	if filter.CriadaAte != nil {
		clauses = append(clauses, fmt.Sprintf("d.criada_em <= $%d", idx))
		args = append(args, *filter.CriadaAte)
		idx++
	}

	query := demandSelect
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY d.criada_em DESC"

	demands, err := r.queryDemands(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return r.attachSubDemands(ctx, demands)
}

// ListOpenWithPrazo devolve demandas não encerradas com prazo definido,
// insumo do classificador de prazos.
func (r *Repository) ListOpenWithPrazo(ctx context.Context) ([]Demand, error) {
	query := demandSelect + `
        WHERE d.status NOT IN ($1, $2) AND d.prazo IS NOT NULL
        ORDER BY d.prazo ASC`

	return r.queryDemands(ctx, query, StatusConcluida, StatusCancelada)
}

// Update grava a edição completa e recarimba editor e atualizada_em.
func (r *Repository) Update(ctx context.Context, rec UpdateRecord) (*Demand, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	set := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	set("partner_id", rec.PartnerID)
	set("collaborator_id", rec.CollaboratorID)
	set("assignee_id", rec.AssigneeID)
	set("editor_id", rec.EditorID)
	set("tipo", rec.Tipo)
	set("urgencia", rec.Urgencia)
	set("prazo", rec.Prazo)
	set("descricao", rec.Descricao)
	set("status", rec.Status)
	if rec.EvidenceFinish != nil {
		set("evidence_finish", *rec.EvidenceFinish)
	}
	setParts = append(setParts, "atualizada_em = now()")

	args = append(args, rec.ID)
	query := fmt.Sprintf(`
        UPDATE demands
        SET %s
        WHERE id = $%d
    `, strings.Join(setParts, ", "), idx)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.ErrNotFound
	}

	return r.Get(ctx, rec.ID)
}

// Delete remove a demanda; a hierarquia cai em cascata pela chave estrangeira.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM demands WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *Repository) queryDemands(ctx context.Context, query string, args ...any) ([]Demand, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var demands []Demand
	for rows.Next() {
		d, err := scanDemand(rows)
		if err != nil {
			return nil, err
		}
		demands = append(demands, *d)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return demands, nil
}

func (r *Repository) attachSubDemands(ctx context.Context, demands []Demand) ([]Demand, error) {
	if len(demands) == 0 {
		return []Demand{}, nil
	}

	ids := make([]int64, len(demands))
	for i := range demands {
		ids[i] = demands[i].ID
	}

	subs, err := r.loadSubDemands(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range demands {
		demands[i].SubDemands = subs[demands[i].ID]
		if demands[i].SubDemands == nil {
			demands[i].SubDemands = []task.SubDemand{}
		}
	}

	return demands, nil
}

func (r *Repository) loadSubDemands(ctx context.Context, demandIDs []int64) (map[int64][]task.SubDemand, error) {
	const subQuery = `
        SELECT id, demand_id, titulo, descricao, prazo, evidence
        FROM sub_demands
        WHERE demand_id = ANY($1)
        ORDER BY id ASC
    `

	rows, err := r.pool.Query(ctx, subQuery, demandIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[int64][]task.SubDemand)
	var subIDs []int64
	index := make(map[int64]*task.SubDemand)

	for rows.Next() {
		var sd task.SubDemand
		if err := rows.Scan(&sd.ID, &sd.DemandID, &sd.Titulo, &sd.Descricao, &sd.Prazo, &sd.Evidence); err != nil {
			return nil, err
		}
		sd.SubSteps = []task.SubStep{}
		grouped[sd.DemandID] = append(grouped[sd.DemandID], sd)
		subIDs = append(subIDs, sd.ID)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for demandID := range grouped {
		list := grouped[demandID]
		for i := range list {
			index[list[i].ID] = &list[i]
		}
		grouped[demandID] = list
	}

	if len(subIDs) == 0 {
		return grouped, nil
	}

	const stepQuery = `
        SELECT id, sub_demand_id, nome, status, prazo
        FROM sub_steps
        WHERE sub_demand_id = ANY($1)
        ORDER BY id ASC
    `

	stepRows, err := r.pool.Query(ctx, stepQuery, subIDs)
	if err != nil {
		return nil, err
	}
	defer stepRows.Close()

	for stepRows.Next() {
		var step task.SubStep
		if err := stepRows.Scan(&step.ID, &step.SubDemandID, &step.Nome, &step.Status, &step.Prazo); err != nil {
			return nil, err
		}
		if sd, ok := index[step.SubDemandID]; ok {
			sd.SubSteps = append(sd.SubSteps, step)
		}
	}
	if stepRows.Err() != nil {
		return nil, stepRows.Err()
	}

	return grouped, nil
}

func scanDemand(row pgx.Row) (*Demand, error) {
	var (
		d                Demand
		collaboratorNome *string
		creatorName      *string
		editorName       *string
	)

	err := row.Scan(
		&d.ID, &d.PartnerID, &d.CollaboratorID, &d.CreatorID, &d.AssigneeID, &d.EditorID,
		&d.Tipo, &d.Urgencia, &d.Prazo, &d.Descricao, &d.Status, &d.EvidenceOpen, &d.EvidenceFinish,
		&d.CriadaEm, &d.AtualizadaEm,
		&d.PartnerNickname, &collaboratorNome, &creatorName, &d.AssigneeName, &d.AssigneeRole, &editorName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	if collaboratorNome != nil {
		d.CollaboratorNome = *collaboratorNome
	}
	if creatorName != nil {
		d.CreatorName = *creatorName
	}
	if editorName != nil {
		d.EditorName = *editorName
	}

	return &d, nil
}

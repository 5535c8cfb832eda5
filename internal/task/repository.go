package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i9parcerias/demandas/internal/apperr"
)

// Repository provê acesso às tabelas de sub-demandas e sub-etapas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSubDemand insere sub-demanda vinculada à demanda.
func (r *Repository) CreateSubDemand(ctx context.Context, input CreateSubDemandInput) (*SubDemand, error) {
	const query = `
        INSERT INTO sub_demands (demand_id, titulo, descricao, prazo, evidence)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, demand_id, titulo, descricao, prazo, evidence
    `

	row := r.pool.QueryRow(ctx, query,
		input.DemandID,
		input.Titulo,
		input.Descricao,
		input.Prazo,
		input.Evidence,
	)

	sd, err := scanSubDemand(row)
	if err != nil {
		return nil, err
	}
	sd.SubSteps = []SubStep{}
	return sd, nil
}

// GetSubDemand busca sub-demanda com suas etapas.
func (r *Repository) GetSubDemand(ctx context.Context, id int64) (*SubDemand, error) {
	const query = `
        SELECT id, demand_id, titulo, descricao, prazo, evidence
        FROM sub_demands
        WHERE id = $1
    `

	sd, err := scanSubDemand(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	steps, err := r.listSteps(ctx, []int64{sd.ID})
	if err != nil {
		return nil, err
	}
	sd.SubSteps = steps[sd.ID]
	if sd.SubSteps == nil {
		sd.SubSteps = []SubStep{}
	}
	return sd, nil
}

// ListByDemand lista sub-demandas da demanda em ordem de inserção (id ascendente).
func (r *Repository) ListByDemand(ctx context.Context, demandID int64) ([]SubDemand, error) {
	const query = `
        SELECT id, demand_id, titulo, descricao, prazo, evidence
        FROM sub_demands
        WHERE demand_id = $1
        ORDER BY id ASC
    `

	rows, err := r.pool.Query(ctx, query, demandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		subs []SubDemand
		ids  []int64
	)
	for rows.Next() {
		sd, err := scanSubDemand(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sd)
		ids = append(ids, sd.ID)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	if len(subs) == 0 {
		return []SubDemand{}, nil
	}

	steps, err := r.listSteps(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		subs[i].SubSteps = steps[subs[i].ID]
		if subs[i].SubSteps == nil {
			subs[i].SubSteps = []SubStep{}
		}
	}

	return subs, nil
}

// UpdateSubDemand atualiza campos informados da sub-demanda.
func (r *Repository) UpdateSubDemand(ctx context.Context, input UpdateSubDemandInput) (*SubDemand, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Titulo != nil {
		setParts = append(setParts, fmt.Sprintf("titulo = $%d", idx))
		args = append(args, *input.Titulo)
		idx++
	}
	if input.Descricao != nil {
		setParts = append(setParts, fmt.Sprintf("descricao = $%d", idx))
		args = append(args, *input.Descricao)
		idx++
	}
	if input.Prazo != nil {
		setParts = append(setParts, fmt.Sprintf("prazo = $%d", idx))
		args = append(args, *input.Prazo)
		idx++
	}
	if input.Evidence != nil {
		setParts = append(setParts, fmt.Sprintf("evidence = $%d", idx))
		args = append(args, *input.Evidence)
		idx++
	}

	if len(setParts) == 0 {
		return r.GetSubDemand(ctx, input.ID)
	}

	args = append(args, input.ID)
	query := fmt.Sprintf(`
        UPDATE sub_demands
        SET %s
        WHERE id = $%d
        RETURNING id, demand_id, titulo, descricao, prazo, evidence
    `, strings.Join(setParts, ", "), idx)

	sd, err := scanSubDemand(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	steps, err := r.listSteps(ctx, []int64{sd.ID})
	if err != nil {
		return nil, err
	}
	sd.SubSteps = steps[sd.ID]
	if sd.SubSteps == nil {
		sd.SubSteps = []SubStep{}
	}
	return sd, nil
}

// CreateSubStep insere sub-etapa já com status PENDENTE.
func (r *Repository) CreateSubStep(ctx context.Context, subDemandID int64, nome string, prazo *time.Time) (*SubStep, error) {
	const query = `
        INSERT INTO sub_steps (sub_demand_id, nome, status, prazo)
        VALUES ($1, $2, $3, $4)
        RETURNING id, sub_demand_id, nome, status, prazo
    `

	row := r.pool.QueryRow(ctx, query, subDemandID, nome, StepPendente, prazo)
	return scanSubStep(row)
}

// GetSubStep busca uma sub-etapa específica.
func (r *Repository) GetSubStep(ctx context.Context, id int64) (*SubStep, error) {
	const query = `
        SELECT id, sub_demand_id, nome, status, prazo
        FROM sub_steps
        WHERE id = $1
    `
	return scanSubStep(r.pool.QueryRow(ctx, query, id))
}

// UpdateSubStep grava nome e status atuais da sub-etapa.
func (r *Repository) UpdateSubStep(ctx context.Context, id int64, nome, status string) (*SubStep, error) {
	const query = `
        UPDATE sub_steps
        SET nome = $1, status = $2
        WHERE id = $3
        RETURNING id, sub_demand_id, nome, status, prazo
    `
	return scanSubStep(r.pool.QueryRow(ctx, query, nome, status, id))
}

// DeleteSubStep remove a sub-etapa de forma definitiva.
func (r *Repository) DeleteSubStep(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sub_steps WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *Repository) listSteps(ctx context.Context, subDemandIDs []int64) (map[int64][]SubStep, error) {
	const query = `
        SELECT id, sub_demand_id, nome, status, prazo
        FROM sub_steps
        WHERE sub_demand_id = ANY($1)
        ORDER BY id ASC
    `

	rows, err := r.pool.Query(ctx, query, subDemandIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[int64][]SubStep)
	for rows.Next() {
		step, err := scanSubStep(rows)
		if err != nil {
			return nil, err
		}
		grouped[step.SubDemandID] = append(grouped[step.SubDemandID], *step)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return grouped, nil
}

func scanSubDemand(row pgx.Row) (*SubDemand, error) {
	var sd SubDemand
	if err := row.Scan(&sd.ID, &sd.DemandID, &sd.Titulo, &sd.Descricao, &sd.Prazo, &sd.Evidence); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &sd, nil
}

func scanSubStep(row pgx.Row) (*SubStep, error) {
	var s SubStep
	if err := row.Scan(&s.ID, &s.SubDemandID, &s.Nome, &s.Status, &s.Prazo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

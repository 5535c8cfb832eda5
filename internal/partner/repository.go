package partner

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i9parcerias/demandas/internal/apperr"
)

// Repository provê acesso às tabelas de parceiros e colaboradores.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreatePartner insere um novo parceiro.
func (r *Repository) CreatePartner(ctx context.Context, input CreatePartnerInput) (*Partner, error) {
	const query = `
        INSERT INTO partners (nickname, nome_fantasia, razao_social, cnpj, sap_cliente, sap_fornecedor)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, nickname, nome_fantasia, razao_social, cnpj, sap_cliente, sap_fornecedor, criado_em
    `

	row := r.pool.QueryRow(ctx, query,
		input.Nickname,
		input.NomeFantasia,
		input.RazaoSocial,
		input.CNPJ,
		input.SapCliente,
		input.SapFornecedor,
	)

	var p Partner
	if err := row.Scan(&p.ID, &p.Nickname, &p.NomeFantasia, &p.RazaoSocial, &p.CNPJ, &p.SapCliente, &p.SapFornecedor, &p.CriadoEm); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPartner busca um parceiro específico.
func (r *Repository) GetPartner(ctx context.Context, id int64) (*Partner, error) {
	const query = `
        SELECT id, nickname, nome_fantasia, razao_social, cnpj, sap_cliente, sap_fornecedor, criado_em
        FROM partners
        WHERE id = $1
    `

	var p Partner
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Nickname, &p.NomeFantasia, &p.RazaoSocial, &p.CNPJ, &p.SapCliente, &p.SapFornecedor, &p.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPartners lista parceiros com contagem de demandas e colaboradores.
func (r *Repository) ListPartners(ctx context.Context) ([]Partner, error) {
	const query = `
        SELECT p.id, p.nickname, p.nome_fantasia, p.razao_social, p.cnpj, p.sap_cliente, p.sap_fornecedor, p.criado_em,
               (SELECT count(*) FROM demands d WHERE d.partner_id = p.id) AS demand_count,
               (SELECT count(*) FROM collaborators c WHERE c.partner_id = p.id) AS collaborator_count
        FROM partners p
        ORDER BY p.nickname ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []Partner
	for rows.Next() {
		var p Partner
		if err := rows.Scan(&p.ID, &p.Nickname, &p.NomeFantasia, &p.RazaoSocial, &p.CNPJ, &p.SapCliente, &p.SapFornecedor, &p.CriadoEm, &p.DemandCount, &p.CollaboratorCount); err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return partners, nil
}

// CreateCollaborator insere colaborador vinculado ao parceiro.
func (r *Repository) CreateCollaborator(ctx context.Context, input CreateCollaboratorInput) (*Collaborator, error) {
	const query = `
        INSERT INTO collaborators (partner_id, nome, cargo, telefone, matricula)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, partner_id, nome, cargo, telefone, matricula
    `

	row := r.pool.QueryRow(ctx, query,
		input.PartnerID,
		input.Nome,
		input.Cargo,
		input.Telefone,
		input.Matricula,
	)

	return scanCollaborator(row)
}

// GetCollaborator busca um colaborador específico.
func (r *Repository) GetCollaborator(ctx context.Context, id int64) (*Collaborator, error) {
	const query = `
        SELECT id, partner_id, nome, cargo, telefone, matricula
        FROM collaborators
        WHERE id = $1
    `
	return scanCollaborator(r.pool.QueryRow(ctx, query, id))
}

// ListCollaborators lista colaboradores, opcionalmente filtrados por parceiro.
func (r *Repository) ListCollaborators(ctx context.Context, partnerID *int64) ([]Collaborator, error) {
	query := `
        SELECT id, partner_id, nome, cargo, telefone, matricula
        FROM collaborators`

	var args []any
	if partnerID != nil {
		query += ` WHERE partner_id = $1`
		args = append(args, *partnerID)
	}
	query += ` ORDER BY nome ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collaborators []Collaborator
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, err
		}
		collaborators = append(collaborators, *c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return collaborators, nil
}

func scanCollaborator(row pgx.Row) (*Collaborator, error) {
	var c Collaborator
	if err := row.Scan(&c.ID, &c.PartnerID, &c.Nome, &c.Cargo, &c.Telefone, &c.Matricula); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

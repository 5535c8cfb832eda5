package partner

import (
	"regexp"
	"strings"
	"time"
)

var matriculaPattern = regexp.MustCompile(`^[A-Z]\d{7}$`)

// Partner representa um parceiro de negócio dono de demandas e colaboradores.
type Partner struct {
	ID            int64     `json:"id"`
	Nickname      string    `json:"nickname"`
	NomeFantasia  string    `json:"nomeFantasia,omitempty"`
	RazaoSocial   string    `json:"razaoSocial,omitempty"`
	CNPJ          string    `json:"cnpj,omitempty"`
	SapCliente    string    `json:"sapCliente,omitempty"`
	SapFornecedor string    `json:"sapFornecedor,omitempty"`
	CriadoEm      time.Time `json:"criadoEm"`

	// Contadores derivados para listagem.
	DemandCount       int `json:"demandCount"`
	CollaboratorCount int `json:"collaboratorCount"`
}

// Collaborator pertence exclusivamente a um parceiro.
type Collaborator struct {
	ID        int64  `json:"id"`
	PartnerID int64  `json:"partnerId"`
	Nome      string `json:"nome"`
	Cargo     string `json:"cargo,omitempty"`
	Telefone  string `json:"telefone"`
	Matricula string `json:"matricula"`
}

// CreatePartnerInput encapsula campos de cadastro de parceiro.
type CreatePartnerInput struct {
	Nickname      string
	NomeFantasia  string
	RazaoSocial   string
	CNPJ          string
	SapCliente    string
	SapFornecedor string
}

// CreateCollaboratorInput encapsula campos de cadastro de colaborador.
type CreateCollaboratorInput struct {
	PartnerID int64
	Nome      string
	Cargo     string
	Telefone  string
	Matricula string
}

// NormalizeTelefone remove tudo que não for dígito antes da persistência.
func NormalizeTelefone(telefone string) string {
	var b strings.Builder
	for _, r := range telefone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidMatricula valida o formato literal: uma letra maiúscula e sete dígitos.
func IsValidMatricula(matricula string) bool {
	return matriculaPattern.MatchString(matricula)
}

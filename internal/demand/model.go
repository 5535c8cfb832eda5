package demand

import (
	"strings"
	"time"

	"github.com/i9parcerias/demandas/internal/task"
)

const (
	StatusAberta      = "ABERTA"
	StatusEmAndamento = "EM_ANDAMENTO"
	StatusConcluida   = "CONCLUIDA"
	StatusCancelada   = "CANCELADA"

	UrgenciaBaixa   = "BAIXA"
	UrgenciaMedia   = "MEDIA"
	UrgenciaAlta    = "ALTA"
	UrgenciaUrgente = "URGENTE"
)

var (
	validStatuses = map[string]struct{}{
		StatusAberta:      {},
		StatusEmAndamento: {},
		StatusConcluida:   {},
		StatusCancelada:   {},
	}
	validUrgencias = map[string]struct{}{
		UrgenciaBaixa:   {},
		UrgenciaMedia:   {},
		UrgenciaAlta:    {},
		UrgenciaUrgente: {},
	}
)

// Demand é a unidade de trabalho rastreável aberta contra um parceiro.
type Demand struct {
	ID             int64      `json:"id"`
	PartnerID      int64      `json:"partnerId"`
	CollaboratorID *int64     `json:"collaboratorId,omitempty"`
	CreatorID      *int64     `json:"creatorId,omitempty"`
	AssigneeID     int64      `json:"assigneeId"`
	EditorID       *int64     `json:"editorId,omitempty"`
	Tipo           string     `json:"tipo"`
	Urgencia       string     `json:"urgencia"`
	Prazo          *time.Time `json:"prazo,omitempty"`
	Descricao      string     `json:"descricao,omitempty"`
	Status         string     `json:"status"`
	EvidenceOpen   string     `json:"evidenceOpen,omitempty"`
	EvidenceFinish string     `json:"evidenceFinish,omitempty"`
	CriadaEm       time.Time  `json:"criadaEm"`
	AtualizadaEm   time.Time  `json:"atualizadaEm"`

	// Dados de exibição resolvidos por junção na leitura.
	PartnerNickname  string `json:"partnerNickname,omitempty"`
	CollaboratorNome string `json:"collaboratorNome,omitempty"`
	CreatorName      string `json:"creatorName,omitempty"`
	AssigneeName     string `json:"assigneeName,omitempty"`
	EditorName       string `json:"editorName,omitempty"`

	// Papel do responsável atual; alimenta a avaliação de permissão e nunca
	// é serializado.
	AssigneeRole string `json:"-"`

	SubDemands []task.SubDemand `json:"subDemands,omitempty"`
}

// CreateInput encapsula a criação de demanda com hierarquia aninhada opcional.
type CreateInput struct {
	PartnerID      int64
	CollaboratorID *int64
	AssigneeID     int64
	Tipo           string
	Urgencia       string
	Prazo          *time.Time
	Descricao      string
	EvidenceOpen   string
	SubDemands     []SubDemandInput
}

// SubDemandInput descreve sub-demanda criada junto com a demanda.
type SubDemandInput struct {
	Titulo    string
	Descricao string
	Prazo     *time.Time
	Evidence  string
	SubSteps  []SubStepInput
}

// SubStepInput descreve sub-etapa criada junto com a sub-demanda.
type SubStepInput struct {
	Nome  string
	Prazo *time.Time
}

// UpdateInput é a edição completa (PUT) de uma demanda.
// Status vazio preserva o status atual.
type UpdateInput struct {
	PartnerID      int64
	CollaboratorID *int64
	AssigneeID     int64
	Tipo           string
	Urgencia       string
	Prazo          *time.Time
	Descricao      string
	Status         string
}

// Filter restringe listagem e exportação; campos nulos não filtram.
type Filter struct {
	PartnerID   *int64
	Status      *string
	CriadaDesde *time.Time
	CriadaAte   *time.Time
}

// NormalizeStatus padroniza status em maiúsculas.
func NormalizeStatus(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}

// NormalizeUrgencia padroniza urgência, aplicando MEDIA como default.
func NormalizeUrgencia(urgencia string) string {
	urgencia = strings.ToUpper(strings.TrimSpace(urgencia))
	if urgencia == "" {
		return UrgenciaMedia
	}
	return urgencia
}

// IsValidStatus indica se o status é aceito.
func IsValidStatus(status string) bool {
	_, ok := validStatuses[NormalizeStatus(status)]
	return ok
}

// IsValidUrgencia indica se a urgência é aceita.
func IsValidUrgencia(urgencia string) bool {
	_, ok := validUrgencias[strings.ToUpper(strings.TrimSpace(urgencia))]
	return ok
}

// IsTerminal indica status logicamente final (CONCLUIDA ou CANCELADA).
func IsTerminal(status string) bool {
	return status == StatusConcluida || status == StatusCancelada
}

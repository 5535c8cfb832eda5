package task

import (
	"strings"
	"time"
)

const (
	// StepPendente é o estado inicial de toda sub-etapa.
	StepPendente = "PENDENTE"
	// StepConcluida marca a sub-etapa como feita; o toggle alterna entre os dois.
	StepConcluida = "CONCLUIDA"
)

// SubDemand é a decomposição de uma demanda em sub-tarefa titulada.
type SubDemand struct {
	ID        int64      `json:"id"`
	DemandID  int64      `json:"demandId"`
	Titulo    string     `json:"titulo"`
	Descricao string     `json:"descricao,omitempty"`
	Prazo     *time.Time `json:"prazo,omitempty"`
	Evidence  string     `json:"evidence,omitempty"`
	SubSteps  []SubStep  `json:"subSteps"`
}

// SubStep é um item de checklist dentro de uma sub-demanda.
type SubStep struct {
	ID          int64      `json:"id"`
	SubDemandID int64      `json:"subDemandId"`
	Nome        string     `json:"nome"`
	Status      string     `json:"status"`
	Prazo       *time.Time `json:"prazo,omitempty"`
}

// CreateSubDemandInput encapsula campos para criar sub-demanda.
type CreateSubDemandInput struct {
	DemandID  int64
	Titulo    string
	Descricao string
	Prazo     *time.Time
	Evidence  string
}

// UpdateSubDemandInput atualiza campos da sub-demanda; ponteiros nulos preservam o valor atual.
type UpdateSubDemandInput struct {
	ID        int64
	Titulo    *string
	Descricao *string
	Prazo     *time.Time
	Evidence  *string
}

// Progress calcula o agregado de conclusão (etapas concluídas, total).
// Uma sub-demanda sem etapas devolve (0, 0) e deve ser distinguida de "0 de N".
func Progress(sd SubDemand) (completed int, total int) {
	total = len(sd.SubSteps)
	for _, step := range sd.SubSteps {
		if step.Status == StepConcluida {
			completed++
		}
	}
	return completed, total
}

// ToggleStatus devolve o status oposto da sub-etapa.
func ToggleStatus(status string) string {
	if strings.EqualFold(status, StepConcluida) {
		return StepPendente
	}
	return StepConcluida
}

package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/i9parcerias/demandas/internal/demand"
)

func TestFromDemandsFlattensAndDefaults(t *testing.T) {
	criada := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	prazo := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	rows := FromDemands([]demand.Demand{
		{
			ID:               1,
			PartnerNickname:  "ACME",
			Tipo:             "Auditoria",
			Urgencia:         demand.UrgenciaAlta,
			Status:           demand.StatusAberta,
			CriadaEm:         criada,
			Prazo:            &prazo,
			Descricao:        "verificar lote",
			CollaboratorNome: "Maria",
		},
		{
			ID:              2,
			PartnerNickname: "Beta",
			Tipo:            "Cadastro",
			Urgencia:        demand.UrgenciaMedia,
			Status:          demand.StatusConcluida,
			CriadaEm:        criada,
		},
	})

	if len(rows) != 2 {
		t.Fatalf("linhas = %d, esperado 2", len(rows))
	}
	if rows[0].Colaborador != "Maria" {
		t.Fatalf("colaborador = %q", rows[0].Colaborador)
	}
	if rows[1].Colaborador != "N/A" {
		t.Fatalf("colaborador ausente = %q, esperado N/A", rows[1].Colaborador)
	}
	if rows[1].Prazo != nil {
		t.Fatal("prazo ausente deveria permanecer nulo")
	}
}

func TestWriteXLSXProducesReadableSheet(t *testing.T) {
	criada := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	prazo := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	content, err := WriteXLSX([]Row{{
		ID:          7,
		Parceiro:    "ACME",
		Tipo:        "Auditoria",
		Urgencia:    demand.UrgenciaAlta,
		Status:      demand.StatusAberta,
		CriadoEm:    criada,
		Prazo:       &prazo,
		Descricao:   "verificar lote",
		Colaborador: "Maria",
	}})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("planilha ilegível: %v", err)
	}
	defer f.Close()

	cols, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("erro ao ler aba: %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("linhas na aba = %d, esperado cabeçalho + 1", len(cols))
	}
	if cols[0][0] != "ID" || cols[0][1] != "Parceiro" {
		t.Fatalf("cabeçalho inesperado: %v", cols[0])
	}
	if cols[1][1] != "ACME" {
		t.Fatalf("parceiro = %q", cols[1][1])
	}
	if cols[1][6] != "15/02/2026" {
		t.Fatalf("prazo = %q, esperado 15/02/2026", cols[1][6])
	}
}

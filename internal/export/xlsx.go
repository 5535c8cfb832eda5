package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/i9parcerias/demandas/internal/demand"
)

// Filename é o nome sugerido do arquivo gerado.
const Filename = "relatorio_demandas.xlsx"

const sheetName = "Demandas"

var headers = []string{"ID", "Parceiro", "Tipo", "Urgência", "Status", "Criado Em", "Prazo", "Descrição", "Colaborador"}

// Row é a linha achatada entregue pelo núcleo ao gerador de planilha.
type Row struct {
	ID          int64
	Parceiro    string
	Tipo        string
	Urgencia    string
	Status      string
	CriadoEm    time.Time
	Prazo       *time.Time
	Descricao   string
	Colaborador string
}

// FromDemands achata o resultado de uma listagem nas linhas do relatório.
// Nenhum filtro adicional acontece aqui: exportação é listagem + achatamento.
func FromDemands(demands []demand.Demand) []Row {
	rows := make([]Row, 0, len(demands))
	for _, d := range demands {
		colaborador := d.CollaboratorNome
		if colaborador == "" {
			colaborador = "N/A"
		}
		rows = append(rows, Row{
			ID:          d.ID,
			Parceiro:    d.PartnerNickname,
			Tipo:        d.Tipo,
			Urgencia:    d.Urgencia,
			Status:      d.Status,
			CriadoEm:    d.CriadaEm,
			Prazo:       d.Prazo,
			Descricao:   d.Descricao,
			Colaborador: colaborador,
		})
	}
	return rows
}

// WriteXLSX produz a planilha .xlsx a partir das linhas achatadas.
func WriteXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		prazo := ""
		if row.Prazo != nil {
			prazo = row.Prazo.Format("02/01/2006")
		}
		values := []any{
			row.ID,
			row.Parceiro,
			row.Tipo,
			row.Urgencia,
			row.Status,
			row.CriadoEm.Format("02/01/2006 15:04"),
			prazo,
			row.Descricao,
			row.Colaborador,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return buf.Bytes(), nil
}

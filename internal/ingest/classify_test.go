package ingest

import (
	"testing"

	"harvest-analytics-api/internal/models"
)

func TestDetectSheetProduction(t *testing.T) {
	rows := [][]string{
		{"Relatório de Pesagem"},
		{},
		{"Nº Viagem", "Frota", "Peso Líquido (kg)", "Liberação", "Frente", "Fazenda"},
		{"1001", "31500", "35,50", "L-1", "1", "Santa Fé"},
	}

	det := DetectSheet(rows, "export.xlsx")
	if det.Kind != models.SheetProduction {
		t.Errorf("Expected production sheet, got %s", det.Kind)
	}
	if det.HeaderRow != 2 {
		t.Errorf("Expected header at row 2, got %d", det.HeaderRow)
	}
}

func TestDetectSheetPotential(t *testing.T) {
	rows := [][]string{
		{"Hora", "Potencial de Moagem", "Rotação"},
		{"07:00", "1050", "980"},
	}

	det := DetectSheet(rows, "dados.xlsx")
	if det.Kind != models.SheetPotential {
		t.Errorf("Expected potential sheet, got %s", det.Kind)
	}
	if det.HeaderRow != 0 {
		t.Errorf("Expected header at row 0, got %d", det.HeaderRow)
	}
}

func TestDetectSheetMeta(t *testing.T) {
	rows := [][]string{
		{"Fazenda", "Meta Dia", "TMD", "ATR", "Raio Médio"},
		{"Santa Fé", "4000", "85", "130", "25"},
	}

	if det := DetectSheet(rows, "plan.xlsx"); det.Kind != models.SheetMeta {
		t.Errorf("Expected meta sheet, got %s", det.Kind)
	}
}

func TestDetectSheetFilenameFallback(t *testing.T) {
	// Headers too sparse to score; filename decides
	rows := [][]string{
		{"Coluna A", "Coluna B"},
		{"1", "2"},
	}

	if det := DetectSheet(rows, "Acumulado Safra 2025.xlsx"); det.Kind != models.SheetSeason {
		t.Errorf("Expected season sheet via filename hint, got %s", det.Kind)
	}

	if det := DetectSheet(rows, "sem-pista.xlsx"); det.Kind != models.SheetUnknown {
		t.Errorf("Expected unknown sheet, got %s", det.Kind)
	}
}

func TestDetectSheetIgnoresDeepHeaders(t *testing.T) {
	rows := make([][]string, 0, maxHeaderScanRows+2)
	for i := 0; i < maxHeaderScanRows; i++ {
		rows = append(rows, []string{"x"})
	}
	rows = append(rows, []string{"Frota", "Peso Líquido", "Liberação", "Frente", "Fazenda", "Viagem"})

	if det := DetectSheet(rows, "qualquer.xlsx"); det.Kind != models.SheetUnknown {
		t.Errorf("Expected header beyond scan window to be ignored, got %s", det.Kind)
	}
}

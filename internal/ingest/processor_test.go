package ingest

import (
	"testing"
	"time"
)

func productionMatrix(dataRows ...[]string) [][]string {
	header := []string{
		"Nº Viagem", "Frota", "Colhedora 1", "Colhedora 2", "Peso Líquido",
		"Peso Bruto", "Peso Tara", "Cód. Fazenda", "Fazenda", "Frente",
		"Liberação", "Qtde Viagens", "Data Saída", "Hora Saída",
	}
	return append([][]string{header}, dataRows...)
}

func TestNormalizeProduction(t *testing.T) {
	rows := productionMatrix(
		[]string{"1001", "31500", "801234", "801234", "35,50", "50,00", "14,50", "F1", "Santa Fé", "1", "L-1", "0,5", "15/07/2025", "08:30"},
	)

	p := NewProcessor(0)
	out := p.NormalizeProduction(rows, 0)
	if len(out) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(out))
	}

	row := out[0]
	if row.TripID != "1001" || row.FleetID != "31500" {
		t.Errorf("Unexpected identity: trip=%s fleet=%s", row.TripID, row.FleetID)
	}
	if row.NetWeight != 35.5 {
		t.Errorf("Expected net weight 35.5, got %v", row.NetWeight)
	}
	if row.GrossWeight == nil || *row.GrossWeight != 50 {
		t.Errorf("Expected gross weight 50, got %v", row.GrossWeight)
	}

	// Duplicate harvester codes collapse to one entry
	if len(row.Equipment) != 1 || row.Equipment[0] != "801234" {
		t.Errorf("Expected deduped equipment [801234], got %v", row.Equipment)
	}

	if row.Timestamp == nil {
		t.Fatalf("Expected timestamp from date + clock")
	}
	want := time.Date(2025, 7, 15, 8, 30, 0, 0, time.UTC)
	if !row.Timestamp.Equal(want) {
		t.Errorf("Expected %v, got %v", want, row.Timestamp)
	}
}

func TestNormalizeProductionSynthesizesTripID(t *testing.T) {
	rows := productionMatrix(
		[]string{"", "31500", "", "", "35,50", "", "", "F1", "Santa Fé", "1", "L-1", "0,5", "15/07/2025", "08:30"},
	)

	p := NewProcessor(0)
	out := p.NormalizeProduction(rows, 0)
	if len(out) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(out))
	}
	if out[0].TripID != "2025071508300031500" {
		t.Errorf("Expected synthesized trip id, got %s", out[0].TripID)
	}
}

func TestNormalizeProductionClosingFallback(t *testing.T) {
	// No trip column value and no timestamp: only qty~=1 closing rows
	// survive, keyed by fleet id.
	rows := productionMatrix(
		[]string{"", "91200", "", "", "12,34", "", "", "", "", "1", "L-1", "1", "", ""},
		[]string{"", "91201", "", "", "20,00", "", "", "", "", "1", "L-1", "3", "", ""},
	)

	p := NewProcessor(0)
	out := p.NormalizeProduction(rows, 0)
	if len(out) != 1 {
		t.Fatalf("Expected only the closing row to survive, got %d rows", len(out))
	}
	if out[0].TripID != "91200" {
		t.Errorf("Expected fleet id as trip id, got %s", out[0].TripID)
	}
}

func TestNormalizeProductionDropsTotalRows(t *testing.T) {
	rows := productionMatrix(
		[]string{"TOTAL GERAL", "TOTAL", "", "", "500,00", "", "", "", "", "", "", "", "", ""},
		[]string{"1002", "31501", "", "", "30,00", "", "", "", "", "2", "L-2", "0,5", "15/07/2025", "09:00"},
	)

	p := NewProcessor(0)
	out := p.NormalizeProduction(rows, 0)
	if len(out) != 1 || out[0].TripID != "1002" {
		t.Errorf("Expected TOTAL row dropped, got %+v", out)
	}
}

func TestNormalizeProductionDepartureWinsOverDateClock(t *testing.T) {
	header := []string{"Nº Viagem", "Frota", "Peso Líquido", "Data Hora Saída", "Data Saída", "Hora Saída"}
	rows := [][]string{
		header,
		{"1001", "31500", "10,00", "15/07/2025 14:00:00", "01/01/2020", "06:00"},
	}

	p := NewProcessor(0)
	out := p.NormalizeProduction(rows, 0)
	if len(out) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(out))
	}
	want := time.Date(2025, 7, 15, 14, 0, 0, 0, time.UTC)
	if out[0].Timestamp == nil || !out[0].Timestamp.Equal(want) {
		t.Errorf("Expected departure datetime %v, got %v", want, out[0].Timestamp)
	}
}

func TestNormalizeProductionTimeOnly(t *testing.T) {
	header := []string{"Nº Viagem", "Frota", "Peso Líquido", "Hora Saída"}
	rows := [][]string{
		header,
		{"1001", "31500", "10,00", "09:45"},
	}

	p := NewProcessor(0)
	out := p.NormalizeProduction(rows, 0)
	if len(out) != 1 || out[0].Timestamp == nil {
		t.Fatalf("Expected row with time-only timestamp")
	}
	ts := out[0].Timestamp
	if ts.Year() != 1 {
		t.Errorf("Expected zero date for time-only timestamp, got %v", ts)
	}
	if ts.Hour() != 9 || ts.Minute() != 45 {
		t.Errorf("Expected 09:45, got %v", ts)
	}
}

func TestNormalizePotential(t *testing.T) {
	rows := [][]string{
		{"Hora", "Potencial de Moagem", "Rotação", "Frente"},
		{"07:00", "1.050,00", "980", "1"},
		{"", "", "", ""},
		{"08:00", "1100", "", "1"},
	}

	p := NewProcessor(0)
	out := p.NormalizePotential(rows, 0)
	if len(out) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(out))
	}
	if out[0].Potential != 1050 {
		t.Errorf("Expected potential 1050, got %v", out[0].Potential)
	}
	if out[0].Timestamp == nil || out[0].Timestamp.Hour() != 7 {
		t.Errorf("Expected 07:00 timestamp, got %v", out[0].Timestamp)
	}
}

func TestNormalizePotentialRequiresPotentialColumn(t *testing.T) {
	rows := [][]string{
		{"Hora", "Rotação"},
		{"07:00", "980"},
	}
	if out := NewProcessor(0).NormalizePotential(rows, 0); out != nil {
		t.Errorf("Expected nil without a potential column, got %v", out)
	}
}

func TestNormalizeMeta(t *testing.T) {
	rows := [][]string{
		{"Cód. Fazenda", "Fazenda", "Frente", "Meta Dia", "TMD", "ATR", "Raio Médio"},
		{"F1", "Santa Fé", "1", "4.000,00", "85", "130,5", "25"},
		{"", "", "", "", "", "", ""},
	}

	out := NewProcessor(0).NormalizeMeta(rows, 0)
	if len(out) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(out))
	}
	if out[0].Meta != 4000 || out[0].ATR != 130.5 {
		t.Errorf("Unexpected meta row: %+v", out[0])
	}
}

func TestNormalizeSeason(t *testing.T) {
	rows := [][]string{
		{"Data", "Acumulado Safra"},
		{"01/07/2025", "120.500,75"},
		{"02/07/2025", "0"},
	}

	out := NewProcessor(0).NormalizeSeason(rows, 0)
	if len(out) != 1 {
		t.Fatalf("Expected zero-weight rows skipped, got %d rows", len(out))
	}
	if out[0].Weight != 120500.75 {
		t.Errorf("Expected 120500.75, got %v", out[0].Weight)
	}
	if out[0].Timestamp == nil || out[0].Timestamp.Month() != time.July {
		t.Errorf("Expected July timestamp, got %v", out[0].Timestamp)
	}
}

func TestCollectOperators(t *testing.T) {
	raw := []string{"100", "João", "100", "João", "0", "", "200", "Maria"}
	ops := collectOperators(raw, []int{0, 2, 4, 6}, []int{1, 3, 5, 7})
	if len(ops) != 2 {
		t.Fatalf("Expected 2 operators, got %d", len(ops))
	}
	if ops[0].Code != "100" || ops[0].Name != "João" {
		t.Errorf("Unexpected first operator: %+v", ops[0])
	}
	if ops[1].Code != "200" || ops[1].Name != "Maria" {
		t.Errorf("Unexpected second operator: %+v", ops[1])
	}
}

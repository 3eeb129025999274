package ingest

import (
	"testing"
	"time"
)

func TestNormalizeText(t *testing.T) {
	cases := map[string]string{
		"Peso Líquido (kg)": "peso liquido kg",
		"peso_liquido":      "peso liquido",
		"LIBERAÇÃO":         "liberacao",
		"  Frota  ":         "frota",
		"Cód. Fazenda":      "cod fazenda",
	}
	for in, want := range cases {
		if got := NormalizeText(in); got != want {
			t.Errorf("NormalizeText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHeaderMapperFind(t *testing.T) {
	headers := []string{"Nº Viagem", "Frota", "Peso Líquido (kg)", "Qtde Viagens"}
	mapper := NewHeaderMapper(headers)

	// Accent-insensitive substring match
	if idx, found := mapper.Find("peso liquido"); !found || idx != 2 {
		t.Errorf("Expected column 2 for 'peso liquido', got %d, found: %v", idx, found)
	}

	// First pattern wins even when a later pattern matches earlier columns
	if idx, found := mapper.Find("qtde viagens", "viagem"); !found || idx != 3 {
		t.Errorf("Expected column 3 for first pattern, got %d, found: %v", idx, found)
	}

	// Exact match takes priority over substring for the same pattern
	mapper2 := NewHeaderMapper([]string{"Qtde Viagens", "Viagem"})
	if idx, found := mapper2.Find("viagem"); !found || idx != 1 {
		t.Errorf("Expected exact match at column 1, got %d, found: %v", idx, found)
	}

	// Short patterns never substring-match
	mapper3 := NewHeaderMapper([]string{"Código"})
	if _, found := mapper3.Find("cd"); found {
		t.Errorf("Short pattern 'cd' should not substring-match 'Código'")
	}
	if idx, found := mapper3.Find("codigo"); !found || idx != 0 {
		t.Errorf("Expected column 0 for 'codigo', got %d, found: %v", idx, found)
	}

	if _, found := mapper.Find("rotacao"); found {
		t.Errorf("Expected no match for absent pattern")
	}
}

func TestHeaderMapperFindAll(t *testing.T) {
	headers := []string{"Frota", "Equipamento 1", "Equipamento 2", "Equipamento 3", "Peso"}
	mapper := NewHeaderMapper(headers)

	idxs := mapper.FindAll("equipamento")
	if len(idxs) != 3 || idxs[0] != 1 || idxs[2] != 3 {
		t.Errorf("Expected columns [1 2 3], got %v", idxs)
	}

	// First matching pattern claims all its columns
	idxs = mapper.FindAll("colhedora", "equipamento")
	if len(idxs) != 3 {
		t.Errorf("Expected fallback pattern to match 3 columns, got %v", idxs)
	}

	if idxs := mapper.FindAll("reboque"); idxs != nil {
		t.Errorf("Expected nil for absent pattern, got %v", idxs)
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"1234.56":  1234.56,
		"1.234,56": 1234.56,
		"1234,56":  1234.56,
		"42":       42,
		"":         0,
		"abc":      0,
	}
	for in, want := range cases {
		if got := ParseNumber(in); got != want {
			t.Errorf("ParseNumber(%q) = %v, want %v", in, got, want)
		}
	}

	if v := ParseOptionalNumber(""); v != nil {
		t.Errorf("Expected nil for empty cell, got %v", *v)
	}
	if v := ParseOptionalNumber("0"); v == nil || *v != 0 {
		t.Errorf("Expected explicit zero to be preserved, got %v", v)
	}
}

func TestParseDate(t *testing.T) {
	// Brazilian datetime
	ts, ok := ParseDate("15/07/2025 14:30:00", 0)
	if !ok {
		t.Fatalf("Expected valid datetime")
	}
	if ts.Day() != 15 || ts.Month() != time.July || ts.Hour() != 14 {
		t.Errorf("Unexpected parse result: %v", ts)
	}

	// Date only
	if ts, ok := ParseDate("01/02/2025", 0); !ok || ts.Month() != time.February {
		t.Errorf("Expected DD/MM ordering, got %v, ok: %v", ts, ok)
	}

	// Excel serial with the +3h spreadsheet offset
	ts, ok = ParseDate("45000", 3*time.Hour)
	if !ok {
		t.Fatalf("Expected valid serial")
	}
	want := time.Date(2023, 3, 15, 3, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("Expected %v for serial 45000, got %v", want, ts)
	}

	// Out-of-range numbers are not serials
	if _, ok := ParseDate("42.5", 0); ok {
		t.Errorf("Expected small number to be rejected as a date")
	}
	if _, ok := ParseDate("invalid", 0); ok {
		t.Errorf("Expected error for invalid date")
	}
}

func TestParseClock(t *testing.T) {
	if d, ok := ParseClock("14:30"); !ok || d != 14*time.Hour+30*time.Minute {
		t.Errorf("Expected 14h30m, got %v, ok: %v", d, ok)
	}
	if d, ok := ParseClock("07:05:30"); !ok || d != 7*time.Hour+5*time.Minute+30*time.Second {
		t.Errorf("Expected 7h5m30s, got %v, ok: %v", d, ok)
	}

	// Excel day fraction: 0.5 is noon
	if d, ok := ParseClock("0.5"); !ok || d != 12*time.Hour {
		t.Errorf("Expected 12h for 0.5, got %v, ok: %v", d, ok)
	}

	if _, ok := ParseClock("1.5"); ok {
		t.Errorf("Expected rejection of fraction >= 1")
	}
	if _, ok := ParseClock(""); ok {
		t.Errorf("Expected rejection of empty cell")
	}
}

func TestCombineDateAndClock(t *testing.T) {
	date := time.Date(2025, 7, 15, 23, 59, 0, 0, time.UTC)
	got := CombineDateAndClock(date, 6*time.Hour+15*time.Minute)
	want := time.Date(2025, 7, 15, 6, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestIsTruthy(t *testing.T) {
	for _, s := range []string{"SIM", "s", "1", "Analisado", "true", "Verdadeiro"} {
		if !IsTruthy(s) {
			t.Errorf("Expected %q to be truthy", s)
		}
	}
	for _, s := range []string{"", "nao", "0", "false", "pendente"} {
		if IsTruthy(s) {
			t.Errorf("Expected %q to be falsy", s)
		}
	}
}

func TestIsSentinel(t *testing.T) {
	for _, s := range []string{"", "0", "TOTAL", "Total Geral", "  "} {
		if !IsSentinel(s) {
			t.Errorf("Expected %q to be a sentinel", s)
		}
	}
	for _, s := range []string{"801234", "31500", "00123"} {
		if IsSentinel(s) {
			t.Errorf("Expected %q to be a real code", s)
		}
	}
}

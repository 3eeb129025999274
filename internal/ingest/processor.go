package ingest

import (
	"strings"
	"time"

	"harvest-analytics-api/internal/models"
)

// Ordered pattern lists per canonical field. Order matters: the first
// pattern that matches a header wins, so the most specific forms come
// first. All patterns are pre-normalized (lowercase, no accents).
var (
	patTrip       = []string{"no viagem", "num viagem", "nro viagem", "ticket", "viagem"}
	patFleet      = []string{"cod frota", "frota", "cod veiculo", "veiculo"}
	patEquipment  = []string{"colhedora", "cod equipamento", "equipamento", "cod equip"}
	patOperCode   = []string{"cod operador", "matricula operador", "matr operador"}
	patOperName   = []string{"nome operador", "operador nome"}
	patOperAny    = []string{"operador"}
	patTrailer    = []string{"julieta", "semi reboque", "reboque", "carreta"}
	patNetWeight  = []string{"peso liquido", "liquido"}
	patGross      = []string{"peso bruto", "bruto"}
	patTare       = []string{"peso tara", "tara"}
	patFarmCode   = []string{"cod fazenda", "codigo fazenda"}
	patFarmName   = []string{"desc fazenda", "descricao fazenda", "nome fazenda", "fazenda"}
	patFront      = []string{"frente de servico", "frente servico", "frente"}
	patRelease    = []string{"cod liberacao", "nro liberacao", "liberacao"}
	patVariety    = []string{"variedade"}
	patLoadType   = []string{"tipo de carga", "tipo carga", "carga"}
	patAnalyzed   = []string{"analisado", "sondado", "analise"}
	patOwnership  = []string{"tipo de frota", "tipo frota", "tipo proprietario", "proprietario", "categoria frota"}
	patTripQty    = []string{"qtde viagens", "qtd viagens", "quantidade viagens", "viagens"}
	patDistance   = []string{"km percorrido", "distancia", "quilometragem"}
	patDeparture  = []string{"data hora saida", "data hora", "dt hr saida"}
	patDate       = []string{"data saida", "dt saida", "data"}
	patClock      = []string{"hora saida", "hr saida", "hora"}
	patScaleEntry = []string{"data entrada balanca", "dt entrada balanca", "data entrada"}

	patPotential = []string{"potencial de moagem", "moagem potencial", "potencial"}
	patRotation  = []string{"rotacao", "rpm"}

	patMeta    = []string{"meta dia", "meta"}
	patCD      = []string{"cd"}
	patTonHora = []string{"ton hora", "ton h", "toneladas hora"}
	patCmHora  = []string{"cm hora", "cm h"}
	patCam     = []string{"qtde cam", "caminhoes", "cam"}
	patTMD     = []string{"tmd"}
	patRaio    = []string{"raio medio", "raio"}
	patATR     = []string{"atr"}
	patVel     = []string{"vel media", "velocidade", "vel"}

	patSeasonWeight = []string{"acumulado safra", "peso acumulado", "acumulado", "toneladas", "peso"}
)

// Processor turns a raw cell matrix into normalized rows. serialOffset
// corrects Excel serial timestamps for the spreadsheet's timezone.
type Processor struct {
	serialOffset time.Duration
}

func NewProcessor(serialOffset time.Duration) *Processor {
	return &Processor{serialOffset: serialOffset}
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// NormalizeProduction reads the matrix from the detected header row and
// emits one ProductionRow per usable data row. Malformed cells default to
// zero values; rows without a resolvable trip identity are dropped.
func (p *Processor) NormalizeProduction(rows [][]string, headerRow int) []models.ProductionRow {
	if headerRow >= len(rows) {
		return nil
	}
	hm := NewHeaderMapper(rows[headerRow])

	tripCol, _ := hm.Find(patTrip...)
	fleetCol, _ := hm.Find(patFleet...)
	netCol, _ := hm.Find(patNetWeight...)
	grossCol, _ := hm.Find(patGross...)
	tareCol, _ := hm.Find(patTare...)
	farmCodeCol, _ := hm.Find(patFarmCode...)
	farmNameCol, _ := hm.Find(patFarmName...)
	frontCol, _ := hm.Find(patFront...)
	releaseCol, _ := hm.Find(patRelease...)
	varietyCol, _ := hm.Find(patVariety...)
	loadTypeCol, _ := hm.Find(patLoadType...)
	analyzedCol, _ := hm.Find(patAnalyzed...)
	ownershipCol, _ := hm.Find(patOwnership...)
	qtyCol, _ := hm.Find(patTripQty...)
	distCol, _ := hm.Find(patDistance...)

	departureCol, _ := hm.Find(patDeparture...)
	dateCol, _ := hm.Find(patDate...)
	clockCol, _ := hm.Find(patClock...)
	scaleEntryCol, _ := hm.Find(patScaleEntry...)

	equipmentCols := hm.FindAll(patEquipment...)
	operCodeCols := hm.FindAll(patOperCode...)
	operNameCols := hm.FindAll(patOperName...)
	if len(operCodeCols) == 0 {
		operCodeCols = hm.FindAll(patOperAny...)
	}
	trailerCols := hm.FindAll(patTrailer...)

	var out []models.ProductionRow
	for i := headerRow + 1; i < len(rows); i++ {
		raw := rows[i]
		if isEmptyRow(raw) {
			continue
		}

		row := models.ProductionRow{
			FleetID:       cellAt(raw, fleetCol),
			NetWeight:     ParseNumber(cellAt(raw, netCol)),
			GrossWeight:   ParseOptionalNumber(cellAt(raw, grossCol)),
			TareWeight:    ParseOptionalNumber(cellAt(raw, tareCol)),
			FarmCode:      cellAt(raw, farmCodeCol),
			FarmName:      cellAt(raw, farmNameCol),
			Front:         cellAt(raw, frontCol),
			ReleaseCode:   cellAt(raw, releaseCol),
			Variety:       cellAt(raw, varietyCol),
			LoadType:      cellAt(raw, loadTypeCol),
			Analyzed:      cellAt(raw, analyzedCol),
			OwnershipType: cellAt(raw, ownershipCol),
			TripQty:       ParseOptionalNumber(cellAt(raw, qtyCol)),
			DistanceKM:    ParseOptionalNumber(cellAt(raw, distCol)),
		}

		row.Timestamp = p.deriveTimestamp(raw, departureCol, dateCol, clockCol, scaleEntryCol)
		row.Equipment = collectCodes(raw, equipmentCols)
		row.Trailers = collectCodes(raw, trailerCols)
		row.Operators = collectOperators(raw, operCodeCols, operNameCols)

		row.TripID = p.resolveTripID(cellAt(raw, tripCol), &row)
		if row.TripID == "" {
			continue
		}

		out = append(out, row)
	}
	return out
}

// deriveTimestamp follows the priority chain: full departure datetime,
// then departure date + time, then scale-entry date + time, then
// time-only with the date left at zero.
func (p *Processor) deriveTimestamp(raw []string, departureCol, dateCol, clockCol, scaleEntryCol int) *time.Time {
	if departureCol >= 0 {
		if t, ok := ParseDate(cellAt(raw, departureCol), p.serialOffset); ok {
			return &t
		}
	}

	clock, hasClock := ParseClock(cellAt(raw, clockCol))

	if dateCol >= 0 {
		if d, ok := ParseDate(cellAt(raw, dateCol), p.serialOffset); ok {
			if hasClock {
				t := CombineDateAndClock(d, clock)
				return &t
			}
			return &d
		}
	}

	if scaleEntryCol >= 0 {
		if d, ok := ParseDate(cellAt(raw, scaleEntryCol), p.serialOffset); ok {
			t := d
			if hasClock {
				t = CombineDateAndClock(d, clock)
			}
			return &t
		}
	}

	if hasClock {
		t := CombineDateAndClock(time.Time{}, clock)
		return &t
	}
	return nil
}

// resolveTripID applies the synthesis rules: a missing or sentinel trip
// column is synthesized from date+time+fleet; rows still unresolved are
// kept only when they are a qty~=1 closing row, where the fleet id
// becomes the trip id. Everything else is dropped (empty return).
func (p *Processor) resolveTripID(rawTrip string, row *models.ProductionRow) string {
	tripID := rawTrip
	if IsSentinel(tripID) && !strings.Contains(strings.ToUpper(tripID), "TOTAL") {
		tripID = p.synthesizeTripID(row)
	}

	if tripID == "" || strings.Contains(strings.ToUpper(tripID), "TOTAL") {
		if row.IsClosing() && !IsSentinel(row.FleetID) {
			return row.FleetID
		}
		return ""
	}
	return tripID
}

func (p *Processor) synthesizeTripID(row *models.ProductionRow) string {
	if row.Timestamp == nil || IsSentinel(row.FleetID) {
		return ""
	}
	return row.Timestamp.Format("20060102") + row.Timestamp.Format("150405") + row.FleetID
}

// NormalizePotential reads potential / rotation readings.
func (p *Processor) NormalizePotential(rows [][]string, headerRow int) []models.PotentialRow {
	if headerRow >= len(rows) {
		return nil
	}
	hm := NewHeaderMapper(rows[headerRow])

	potentialCol, hasPotential := hm.Find(patPotential...)
	rotationCol, _ := hm.Find(patRotation...)
	frontCol, _ := hm.Find(patFront...)
	departureCol, _ := hm.Find(patDeparture...)
	dateCol, _ := hm.Find(patDate...)
	clockCol, _ := hm.Find(patClock...)

	if !hasPotential {
		return nil
	}

	var out []models.PotentialRow
	for i := headerRow + 1; i < len(rows); i++ {
		raw := rows[i]
		if isEmptyRow(raw) {
			continue
		}

		row := models.PotentialRow{
			Front:     cellAt(raw, frontCol),
			Potential: ParseNumber(cellAt(raw, potentialCol)),
			Rotation:  ParseNumber(cellAt(raw, rotationCol)),
		}
		row.Timestamp = p.deriveTimestamp(raw, departureCol, dateCol, clockCol, -1)

		if row.Potential == 0 && row.Rotation == 0 && row.Timestamp == nil {
			continue
		}
		out = append(out, row)
	}
	return out
}

// NormalizeMeta reads per-front planning rows.
func (p *Processor) NormalizeMeta(rows [][]string, headerRow int) []models.MetaRow {
	if headerRow >= len(rows) {
		return nil
	}
	hm := NewHeaderMapper(rows[headerRow])

	farmCodeCol, _ := hm.Find(patFarmCode...)
	farmNameCol, _ := hm.Find(patFarmName...)
	frontCol, _ := hm.Find(patFront...)
	metaCol, _ := hm.Find(patMeta...)
	cdCol, _ := hm.Find(patCD...)
	tonHoraCol, _ := hm.Find(patTonHora...)
	cmHoraCol, _ := hm.Find(patCmHora...)
	camCol, _ := hm.Find(patCam...)
	tmdCol, _ := hm.Find(patTMD...)
	raioCol, _ := hm.Find(patRaio...)
	atrCol, _ := hm.Find(patATR...)
	velCol, _ := hm.Find(patVel...)
	potentialCol, _ := hm.Find(patPotential...)

	var out []models.MetaRow
	for i := headerRow + 1; i < len(rows); i++ {
		raw := rows[i]
		if isEmptyRow(raw) {
			continue
		}

		row := models.MetaRow{
			FarmCode:  cellAt(raw, farmCodeCol),
			FarmName:  cellAt(raw, farmNameCol),
			Front:     cellAt(raw, frontCol),
			Meta:      ParseNumber(cellAt(raw, metaCol)),
			CD:        ParseNumber(cellAt(raw, cdCol)),
			TonHora:   ParseNumber(cellAt(raw, tonHoraCol)),
			CmHora:    ParseNumber(cellAt(raw, cmHoraCol)),
			Cam:       ParseNumber(cellAt(raw, camCol)),
			TMD:       ParseNumber(cellAt(raw, tmdCol)),
			Raio:      ParseNumber(cellAt(raw, raioCol)),
			ATR:       ParseNumber(cellAt(raw, atrCol)),
			Vel:       ParseNumber(cellAt(raw, velCol)),
			Potential: ParseNumber(cellAt(raw, potentialCol)),
		}

		if row.FarmCode == "" && row.Front == "" && row.Meta == 0 {
			continue
		}
		out = append(out, row)
	}
	return out
}

// NormalizeSeason reads the pre-aggregated season table.
func (p *Processor) NormalizeSeason(rows [][]string, headerRow int) []models.SeasonRow {
	if headerRow >= len(rows) {
		return nil
	}
	hm := NewHeaderMapper(rows[headerRow])

	weightCol, hasWeight := hm.Find(patSeasonWeight...)
	dateCol, _ := hm.Find(patDate...)
	if !hasWeight {
		return nil
	}

	var out []models.SeasonRow
	for i := headerRow + 1; i < len(rows); i++ {
		raw := rows[i]
		if isEmptyRow(raw) {
			continue
		}

		row := models.SeasonRow{Weight: ParseNumber(cellAt(raw, weightCol))}
		if d, ok := ParseDate(cellAt(raw, dateCol), p.serialOffset); ok {
			row.Timestamp = &d
		}
		if row.Weight == 0 {
			continue
		}
		out = append(out, row)
	}
	return out
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func collectCodes(raw []string, cols []int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, col := range cols {
		code := cellAt(raw, col)
		if IsSentinel(code) || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

func collectOperators(raw []string, codeCols, nameCols []int) []models.Operator {
	var out []models.Operator
	seen := make(map[string]bool)
	for i, col := range codeCols {
		code := cellAt(raw, col)
		if IsSentinel(code) || seen[code] {
			continue
		}
		seen[code] = true
		op := models.Operator{Code: code}
		if i < len(nameCols) {
			op.Name = cellAt(raw, nameCols[i])
		}
		out = append(out, op)
	}
	return out
}

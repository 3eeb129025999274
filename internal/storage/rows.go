package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"harvest-analytics-api/internal/models"
	"harvest-analytics-api/internal/util"
)

// InsertProductionRows stores normalized rows under an upload. Rows whose
// identity hash already exists are skipped, so re-ingesting overlapping
// exports never duplicates data. Returns the number actually inserted.
func (s *Store) InsertProductionRows(uploadID int64, rows []models.ProductionRow) (int, error) {
	inserted := 0
	for i := range rows {
		row := &rows[i]

		equipment, err := json.Marshal(row.Equipment)
		if err != nil {
			return inserted, err
		}
		operators, err := json.Marshal(row.Operators)
		if err != nil {
			return inserted, err
		}
		trailers, err := json.Marshal(row.Trailers)
		if err != nil {
			return inserted, err
		}

		hash := util.HashRow("production", row.Timestamp,
			"trip:"+row.TripID,
			"fleet:"+row.FleetID,
			fmt.Sprintf("net:%.3f", row.NetWeight),
			"release:"+row.ReleaseCode,
			"front:"+row.Front,
		)

		result, err := s.db.Exec(`
			INSERT OR IGNORE INTO production_rows
			(upload_id, trip_id, fleet_id, equipment, operators, trailers,
			 net_weight, gross_weight, tare_weight, farm_code, farm_name,
			 front, release_code, variety, load_type, analyzed,
			 ownership_type, trip_qty, distance_km, ts, row_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uploadID, row.TripID, row.FleetID, string(equipment), string(operators), string(trailers),
			row.NetWeight, row.GrossWeight, row.TareWeight, row.FarmCode, row.FarmName,
			row.Front, row.ReleaseCode, row.Variety, row.LoadType, row.Analyzed,
			row.OwnershipType, row.TripQty, row.DistanceKM, row.Timestamp, hash,
		)
		if err != nil {
			return inserted, err
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func (s *Store) InsertPotentialRows(uploadID int64, rows []models.PotentialRow) (int, error) {
	inserted := 0
	for i := range rows {
		row := &rows[i]

		hash := util.HashRow("potential", row.Timestamp,
			"front:"+row.Front,
			fmt.Sprintf("potential:%.3f", row.Potential),
			fmt.Sprintf("rotation:%.3f", row.Rotation),
		)

		result, err := s.db.Exec(`
			INSERT OR IGNORE INTO potential_rows (upload_id, front, potential, rotation, ts, row_hash)
			VALUES (?, ?, ?, ?, ?, ?)`,
			uploadID, row.Front, row.Potential, row.Rotation, row.Timestamp, hash,
		)
		if err != nil {
			return inserted, err
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func (s *Store) InsertMetaRows(uploadID int64, rows []models.MetaRow) (int, error) {
	inserted := 0
	for i := range rows {
		row := &rows[i]

		hash := util.HashRow("meta", nil,
			"farm:"+row.FarmCode,
			"front:"+row.Front,
			fmt.Sprintf("meta:%.3f", row.Meta),
			fmt.Sprintf("potential:%.3f", row.Potential),
		)

		result, err := s.db.Exec(`
			INSERT OR IGNORE INTO meta_rows
			(upload_id, farm_code, farm_name, front, meta, cd, ton_hora, cm_hora,
			 cam, tmd, raio, atr, vel, potential, row_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uploadID, row.FarmCode, row.FarmName, row.Front, row.Meta, row.CD, row.TonHora, row.CmHora,
			row.Cam, row.TMD, row.Raio, row.ATR, row.Vel, row.Potential, hash,
		)
		if err != nil {
			return inserted, err
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func (s *Store) InsertSeasonRows(uploadID int64, rows []models.SeasonRow) (int, error) {
	inserted := 0
	for i := range rows {
		row := &rows[i]

		hash := util.HashRow("season", row.Timestamp, fmt.Sprintf("weight:%.3f", row.Weight))

		result, err := s.db.Exec(`
			INSERT OR IGNORE INTO season_rows (upload_id, ts, weight, row_hash)
			VALUES (?, ?, ?, ?)`,
			uploadID, row.Timestamp, row.Weight, hash,
		)
		if err != nil {
			return inserted, err
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// LoadProductionRows reads the whole production table in insertion order;
// the analysis pipeline always recomputes from the full set.
func (s *Store) LoadProductionRows() ([]models.ProductionRow, error) {
	rows, err := s.db.Query(`
		SELECT trip_id, fleet_id, equipment, operators, trailers,
		       net_weight, gross_weight, tare_weight, farm_code, farm_name,
		       front, release_code, variety, load_type, analyzed,
		       ownership_type, trip_qty, distance_km, ts
		FROM production_rows ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ProductionRow{}
	for rows.Next() {
		var row models.ProductionRow
		var equipment, operators, trailers string
		var gross, tare, qty, dist sql.NullFloat64
		var farmCode, farmName, front, release, variety, loadType, analyzed, ownership sql.NullString
		var ts sql.NullTime

		err := rows.Scan(
			&row.TripID, &row.FleetID, &equipment, &operators, &trailers,
			&row.NetWeight, &gross, &tare, &farmCode, &farmName,
			&front, &release, &variety, &loadType, &analyzed,
			&ownership, &qty, &dist, &ts,
		)
		if err != nil {
			return nil, err
		}

		_ = json.Unmarshal([]byte(equipment), &row.Equipment)
		_ = json.Unmarshal([]byte(operators), &row.Operators)
		_ = json.Unmarshal([]byte(trailers), &row.Trailers)

		if gross.Valid {
			row.GrossWeight = &gross.Float64
		}
		if tare.Valid {
			row.TareWeight = &tare.Float64
		}
		if qty.Valid {
			row.TripQty = &qty.Float64
		}
		if dist.Valid {
			row.DistanceKM = &dist.Float64
		}
		row.FarmCode = farmCode.String
		row.FarmName = farmName.String
		row.Front = front.String
		row.ReleaseCode = release.String
		row.Variety = variety.String
		row.LoadType = loadType.String
		row.Analyzed = analyzed.String
		row.OwnershipType = ownership.String
		if ts.Valid {
			t := ts.Time
			row.Timestamp = &t
		}

		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) LoadPotentialRows() ([]models.PotentialRow, error) {
	rows, err := s.db.Query("SELECT front, potential, rotation, ts FROM potential_rows ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PotentialRow{}
	for rows.Next() {
		var row models.PotentialRow
		var front sql.NullString
		var ts sql.NullTime

		if err := rows.Scan(&front, &row.Potential, &row.Rotation, &ts); err != nil {
			return nil, err
		}
		row.Front = front.String
		if ts.Valid {
			t := ts.Time
			row.Timestamp = &t
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) LoadMetaRows() ([]models.MetaRow, error) {
	rows, err := s.db.Query(`
		SELECT farm_code, farm_name, front, meta, cd, ton_hora, cm_hora,
		       cam, tmd, raio, atr, vel, potential
		FROM meta_rows ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.MetaRow{}
	for rows.Next() {
		var row models.MetaRow
		var farmCode, farmName, front sql.NullString

		err := rows.Scan(
			&farmCode, &farmName, &front, &row.Meta, &row.CD, &row.TonHora, &row.CmHora,
			&row.Cam, &row.TMD, &row.Raio, &row.ATR, &row.Vel, &row.Potential,
		)
		if err != nil {
			return nil, err
		}
		row.FarmCode = farmCode.String
		row.FarmName = farmName.String
		row.Front = front.String
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) LoadSeasonRows() ([]models.SeasonRow, error) {
	rows, err := s.db.Query("SELECT ts, weight FROM season_rows ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SeasonRow{}
	for rows.Next() {
		var row models.SeasonRow
		var ts sql.NullTime

		if err := rows.Scan(&ts, &row.Weight); err != nil {
			return nil, err
		}
		if ts.Valid {
			t := ts.Time
			row.Timestamp = &t
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

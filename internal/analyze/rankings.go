package analyze

import (
	"sort"

	"harvest-analytics-api/internal/ingest"
	"harvest-analytics-api/internal/models"
)

const rankingSize = 5

type rankAcc struct {
	code   string
	name   string
	weight float64
	trips  map[string]bool
	fronts map[string]int
}

type rankTable struct {
	entries map[string]*rankAcc
	order   []string
}

func newRankTable() *rankTable {
	return &rankTable{entries: make(map[string]*rankAcc)}
}

func (t *rankTable) add(code, name, front, trip string, weight float64) {
	acc := t.entries[code]
	if acc == nil {
		acc = &rankAcc{
			code:   code,
			name:   name,
			trips:  make(map[string]bool),
			fronts: make(map[string]int),
		}
		t.entries[code] = acc
		t.order = append(t.order, code)
	}
	acc.weight += weight
	if trip != "" {
		acc.trips[trip] = true
	}
	if front != "" {
		acc.fronts[front]++
	}
	if acc.name == "" && name != "" {
		acc.name = name
	}
}

// top returns the n heaviest entries. Ties keep accumulation order; the
// original left tie order unresolved and downstream display relies only
// on the weight ordering.
func (t *rankTable) top(n int) []models.RankingEntry {
	codes := append([]string(nil), t.order...)
	sort.SliceStable(codes, func(i, j int) bool {
		return t.entries[codes[i]].weight > t.entries[codes[j]].weight
	})

	if len(codes) > n {
		codes = codes[:n]
	}

	out := []models.RankingEntry{}
	for _, code := range codes {
		acc := t.entries[code]
		out = append(out, models.RankingEntry{
			Code:   acc.code,
			Name:   acc.name,
			Weight: acc.weight,
			Trips:  len(acc.trips),
			Front:  dominantKey(acc.fronts),
		})
	}
	return out
}

func dominantKey(counts map[string]int) string {
	best := ""
	bestCount := 0
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			best = k
			bestCount = counts[k]
		}
	}
	return best
}

// BuildRankings computes the top-5 tables. When several codes share one
// weight value on a row, the weight is apportioned evenly across the
// valid codes so the row is never counted twice.
func BuildRankings(rows []models.ProductionRow) models.Rankings {
	ownFleets := newRankTable()
	thirdFleets := newRankTable()
	ownEquipment := newRankTable()
	thirdEquipment := newRankTable()
	trailers := newRankTable()
	operators := newRankTable()

	for i := range rows {
		row := &rows[i]
		if row.NetWeight == 0 || row.IsTotalRow() || row.TripID == "" {
			continue
		}
		trip := tripKey(row)
		own := IsOwn(row)

		if !ingest.IsSentinel(row.FleetID) {
			if own {
				ownFleets.add(row.FleetID, "", row.Front, trip, row.NetWeight)
			} else {
				thirdFleets.add(row.FleetID, "", row.Front, trip, row.NetWeight)
			}
		}

		if n := len(row.Equipment); n > 0 {
			share := row.NetWeight / float64(n)
			for _, code := range row.Equipment {
				if isOwnCode(code, row) {
					ownEquipment.add(code, "", row.Front, trip, share)
				} else {
					thirdEquipment.add(code, "", row.Front, trip, share)
				}
			}
		}

		if n := len(row.Trailers); n > 0 {
			share := row.NetWeight / float64(n)
			for _, code := range row.Trailers {
				trailers.add(code, "", row.Front, trip, share)
			}
		}

		// Operator ranking covers own-harvest rows only.
		if own {
			if n := len(row.Operators); n > 0 {
				share := row.NetWeight / float64(n)
				for _, op := range row.Operators {
					operators.add(op.Code, op.Name, row.Front, trip, share)
				}
			}
		}
	}

	return models.Rankings{
		OwnFleets:           ownFleets.top(rankingSize),
		ThirdPartyFleets:    thirdFleets.top(rankingSize),
		OwnEquipment:        ownEquipment.top(rankingSize),
		ThirdPartyEquipment: thirdEquipment.top(rankingSize),
		Trailers:            trailers.top(rankingSize),
		Operators:           operators.top(rankingSize),
	}
}

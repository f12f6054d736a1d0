package ingest

import (
	"strings"

	lev "github.com/agnivade/levenshtein"

	"furnacecheck/config"
)

// columnMap holds the resolved indices of the three sensor columns.
type columnMap struct {
	timeIdx int
	tempIdx int
	gasIdx  int
}

// positionalColumns is the legacy schema: time, temperature, gas in that
// order.
func positionalColumns() columnMap {
	return columnMap{timeIdx: 0, tempIdx: 1, gasIdx: 2}
}

// discoverColumns resolves column indices by fuzzy keyword match against the
// header row. Logger firmware revisions rename and misspell headers
// ("Temprature", "gas meter"), so each cell is scored against the keyword set
// by edit distance and the closest cell within the configured distance wins.
// Columns that match nothing keep their positional default.
func discoverColumns(header []string, cfg config.IngestConfig) columnMap {
	cols := positionalColumns()
	if idx, ok := bestMatch(header, cfg.TimeKeywords, cfg.MaxHeaderDistance); ok {
		cols.timeIdx = idx
	}
	if idx, ok := bestMatch(header, cfg.TemperatureKeywords, cfg.MaxHeaderDistance); ok {
		cols.tempIdx = idx
	}
	if idx, ok := bestMatch(header, cfg.GasKeywords, cfg.MaxHeaderDistance); ok {
		cols.gasIdx = idx
	}
	return cols
}

// bestMatch returns the header index with the smallest edit distance to any
// keyword, provided that distance is within maxDist. Substring containment
// counts as distance zero so "gas_reading_nm3" matches the "gas" keyword.
func bestMatch(header []string, keywords []string, maxDist int) (int, bool) {
	bestIdx, bestDist := -1, maxDist+1
	for i, cell := range header {
		cell = normalizeHeaderCell(cell)
		if cell == "" {
			continue
		}
		for _, kw := range keywords {
			kw = normalizeHeaderCell(kw)
			d := lev.ComputeDistance(cell, kw)
			if strings.Contains(cell, kw) {
				d = 0
			}
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}
	}
	return bestIdx, bestIdx >= 0
}

func normalizeHeaderCell(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// Package match implements the date join between the production ledger and
// the sensor series: the sorted intersection of calendar dates present on
// both sides, plus the per-side cardinalities needed to diagnose an empty
// join.
package match

import (
	"sort"

	"furnacecheck/record"
)

// Match is the outcome of the date join. ProductionDays and SensorDays are
// the distinct-date counts on each side; they are part of the contract so an
// empty intersection can be reported as a format problem vs. a data gap.
type Match struct {
	Common         []record.Date
	ProductionDays int
	SensorDays     int
}

// Dates intersects the distinct dates of the production ledger with the
// distinct calendar dates of the sensor series. The result is ascending and
// deterministic; neither input needs to be sorted.
func Dates(prod []record.ProductionRecord, samples []record.SensorSample) Match {
	prodDates := make(map[record.Date]struct{}, len(prod))
	for _, p := range prod {
		prodDates[p.Date] = struct{}{}
	}
	sensorDates := make(map[record.Date]struct{})
	for _, s := range samples {
		sensorDates[record.DateOf(s.Time)] = struct{}{}
	}

	common := make([]record.Date, 0, len(prodDates))
	for d := range prodDates {
		if _, ok := sensorDates[d]; ok {
			common = append(common, d)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })

	return Match{
		Common:         common,
		ProductionDays: len(prodDates),
		SensorDays:     len(sensorDates),
	}
}

// Package verify is the engine entry point: it joins the production ledger
// to the sensor series by date, detects each date's operating cycle, scores
// gas consumption per ton against the target, and assembles the result table
// plus run diagnostics. Per-date failures are diagnostics, never run errors.
package verify

import (
	"errors"
	"time"

	"furnacecheck/cycle"
	"furnacecheck/match"
	"furnacecheck/record"
)

// Verdict classifies a cycle against the target unit cost.
type Verdict string

const (
	VerdictPass Verdict = "Pass"
	VerdictFail Verdict = "Fail"
)

// Run-level hard failures. Everything per-date degrades to diagnostics
// instead.
var (
	ErrNoSensorData     = errors.New("no sensor data")
	ErrNoProductionData = errors.New("no production data")
)

// Per-date data-integrity rejections surfaced by the evaluator.
var (
	ErrNonPositiveGas    = errors.New("non-positive gas delta")
	ErrNonPositiveCharge = errors.New("non-positive charge weight")
)

// Params configures one engine run. The target is injected here rather than
// read from anywhere global, so multiple configurations can run side by side.
type Params struct {
	Detector       cycle.Config
	TargetUnitCost float64
}

// Result is the verification outcome for one detected cycle.
type Result struct {
	Date         record.Date
	CycleStart   time.Time
	CycleEnd     time.Time
	StartReading float64
	EndReading   float64
	GasUsed      float64
	ChargeKG     float64
	UnitCost     float64
	Target       float64
	Verdict      Verdict
}

// Rejection records why a matched date produced no result.
type Rejection struct {
	Date   record.Date
	Reason string
}

// Diagnostics describes the whole run: the join cardinalities and every
// per-date rejection. It is populated even (especially) when Results is
// empty, so an operator can tell a format problem from a data gap.
type Diagnostics struct {
	ProductionDays   int
	SensorDays       int
	MatchedDays      int
	DuplicateSamples int
	Rejections       []Rejection
}

// Report is the engine's complete output: the ordered result table, the
// merged sensor series passed through for charting, and the diagnostics.
type Report struct {
	Results []Result
	Series  []record.SensorSample
	Diagnostics
}

// Evaluate scores one detected cycle against its date's production record.
// The meter is cumulative, so a non-positive delta means bad data (rollover
// or mis-ordered samples) and is rejected rather than clamped.
func Evaluate(c cycle.Cycle, prod record.ProductionRecord, target float64) (Result, error) {
	gasUsed := c.EndGas - c.StartGas
	if gasUsed <= 0 {
		return Result{}, ErrNonPositiveGas
	}
	if !prod.Valid() {
		return Result{}, ErrNonPositiveCharge
	}
	unitCost := gasUsed / (prod.ChargeKG / 1000)

	verdict := VerdictFail
	if unitCost <= target {
		verdict = VerdictPass
	}
	return Result{
		Date:         c.Anchor,
		CycleStart:   c.Start.Time,
		CycleEnd:     c.End.Time,
		StartReading: c.StartGas,
		EndReading:   c.EndGas,
		GasUsed:      gasUsed,
		ChargeKG:     prod.ChargeKG,
		UnitCost:     unitCost,
		Target:       target,
		Verdict:      verdict,
	}, nil
}

// Run executes one full verification pass. Inputs need not be sorted; the
// series is copied and sorted internally so repeated runs over the same data
// are bit-for-bit identical.
func Run(p Params, prod []record.ProductionRecord, samples []record.SensorSample) (Report, error) {
	if len(samples) == 0 {
		return Report{}, ErrNoSensorData
	}
	if len(prod) == 0 {
		return Report{}, ErrNoProductionData
	}

	series := make([]record.SensorSample, len(samples))
	copy(series, samples)
	record.SortSamples(series)

	// First record wins when the ledger repeats a date.
	byDate := make(map[record.Date]record.ProductionRecord, len(prod))
	for _, r := range prod {
		if _, ok := byDate[r.Date]; !ok {
			byDate[r.Date] = r
		}
	}

	m := match.Dates(prod, series)
	rep := Report{
		Series: series,
		Diagnostics: Diagnostics{
			ProductionDays: m.ProductionDays,
			SensorDays:     m.SensorDays,
			MatchedDays:    len(m.Common),
		},
	}

	for _, date := range m.Common {
		c, err := cycle.Detect(p.Detector, series, date)
		if err != nil {
			rep.Rejections = append(rep.Rejections, Rejection{Date: date, Reason: err.Error()})
			continue
		}
		res, err := Evaluate(c, byDate[date], p.TargetUnitCost)
		if err != nil {
			rep.Rejections = append(rep.Rejections, Rejection{Date: date, Reason: err.Error()})
			continue
		}
		rep.Results = append(rep.Results, res)
	}
	return rep, nil
}

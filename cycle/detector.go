// Package cycle recovers the physical heat-treatment cycle of a furnace from
// its temperature curve. A cycle is a start point (furnace still cold), a
// sustained high-temperature holding plateau, and an end point (furnace
// cooling back down); the detector locates these boundaries inside a lookahead
// window anchored to a production date, since a cycle routinely crosses
// midnight.
package cycle

import (
	"errors"
	"time"

	"furnacecheck/record"
)

// Policy selects how cycle boundaries are derived for an anchor date.
type Policy string

const (
	// PolicySimple slices the anchor calendar day and treats its first and
	// last samples as the cycle. Cheap, but it conflates calendar day with
	// operating cycle and misattributes gas for cycles that cross midnight.
	// Kept as a selectable legacy mode, not silently fixed.
	PolicySimple Policy = "simple"
	// PolicyPrecise detects the start threshold crossing, the sustained
	// holding plateau, and the end threshold crossing from the temperature
	// curve itself.
	PolicyPrecise Policy = "precise"
)

// Detection failure reasons. Each is per-date and non-fatal to a run; callers
// record the reason and move on to the next date.
var (
	ErrNoSamples = errors.New("no usable samples in window")
	ErrNoStart   = errors.New("no start condition")
	ErrNoHolding = errors.New("no sustained holding interval")
	ErrNoEnd     = errors.New("no end condition (incomplete cycle)")
)

// Config carries the detection thresholds. The values come from the YAML
// config, but the struct is defined here so the algorithm can be unit-tested
// without importing the config package.
type Config struct {
	Policy Policy
	// StartThreshold is the temperature at or below which the furnace is
	// considered not yet started; the first such sample in the window is the
	// cycle start. Inclusive.
	StartThreshold float64
	// HoldingLow/HoldingHigh bound the holding plateau band. Inclusive on
	// both ends so a sensor reporting exactly the band edge does not flap.
	HoldingLow  float64
	HoldingHigh float64
	// MinHolding is the minimum wall-clock span an in-band run must cover to
	// count as the holding plateau.
	MinHolding time.Duration
	// EndThreshold is the temperature at or below which, after the plateau,
	// the cycle is considered finished. Inclusive.
	EndThreshold float64
	// Lookahead bounds the window scanned from anchor midnight. Two calendar
	// days tolerates cycles crossing midnight.
	Lookahead time.Duration
}

// Cycle is one detected heat-treatment run. StartGas and EndGas are the meter
// readings used for gas accounting; under the simple policy they are the
// min/max over the day slice rather than the boundary samples' readings.
type Cycle struct {
	Anchor     record.Date
	Start      record.SensorSample
	HoldingEnd record.SensorSample
	End        record.SensorSample
	StartGas   float64
	EndGas     float64
}

// Detect locates the cycle for anchor within samples. Samples must be sorted
// by timestamp ascending; rows missing temperature or gas are skipped before
// classification rather than treated as a special state.
func Detect(cfg Config, samples []record.SensorSample, anchor record.Date) (Cycle, error) {
	if cfg.Policy == PolicySimple {
		return detectSimple(samples, anchor)
	}
	return detectPrecise(cfg, samples, anchor)
}

// detectSimple reproduces the legacy calendar-day behavior: the cycle spans
// the first to last gas-bearing sample of the anchor day, and gas usage is
// the min/max spread of the meter over that slice.
func detectSimple(samples []record.SensorSample, anchor record.Date) (Cycle, error) {
	var day []record.SensorSample
	for _, s := range samples {
		if record.DateOf(s.Time) != anchor || !s.HasGas {
			continue
		}
		day = append(day, s)
	}
	if len(day) == 0 {
		return Cycle{}, ErrNoSamples
	}

	minGas, maxGas := day[0].GasReading, day[0].GasReading
	for _, s := range day[1:] {
		if s.GasReading < minGas {
			minGas = s.GasReading
		}
		if s.GasReading > maxGas {
			maxGas = s.GasReading
		}
	}
	return Cycle{
		Anchor:     anchor,
		Start:      day[0],
		HoldingEnd: day[len(day)-1],
		End:        day[len(day)-1],
		StartGas:   minGas,
		EndGas:     maxGas,
	}, nil
}

// detectPrecise walks the lookahead window in three phases: start crossing,
// holding plateau, end crossing.
func detectPrecise(cfg Config, samples []record.SensorSample, anchor record.Date) (Cycle, error) {
	window := sliceWindow(cfg, samples, anchor)
	if len(window) == 0 {
		return Cycle{}, ErrNoSamples
	}

	startIdx := -1
	for i, s := range window {
		if s.Temperature <= cfg.StartThreshold {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return Cycle{}, ErrNoStart
	}

	holdEndIdx, err := findHoldingRun(cfg, window, startIdx+1)
	if err != nil {
		return Cycle{}, err
	}

	endIdx := -1
	for i := holdEndIdx + 1; i < len(window); i++ {
		if window[i].Temperature <= cfg.EndThreshold {
			endIdx = i
			break
		}
	}
	if endIdx < 0 {
		return Cycle{}, ErrNoEnd
	}

	return Cycle{
		Anchor:     anchor,
		Start:      window[startIdx],
		HoldingEnd: window[holdEndIdx],
		End:        window[endIdx],
		StartGas:   window[startIdx].GasReading,
		EndGas:     window[endIdx].GasReading,
	}, nil
}

// sliceWindow returns the complete samples falling in
// [anchor 00:00, anchor 00:00 + lookahead), in their existing order.
func sliceWindow(cfg Config, samples []record.SensorSample, anchor record.Date) []record.SensorSample {
	if len(samples) == 0 {
		return nil
	}
	// Window bounds live in the series' own location so midnight means the
	// plant's midnight, not UTC's.
	from := anchor.Time(samples[0].Time.Location())
	to := from.Add(cfg.Lookahead)

	var out []record.SensorSample
	for _, s := range samples {
		if !s.Complete() {
			continue
		}
		if s.Time.Before(from) || !s.Time.Before(to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// findHoldingRun partitions window[from:] into maximal runs of identical
// in-band/out-of-band classification and returns the index of the last sample
// of the first in-band run whose wall-clock span meets the minimum holding
// duration. A cycle has exactly one holding segment, so later qualifying runs
// are ignored.
func findHoldingRun(cfg Config, window []record.SensorSample, from int) (int, error) {
	i := from
	for i < len(window) {
		inBand := window[i].Temperature >= cfg.HoldingLow && window[i].Temperature <= cfg.HoldingHigh
		j := i
		for j+1 < len(window) {
			next := window[j+1].Temperature >= cfg.HoldingLow && window[j+1].Temperature <= cfg.HoldingHigh
			if next != inBand {
				break
			}
			j++
		}
		if inBand {
			span := window[j].Time.Sub(window[i].Time)
			if span >= cfg.MinHolding {
				return j, nil
			}
		}
		i = j + 1
	}
	return 0, ErrNoHolding
}

// Package record defines the canonical data types shared across the
// verification pipeline: production ledger entries, furnace sensor samples,
// calendar-date keys for the date join, and hashing for duplicate suppression.
package record

import (
	"encoding/binary"
	"math"
	"sort"
	"time"

	"github.com/zeebo/xxh3"
)

// Date is a calendar date without a time component. It is the join key
// between the production ledger and the sensor series, and is comparable so
// it can be used directly as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight at the start of the date in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d precedes other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) String() string {
	return d.Time(time.UTC).Format("2006-01-02")
}

// ProductionRecord is one row of the daily production ledger: the material
// charged into the furnace on a given day, in kilograms.
type ProductionRecord struct {
	Date     Date
	ChargeKG float64
}

// Valid reports whether the record can participate in analysis. A zero or
// negative charge weight marks a ledger row that was present but unusable.
func (p ProductionRecord) Valid() bool {
	return p.ChargeKG > 0
}

// SensorSample is one row of the furnace sensor log. Temperature and gas
// reading are each optional because logger exports routinely contain blank or
// unparseable cells; the HasX flags distinguish a real zero from an absent
// value. GasReading is a cumulative meter value, never a rate.
type SensorSample struct {
	Time           time.Time
	Temperature    float64
	HasTemperature bool
	GasReading     float64
	HasGas         bool
}

// Complete reports whether both measured fields are present.
func (s SensorSample) Complete() bool {
	return s.HasTemperature && s.HasGas
}

// Hash returns a stable content hash of the sample, used to suppress
// duplicate rows when the same logging interval appears in more than one
// uploaded file.
func (s SensorSample) Hash() uint64 {
	var buf [26]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(s.Time.UnixNano()))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(s.Temperature))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(s.GasReading))
	if s.HasTemperature {
		buf[24] = 1
	}
	if s.HasGas {
		buf[25] = 1
	}
	return xxh3.Hash(buf[:])
}

// SortSamples orders samples by timestamp ascending. The sort is stable so
// that duplicate timestamps keep their ingest order.
func SortSamples(samples []SensorSample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Time.Before(samples[j].Time)
	})
}

// SortRecords orders production records by date ascending.
func SortRecords(records []ProductionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

// Package ingest turns raw uploaded files into the canonical in-memory
// records the engine consumes. It is deliberately forgiving: rows with
// unparseable timestamps are dropped and counted, unparseable measurements
// become absent fields, and non-UTF-8 exports fall back to EUC-KR decoding.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"furnacecheck/config"
	"furnacecheck/record"
)

// timeLayouts are the accepted timestamp spellings, tried in order. Logger
// exports disagree on separators and on whether seconds are present.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02T15:04:05",
}

// dateLayouts are the accepted ledger date spellings.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006.01.02",
}

// SensorLoad is the outcome of loading one sensor file.
type SensorLoad struct {
	Samples []record.SensorSample
	Dropped int
}

// LoadSensorCSV reads one sensor log export. The first row is always treated
// as a header; columns default to the positional schema (time, temperature,
// gas) unless header discovery is enabled.
func LoadSensorCSV(path string, cfg config.IngestConfig) (SensorLoad, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SensorLoad{}, fmt.Errorf("ingest: open sensor csv: %w", err)
	}
	return parseSensorCSV(data, cfg)
}

func parseSensorCSV(data []byte, cfg config.IngestConfig) (SensorLoad, error) {
	data, err := decodeFallback(data)
	if err != nil {
		return SensorLoad{}, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return SensorLoad{}, fmt.Errorf("ingest: sensor csv is empty")
	}
	if err != nil {
		return SensorLoad{}, fmt.Errorf("ingest: read sensor header: %w", err)
	}

	cols := positionalColumns()
	if cfg.HeaderDiscovery {
		cols = discoverColumns(header, cfg)
	}

	var out SensorLoad
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			out.Dropped++
			continue
		}
		need := cols.timeIdx
		if cols.tempIdx > need {
			need = cols.tempIdx
		}
		if cols.gasIdx > need {
			need = cols.gasIdx
		}
		if len(row) <= need {
			out.Dropped++
			continue
		}
		ts, ok := parseTime(row[cols.timeIdx], timeLayouts)
		if !ok {
			out.Dropped++
			continue
		}
		s := record.SensorSample{Time: ts}
		if v, ok := parseNumber(row[cols.tempIdx]); ok {
			s.Temperature = v
			s.HasTemperature = true
		}
		if v, ok := parseNumber(row[cols.gasIdx]); ok {
			s.GasReading = v
			s.HasGas = true
		}
		out.Samples = append(out.Samples, s)
	}
	return out, nil
}

// ProductionLoad is the outcome of loading the production ledger.
type ProductionLoad struct {
	Records []record.ProductionRecord
	Dropped int
}

// LoadProductionCSV reads the daily production ledger: first column date,
// second column charge weight in kilograms. Rows with unparseable dates are
// dropped; an unparseable weight keeps the row so the engine can reject the
// date with a specific reason instead of silently losing it.
func LoadProductionCSV(path string) (ProductionLoad, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProductionLoad{}, fmt.Errorf("ingest: open production csv: %w", err)
	}
	return parseProductionCSV(data)
}

func parseProductionCSV(data []byte) (ProductionLoad, error) {
	data, err := decodeFallback(data)
	if err != nil {
		return ProductionLoad{}, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	if _, err := r.Read(); err == io.EOF {
		return ProductionLoad{}, fmt.Errorf("ingest: production csv is empty")
	} else if err != nil {
		return ProductionLoad{}, fmt.Errorf("ingest: read production header: %w", err)
	}

	var out ProductionLoad
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(row) < 2 {
			out.Dropped++
			continue
		}
		ts, ok := parseTime(row[0], dateLayouts)
		if !ok {
			out.Dropped++
			continue
		}
		rec := record.ProductionRecord{Date: record.DateOf(ts)}
		if v, ok := parseNumber(row[1]); ok {
			rec.ChargeKG = v
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// decodeFallback mirrors the legacy tool's read path: try UTF-8 first, then
// EUC-KR for exports produced by Korean-locale logging PCs.
func decodeFallback(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("ingest: decode euc-kr: %w", err)
	}
	return decoded, nil
}

func parseTime(cell string, layouts []string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, cell, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseNumber parses a numeric cell, tolerating thousands separators.
func parseNumber(cell string) (float64, bool) {
	cell = strings.TrimSpace(strings.ReplaceAll(cell, ",", ""))
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

package ingest

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"furnacecheck/record"
	"furnacecheck/sqliteutil"
)

// LoadHistorian reads sensor samples from a furnace historian SQLite export.
// The expected schema is (ts INTEGER unix seconds, temperature REAL NULL,
// gas_reading REAL NULL); NULL measurements become absent fields, the same as
// blank CSV cells.
func LoadHistorian(path, table string) (SensorLoad, error) {
	if !validIdent(table) {
		return SensorLoad{}, fmt.Errorf("ingest: invalid historian table name %q", table)
	}
	if err := sqliteutil.Check(path, 2*time.Second); err != nil {
		return SensorLoad{}, fmt.Errorf("ingest: historian failed integrity check: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return SensorLoad{}, fmt.Errorf("ingest: open historian: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(`select ts, temperature, gas_reading from %s order by ts`, table))
	if err != nil {
		return SensorLoad{}, fmt.Errorf("ingest: query historian: %w", err)
	}
	defer rows.Close()

	var out SensorLoad
	for rows.Next() {
		var ts int64
		var temp, gas sql.NullFloat64
		if err := rows.Scan(&ts, &temp, &gas); err != nil {
			out.Dropped++
			continue
		}
		s := record.SensorSample{Time: time.Unix(ts, 0)}
		if temp.Valid {
			s.Temperature = temp.Float64
			s.HasTemperature = true
		}
		if gas.Valid {
			s.GasReading = gas.Float64
			s.HasGas = true
		}
		out.Samples = append(out.Samples, s)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("ingest: scan historian: %w", err)
	}
	return out, nil
}

// validIdent accepts plain SQL identifiers only; table names come from config
// and are interpolated into the query text.
func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

package report

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"furnacecheck/verify"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonReport is the wire shape of an engine run. The sensor series is not
// exported here; charting consumers receive it in memory.
type jsonReport struct {
	Results     []jsonResult    `json:"results"`
	Diagnostics jsonDiagnostics `json:"diagnostics"`
}

type jsonResult struct {
	Date         string  `json:"date"`
	CycleStart   string  `json:"cycle_start"`
	CycleEnd     string  `json:"cycle_end"`
	StartReading float64 `json:"start_meter_reading"`
	EndReading   float64 `json:"end_meter_reading"`
	GasUsed      float64 `json:"gas_used_nm3"`
	ChargeKG     float64 `json:"charge_weight_kg"`
	UnitCost     float64 `json:"unit_cost"`
	Target       float64 `json:"target_unit_cost"`
	Verdict      string  `json:"verdict"`
}

type jsonDiagnostics struct {
	ProductionDays   int             `json:"production_days"`
	SensorDays       int             `json:"sensor_days"`
	MatchedDays      int             `json:"matched_days"`
	DuplicateSamples int             `json:"duplicate_samples"`
	Rejections       []jsonRejection `json:"rejections"`
}

type jsonRejection struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// JSON marshals the run for downstream tooling.
func JSON(rep verify.Report) ([]byte, error) {
	out := jsonReport{
		Results: make([]jsonResult, 0, len(rep.Results)),
		Diagnostics: jsonDiagnostics{
			ProductionDays:   rep.ProductionDays,
			SensorDays:       rep.SensorDays,
			MatchedDays:      rep.MatchedDays,
			DuplicateSamples: rep.DuplicateSamples,
			Rejections:       make([]jsonRejection, 0, len(rep.Rejections)),
		},
	}
	for _, r := range rep.Results {
		out.Results = append(out.Results, jsonResult{
			Date:         r.Date.String(),
			CycleStart:   r.CycleStart.Format(timeLayout),
			CycleEnd:     r.CycleEnd.Format(timeLayout),
			StartReading: r.StartReading,
			EndReading:   r.EndReading,
			GasUsed:      r.GasUsed,
			ChargeKG:     r.ChargeKG,
			UnitCost:     r.UnitCost,
			Target:       r.Target,
			Verdict:      string(r.Verdict),
		})
	}
	for _, rj := range rep.Rejections {
		out.Diagnostics.Rejections = append(out.Diagnostics.Rejections, jsonRejection{
			Date:   rj.Date.String(),
			Reason: rj.Reason,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// WriteJSON writes the JSON export, creating the target directory if needed.
func WriteJSON(path string, rep verify.Report) error {
	data, err := JSON(rep)
	if err != nil {
		return fmt.Errorf("report: marshal json: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: mkdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: write json: %w", err)
	}
	return nil
}

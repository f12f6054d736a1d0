// Command furnacecheck runs one batch verification pass: it loads the
// production ledger and one or more furnace sensor exports, detects each
// matched date's operating cycle, scores gas per ton against the target, and
// writes the report. On a terminal it can also show the interactive result
// table.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"furnacecheck/config"
	"furnacecheck/cycle"
	"furnacecheck/dedup"
	"furnacecheck/ingest"
	"furnacecheck/record"
	"furnacecheck/report"
	"furnacecheck/ui"
	"furnacecheck/verify"
)

type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// Purpose: Decide whether the interactive table can be offered.
// Key aspects: Uses term.IsTerminal on stdout fd.
// Upstream: main.
// Downstream: term.IsTerminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func main() {
	var sensors stringList
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	production := flag.String("production", "", "production ledger CSV (date, charge weight kg)")
	historian := flag.String("historian", "", "optional historian SQLite export")
	policy := flag.String("policy", "", "override detection policy (simple|precise)")
	target := flag.Float64("target", 0, "override target unit cost (Nm3/ton)")
	reportOut := flag.String("report", "", "override report output template")
	jsonOut := flag.String("json", "", "override JSON output template")
	noUI := flag.Bool("no-ui", false, "skip the interactive result table")
	flag.Var(&sensors, "sensor", "sensor log CSV (repeatable)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *policy != "" {
		switch cycle.Policy(*policy) {
		case cycle.PolicySimple, cycle.PolicyPrecise:
			cfg.Engine.Policy = *policy
		default:
			log.Fatalf("invalid -policy %q", *policy)
		}
	}
	if *target > 0 {
		cfg.Engine.TargetUnitCost = *target
	}
	if *reportOut != "" {
		cfg.Report.ReportTemplate = *reportOut
	}
	if *jsonOut != "" {
		cfg.Report.JSONTemplate = *jsonOut
	}
	cfg.Print()

	if *production == "" {
		log.Fatalf("missing -production ledger file")
	}
	if len(sensors) == 0 && *historian == "" {
		log.Fatalf("need at least one -sensor file or a -historian export")
	}

	prodLoad, err := ingest.LoadProductionCSV(*production)
	if err != nil {
		log.Fatalf("load production ledger: %v", err)
	}
	if prodLoad.Dropped > 0 {
		log.Printf("production ledger: dropped %d unparseable rows", prodLoad.Dropped)
	}

	var batches [][]record.SensorSample
	droppedRows := 0
	for _, path := range sensors {
		load, err := ingest.LoadSensorCSV(path, cfg.Ingest)
		if err != nil {
			log.Fatalf("load sensor file %s: %v", path, err)
		}
		droppedRows += load.Dropped
		batches = append(batches, load.Samples)
	}
	if *historian != "" {
		load, err := ingest.LoadHistorian(*historian, cfg.Ingest.HistorianTable)
		if err != nil {
			log.Fatalf("load historian %s: %v", *historian, err)
		}
		droppedRows += load.Dropped
		batches = append(batches, load.Samples)
	}
	if droppedRows > 0 {
		log.Printf("sensor ingest: dropped %d unparseable rows", droppedRows)
	}

	merged := dedup.Merge(batches...)
	if merged.Duplicates > 0 {
		log.Printf("sensor ingest: suppressed %d duplicate rows across files", merged.Duplicates)
	}

	params := verify.Params{
		Detector:       cfg.Engine.Detector(),
		TargetUnitCost: cfg.Engine.TargetUnitCost,
	}
	rep, err := verify.Run(params, prodLoad.Records, merged.Samples)
	if err != nil {
		log.Fatalf("verification run: %v", err)
	}
	rep.DuplicateSamples = merged.Duplicates

	log.Printf("matched %d days (production: %d, sensor: %d), %d cycles verified, %d dates rejected",
		rep.MatchedDays, rep.ProductionDays, rep.SensorDays, len(rep.Results), len(rep.Rejections))
	for _, rj := range rep.Rejections {
		log.Printf("rejected %s: %s", rj.Date, rj.Reason)
	}

	now := time.Now()
	reportPath := report.ExpandTemplate(cfg.Report.ReportTemplate, now)
	if err := report.WriteText(reportPath, rep); err != nil {
		log.Fatalf("write report: %v", err)
	}
	jsonPath := report.ExpandTemplate(cfg.Report.JSONTemplate, now)
	if err := report.WriteJSON(jsonPath, rep); err != nil {
		log.Fatalf("write json: %v", err)
	}
	log.Printf("wrote %s and %s", reportPath, jsonPath)

	if !*noUI && cfg.UI.Enabled && isTerminal() && len(rep.Results) > 0 {
		if err := ui.ShowResults(rep); err != nil {
			log.Printf("ui: %v", err)
		}
		return
	}
	fmt.Print(report.Text(rep))
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"furnacecheck/cycle"
)

// Config represents the complete verification tool configuration
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Ingest IngestConfig `yaml:"ingest"`
	Report ReportConfig `yaml:"report"`
	UI     UIConfig     `yaml:"ui"`
}

// EngineConfig contains the detection thresholds and the efficiency target.
// Defaults match the legacy tool's hardcoded constants.
type EngineConfig struct {
	Policy          string  `yaml:"policy"` // "simple" or "precise"
	StartThreshold  float64 `yaml:"start_threshold"`
	HoldingLow      float64 `yaml:"holding_low"`
	HoldingHigh     float64 `yaml:"holding_high"`
	MinHoldingHours float64 `yaml:"min_holding_hours"`
	EndThreshold    float64 `yaml:"end_threshold"`
	TargetUnitCost  float64 `yaml:"target_unit_cost"`
	LookaheadHours  float64 `yaml:"lookahead_hours"`
}

// IngestConfig contains settings for the CSV and historian loaders.
type IngestConfig struct {
	// HeaderDiscovery enables keyword-based column discovery instead of the
	// fixed positional schema (time, temperature, gas).
	HeaderDiscovery bool `yaml:"header_discovery"`
	// MaxHeaderDistance is the maximum edit distance for a header cell to
	// match a column keyword. Logger firmware revisions misspell headers.
	MaxHeaderDistance int `yaml:"max_header_distance"`
	// Column keyword sets, tried in order against header cells.
	TimeKeywords        []string `yaml:"time_keywords"`
	TemperatureKeywords []string `yaml:"temperature_keywords"`
	GasKeywords         []string `yaml:"gas_keywords"`
	// HistorianTable names the sample table inside a historian SQLite export.
	HistorianTable string `yaml:"historian_table"`
}

// ReportConfig contains output settings for the text report and JSON export.
// Templates may contain {DATE}, expanded to the run date.
type ReportConfig struct {
	ReportTemplate string `yaml:"report_template"`
	JSONTemplate   string `yaml:"json_template"`
}

// UIConfig controls the optional interactive result table.
type UIConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration matching the legacy tool's behavior.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Policy:          string(cycle.PolicyPrecise),
			StartThreshold:  600,
			HoldingLow:      1230,
			HoldingHigh:     1270,
			MinHoldingHours: 10,
			EndThreshold:    900,
			TargetUnitCost:  25.52,
			LookaheadHours:  48,
		},
		Ingest: IngestConfig{
			HeaderDiscovery:     false,
			MaxHeaderDistance:   2,
			TimeKeywords:        []string{"time", "timestamp", "datetime"},
			TemperatureKeywords: []string{"temp", "temperature"},
			GasKeywords:         []string{"gas", "meter", "gas_reading"},
			HistorianTable:      "samples",
		},
		Report: ReportConfig{
			ReportTemplate: "data/reports/verification-{DATE}.txt",
			JSONTemplate:   "data/reports/verification-{DATE}.json",
		},
		UI: UIConfig{Enabled: true},
	}
}

// Load loads configuration from a YAML file, applying defaults for any
// omitted field. A missing file yields the defaults unchanged.
func Load(filename string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch cycle.Policy(c.Engine.Policy) {
	case cycle.PolicySimple, cycle.PolicyPrecise:
	default:
		return fmt.Errorf("invalid detection policy %q", c.Engine.Policy)
	}
	if c.Engine.HoldingLow > c.Engine.HoldingHigh {
		return fmt.Errorf("holding range inverted: [%v, %v]", c.Engine.HoldingLow, c.Engine.HoldingHigh)
	}
	if c.Engine.TargetUnitCost <= 0 {
		return fmt.Errorf("target unit cost must be positive, got %v", c.Engine.TargetUnitCost)
	}
	if c.Engine.LookaheadHours <= 0 {
		return fmt.Errorf("lookahead must be positive, got %v hours", c.Engine.LookaheadHours)
	}
	return nil
}

// Detector converts the engine section into the detector's own config type.
func (e EngineConfig) Detector() cycle.Config {
	return cycle.Config{
		Policy:         cycle.Policy(e.Policy),
		StartThreshold: e.StartThreshold,
		HoldingLow:     e.HoldingLow,
		HoldingHigh:    e.HoldingHigh,
		MinHolding:     time.Duration(e.MinHoldingHours * float64(time.Hour)),
		EndThreshold:   e.EndThreshold,
		Lookahead:      time.Duration(e.LookaheadHours * float64(time.Hour)),
	}
}

// Print displays the configuration
func (c *Config) Print() {
	fmt.Printf("Policy: %s\n", c.Engine.Policy)
	fmt.Printf("Start/End thresholds: %v / %v\n", c.Engine.StartThreshold, c.Engine.EndThreshold)
	fmt.Printf("Holding: [%v, %v] for at least %vh\n", c.Engine.HoldingLow, c.Engine.HoldingHigh, c.Engine.MinHoldingHours)
	fmt.Printf("Target unit cost: %v Nm3/ton\n", c.Engine.TargetUnitCost)
	fmt.Printf("Lookahead: %vh\n", c.Engine.LookaheadHours)
	if c.Ingest.HeaderDiscovery {
		fmt.Printf("Header discovery: on (max distance %d)\n", c.Ingest.MaxHeaderDistance)
	}
}

package config

// Raw config loaded from YAML; pointer fields distinguish "absent" from
// zero so preset merging works.
type RawConfig struct {
	Version    string       `yaml:"version"`
	Game       *GameConfig  `yaml:"game,omitempty"`
	Simulation *SimConfig   `yaml:"simulation,omitempty"`
	Sweep      *SweepConfig `yaml:"sweep,omitempty"`
	Notes      string       `yaml:"notes,omitempty"`
}

type GameConfig struct {
	Jokers          *int     `yaml:"jokers"`
	InclusiveBudget *int     `yaml:"inclusive_budget"`
	Threshold       *float64 `yaml:"threshold"`
	ShowFailed      *bool    `yaml:"show_failed,omitempty"`
}

type SimConfig struct {
	Trials  *int    `yaml:"trials"`
	Seed    *uint64 `yaml:"seed,omitempty"`
	Workers *int    `yaml:"workers,omitempty"`
}

type SweepConfig struct {
	JokerMin      *int     `yaml:"joker_min"`
	JokerMax      *int     `yaml:"joker_max"`
	BudgetMin     *int     `yaml:"budget_min"`
	BudgetMax     *int     `yaml:"budget_max"`
	ThresholdMin  *float64 `yaml:"threshold_min"`
	ThresholdMax  *float64 `yaml:"threshold_max"`
	ThresholdStep *float64 `yaml:"threshold_step"`
}

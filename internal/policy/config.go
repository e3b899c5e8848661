package policy

// PolicyConfig is the on-disk policy file.
type PolicyConfig struct {
	Version int `yaml:"version"`

	// MaxLevelAllowed is the highest severity level tolerated before the run
	// fails (0-4). Nil keeps the caller's default.
	MaxLevelAllowed *int `yaml:"max_level_allowed,omitempty"`

	DisableOpinionated bool `yaml:"disable_opinionated,omitempty"`

	Rules  map[string]RuleConfig `yaml:"rules"`
	Custom []CustomConfig        `yaml:"custom"`
	Rego   []RegoConfig          `yaml:"rego"`

	// dir is the directory of the loaded file; rego paths resolve against it.
	dir string
}

// RuleConfig overrides a built-in rule by code.
type RuleConfig struct {
	Enabled     *bool `yaml:"enabled,omitempty"`
	Opinionated *bool `yaml:"opinionated,omitempty"`
}

// CustomConfig declares a forbidden-variable rule.
type CustomConfig struct {
	Kind        string   `yaml:"kind"`
	Variable    string   `yaml:"variable"`
	Value       *string  `yaml:"value,omitempty"`
	Workload    string   `yaml:"workload,omitempty"`
	Severity    string   `yaml:"severity"`
	Opinionated bool     `yaml:"opinionated,omitempty"`
	References  []string `yaml:"references,omitempty"`
	Commentary  string   `yaml:"commentary,omitempty"`
}

// RegoConfig declares a Rego policy loaded from File.
type RegoConfig struct {
	Name     string `yaml:"name"`
	File     string `yaml:"file"`
	Query    string `yaml:"query,omitempty"`
	Severity string `yaml:"severity"`

	Opinionated bool     `yaml:"opinionated,omitempty"`
	References  []string `yaml:"references,omitempty"`
}

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models teamline.yml.
type Config struct {
	Project struct {
		ID string `yaml:"id"`
	} `yaml:"project"`
	Scoring Scoring `yaml:"scoring"`
}

// Scoring lifts the workload and suggestion constants out of the business
// logic so boundary values can be exercised directly in tests.
type Scoring struct {
	// DoneStatuses are the terminal status labels; a task whose status name
	// matches one of these (exact, case-sensitive) no longer adds load.
	DoneStatuses []string `yaml:"done_statuses"`
	// WorkloadThreshold is the baseline full load in workload points.
	WorkloadThreshold float64 `yaml:"workload_threshold"`
	// AvailabilityFloor is substituted for zero/missing availability so a
	// candidate's score is never multiplied down to exactly zero.
	AvailabilityFloor  float64 `yaml:"availability_floor"`
	SkillMatchPoints   float64 `yaml:"skill_match_points"`
	TypeMatchPoints    float64 `yaml:"type_match_points"`
	LoadPenaltyPerTask float64 `yaml:"load_penalty_per_task"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create with tl config init or tl config import --file <path>", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Project.ID == "" {
		return fmt.Errorf("config.project.id is required")
	}
	if len(c.Scoring.DoneStatuses) == 0 {
		return fmt.Errorf("config.scoring.done_statuses is required")
	}
	for _, name := range c.Scoring.DoneStatuses {
		if name == "" {
			return fmt.Errorf("config.scoring.done_statuses contains empty label")
		}
	}
	if c.Scoring.WorkloadThreshold <= 0 {
		return fmt.Errorf("config.scoring.workload_threshold must be positive")
	}
	if c.Scoring.AvailabilityFloor <= 0 {
		return fmt.Errorf("config.scoring.availability_floor must be positive")
	}
	if c.Scoring.LoadPenaltyPerTask < 0 {
		return fmt.Errorf("config.scoring.load_penalty_per_task must not be negative")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "teamline.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault(projectID string) string {
	return fmt.Sprintf(defaultTemplate, projectID)
}

// Default returns the default Config struct for a project.
func Default(projectID string) *Config {
	var cfg Config
	cfg.Project.ID = projectID
	_ = yaml.NewDecoder(bytes.NewBufferString(fmt.Sprintf(defaultTemplate, projectID))).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `project:
  id: %s

scoring:
  done_statuses: [Done, Completed, Closed]
  workload_threshold: 20
  availability_floor: 0.1
  skill_match_points: 10
  type_match_points: 15
  load_penalty_per_task: 0.5
`

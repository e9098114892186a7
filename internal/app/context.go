package app

import (
	"teamline/internal/config"
)

// ResolveConfig loads teamline.yml from the workspace, seeding defaults
// when the file is absent. A project override wins over the file.
func ResolveConfig(workspace, projectOverride string) (*config.Config, error) {
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		id := projectOverride
		if id == "" {
			id = "default"
		}
		cfg = config.Default(id)
	}
	if projectOverride != "" {
		cfg.Project.ID = projectOverride
	}
	return cfg, nil
}

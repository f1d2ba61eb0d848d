package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# kabupnl configuration

[log]
# Log level: debug, info, warn, error
level = "info"
# Write human-readable logs to stderr
console = true
# Also write JSON logs to a rotating file
file = false
# file_path = "~/.config/kabu-pnl/logs/kabupnl.log"
max_size = 20
max_backups = 3
max_age = 14

[report]
# Print reports as JSON instead of tables
json = false
# Colour positive and negative P&L in tables
color_enabled = true
date_format = "2006-01-02"

[positions]
# Opening positions file loaded by "kabupnl report" when --positions is not given.
# Supported formats: .toml, .yaml, .json
file = ""
`

// Template returns the default config.toml content.
func Template() string {
	return configTemplate
}

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

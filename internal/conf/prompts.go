package conf

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/DevRickLin/daily-digest/internal/biz/usecase"
)

// PromptsConfig contains all prompt configurations loaded from YAML
type PromptsConfig struct {
	Summarizer SummarizerPrompts `yaml:"summarizer"`

	// Source is the file the prompts came from; empty for built-in defaults
	Source string `yaml:"-"`
}

// SummarizerPrompts contains the brief generation prompts
type SummarizerPrompts struct {
	SystemInstruction string `yaml:"system_instruction"`
}

// LoadPromptsConfig loads prompts configuration from YAML file.
// A missing file yields the defaults; a malformed one is an error.
func LoadPromptsConfig(configPath string) (*PromptsConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/prompts.yaml",
			"/etc/daily-digest/prompts.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "prompts.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err == nil {
			data, loadedPath = raw, p
			break
		}
	}

	if data == nil {
		return DefaultPromptsConfig(), nil
	}

	var config PromptsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return DefaultPromptsConfig(), errors.Wrapf(err, "parse %s", loadedPath)
	}
	config.Source = loadedPath

	// Fill in defaults for empty values
	config.fillDefaults()

	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *PromptsConfig) fillDefaults() {
	c.Summarizer.SystemInstruction = strings.TrimSpace(c.Summarizer.SystemInstruction)
	if c.Summarizer.SystemInstruction == "" {
		c.Summarizer.SystemInstruction = DefaultPromptsConfig().Summarizer.SystemInstruction
	}
}

// DefaultPromptsConfig returns the default prompts configuration
func DefaultPromptsConfig() *PromptsConfig {
	return &PromptsConfig{
		Summarizer: SummarizerPrompts{
			SystemInstruction: usecase.DefaultSystemInstruction,
		},
	}
}

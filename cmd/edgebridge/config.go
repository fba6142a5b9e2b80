package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Kwixotic/edgebridge"
)

// config is the server configuration. Flags override file values.
type config struct {
	Bind   string `yaml:"bind"`
	Build  string `yaml:"build"`
	Public string `yaml:"public"`
	Prefix string `yaml:"prefix"`
	Mode   string `yaml:"mode"`
}

func defaultConfig() config {
	return config{
		Bind:   "localhost:3000",
		Build:  edgebridge.DefaultBuildPath,
		Public: edgebridge.DefaultAssetDir,
		Prefix: edgebridge.DefaultAssetPrefix,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

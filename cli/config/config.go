package config

import (
	"os"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"

	"github.com/volumekit/pvc-inspect/pkg/errors"
)

// Config holds operator defaults for flags that are tedious to repeat. All
// fields are optional; flags always win over the file.
type Config struct {
	Namespace string `json:"namespace"`
	Template  string `json:"template"`

	// SweepAge is the default sweep threshold in minutes.
	SweepAge int `json:"sweepAge"`
}

// Load reads ~/.pvc-inspect.yaml. A missing file just means defaults.
func Load() (Config, error) {
	configPath, err := homedir.Expand("~/.pvc-inspect.yaml")
	if err != nil {
		return defaults(), errors.WithContext("expand config path", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the config file at the given path.
func LoadFrom(path string) (Config, error) {
	cfg := defaults()

	configBytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.WithContext("read config", err)
	}

	if err := yaml.Unmarshal(configBytes, &cfg); err != nil {
		return defaults(), errors.WithContext("parse config", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Namespace: "default",
		Template:  "ssh",
		SweepAge:  4 * 60,
	}
}

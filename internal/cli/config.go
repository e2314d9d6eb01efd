package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const maxWalkDepth = 25

// ConfigNames are the file names probed during auto-discovery, in order.
var ConfigNames = []string{"tablegen.yaml", "tablegen.yml"}

// Config is the tablegen configuration from tablegen.yaml.
type Config struct {
	Schema  string `mapstructure:"schema"`
	Output  string `mapstructure:"output"`
	Package string `mapstructure:"package"`
}

// LoadConfig discovers and loads configuration with precedence
// env > config file > defaults. Flags are layered on top by the caller.
//
// It returns the config and the path of the file it came from, empty when
// none was found.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("TABLEGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Relative paths in a config file are relative to that file.
	if configPath != "" {
		dir := filepath.Dir(configPath)
		cfg.Schema = resolvePath(dir, cfg.Schema, fromFile(v, "schema"))
		cfg.Output = resolvePath(dir, cfg.Output, fromFile(v, "output"))
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema", "tables.yaml")
	v.SetDefault("output", "tables_gen.go")
	v.SetDefault("package", "")
}

// fromFile reports whether key's effective value was read from the config
// file rather than the environment or a default.
func fromFile(v *viper.Viper, key string) bool {
	if _, ok := os.LookupEnv("TABLEGEN_" + strings.ToUpper(key)); ok {
		return false
	}
	return v.InConfig(key)
}

// resolvePath anchors a relative p at dir.
func resolvePath(dir, p string, anchored bool) string {
	if !anchored || p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// findConfigFile returns explicitPath if it exists. Otherwise it walks up
// from the working directory looking for one of ConfigNames, stopping at a
// .git entry or after maxWalkDepth levels. An empty result means none.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/lambdacontainer/logger"
)

// FileSystem abstracts the file operations of the loader for tests.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the local disk.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds loader dependencies and explicit file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file (optional)
	EnvFile    string // explicit .env file (optional)
	EnvPrefix  string // only environment variables with this prefix are bound (optional)
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets the filesystem used to locate and read files.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix restricts environment binding to variables starting with
// prefix followed by an underscore. The prefix is stripped before binding.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.ToUpper(strings.TrimSuffix(prefix, "_")) }
}

// Files are the config and .env files chosen for a service.
type Files struct {
	ConfigFile string
	EnvFile    string
}

// Locator finds the config and .env files of a service.
type Locator struct {
	FileSystem FileSystem
}

// Locate returns explicit paths when given, otherwise the first match in
// the standard search locations.
func (l *Locator) Locate(serviceName string, lc LoaderConfig) Files {
	files := Files{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = l.first(configCandidates(serviceName))
	}
	if files.EnvFile == "" {
		files.EnvFile = l.first(envCandidates(serviceName))
	}
	return files
}

func (l *Locator) first(paths []string) string {
	for _, p := range paths {
		if l.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// serviceDirs lists the directories searched for a service, nearest first.
func serviceDirs(serviceName string) []string {
	names := []string{serviceName}
	if i := strings.LastIndex(serviceName, "-"); i != -1 && i < len(serviceName)-1 {
		names = append(names, serviceName[i+1:])
	}

	var dirs []string
	for _, up := range []string{".", "..", filepath.Join("..", "..")} {
		for _, n := range names {
			dirs = append(dirs, filepath.Join(up, "cmd", n), filepath.Join(up, "config", n))
		}
	}
	for _, up := range []string{".", "..", filepath.Join("..", "..")} {
		dirs = append(dirs, filepath.Join(up, "config"), up)
	}
	return dirs
}

func configCandidates(serviceName string) []string {
	var out []string
	for _, dir := range serviceDirs(serviceName) {
		for _, name := range []string{"config.yml", "config.yaml"} {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out
}

func envCandidates(serviceName string) []string {
	var out []string
	for _, name := range []string{".env." + serviceName, ".env"} {
		for _, dir := range serviceDirs(serviceName) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out
}

// LoadConfig loads configuration for a service into cfg. The YAML file is
// read first, then the .env file is loaded into the process environment,
// then environment variables override file values.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	files := (&Locator{FileSystem: lc.FileSystem}).Locate(serviceName, lc)
	log := logger.WithComponent("config")

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			log.Warn("config file not loaded", logger.Fields("file", files.ConfigFile, logger.FieldError, err.Error()))
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("env file not loaded", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		}
	}
	bindEnv(v, os.Environ(), lc.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every KEY=value pair under each nested key it may denote.
func bindEnv(v *viper.Viper, environ []string, prefix string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if prefix != "" {
			rest, found := strings.CutPrefix(key, prefix+"_")
			if !found {
				continue
			}
			key = rest
		}
		for _, k := range envKeyVariants(key) {
			v.Set(k, value)
		}
	}
}

// envKeyVariants maps an environment variable name to the config keys it
// may denote, splitting the name into a section path and a leaf:
//
//	CONTAINER_DUPLICATE_POLICY -> container_duplicate_policy,
//	    container.duplicate_policy, container.duplicate.policy, container_duplicate.policy
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	variants := []string{lower}
	if len(parts) == 1 {
		return variants
	}

	seen := map[string]bool{lower: true}
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			variants = append(variants, k)
		}
	}
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], "_") + "." + strings.Join(parts[i:], "_"))
	}
	return variants
}

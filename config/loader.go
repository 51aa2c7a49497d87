package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override file values.
const EnvPrefix = "RIV"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string         // Direct config file path (optional)
	EnvFile    string         // Direct env file path (optional)
	Flags      *pflag.FlagSet // Command-line flags bound over file and env values (optional)
	Defaults   map[string]any // Values used when nothing else sets a key (optional)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
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

// WithFlags binds a parsed flag set. Flag names use dots for nesting,
// e.g. "sink.kind".
func WithFlags(fs *pflag.FlagSet) LoaderOption {
	return func(lc *LoaderConfig) { lc.Flags = fs }
}

// WithDefaults registers default values by key.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(lc *LoaderConfig) { lc.Defaults = defaults }
}

// Load reads configuration into cfg. Precedence, lowest first: defaults,
// config file, .env file and RIV_* environment variables, changed flags.
// When no config file is given, ./riv.yml and ./config/riv.yml are tried.
func Load(cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	v := viper.New()
	for k, val := range lc.Defaults {
		v.SetDefault(k, val)
	}

	// 1. Config file (base configuration)
	configFile := lc.ConfigFile
	if configFile == "" {
		configFile = findConfigFile(lc.FileSystem)
	} else if !lc.FileSystem.Exists(configFile) {
		return fmt.Errorf("config file %s does not exist", configFile)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	// 2. .env file, then RIV_* environment variables
	envFile := lc.EnvFile
	if envFile == "" && lc.FileSystem.Exists(".env") {
		envFile = ".env"
	}
	if envFile != "" && lc.FileSystem.Exists(envFile) {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			return fmt.Errorf("failed to load .env file %s: %w", envFile, err)
		}
	}
	bindPrefixedEnv(v, os.Environ())

	// 3. Flags the user actually set. Set, not BindPFlag, so they also
	// override the environment values written above.
	if lc.Flags != nil {
		lc.Flags.Visit(func(f *pflag.Flag) {
			v.Set(f.Name, f.Value.String())
		})
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// Decode fills out from a generic map, such as a decoded JSON body, with
// the same key and type rules Load uses.
func Decode(input map[string]any, out interface{}) error {
	v := viper.New()
	if err := v.MergeConfigMap(input); err != nil {
		return fmt.Errorf("failed to merge config map: %w", err)
	}
	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

func findConfigFile(fs FileSystem) string {
	for _, path := range []string{"./riv.yml", "./riv.yaml", "./config/riv.yml"} {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// bindPrefixedEnv sets every RIV_* variable under all nested key variants,
// so RIV_SINK_DB_PATH reaches sink.db_path.
func bindPrefixedEnv(v *viper.Viper, environ []string) {
	prefix := EnvPrefix + "_"
	for _, env := range environ {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], prefix) {
			continue
		}
		for _, variant := range generateEnvKeyVariants(strings.TrimPrefix(pair[0], prefix)) {
			v.Set(variant, pair[1])
		}
	}
}

// generateEnvKeyVariants creates all possible key variants for environment variable binding.
// Examples:
//
//	SINK_DB_PATH -> [sink_db_path, sink.db.path, sink.db_path, sink_db.path]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	// Split once at every position: prefix nested, suffix kept with underscores.
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
		variants = append(variants, strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "."))
	}

	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}

// Package config loads dotbak configuration by layering, in order:
// embedded defaults, a user config file (dotbak.toml or dotbak.yaml in the
// config directory), and DOTBAK_* environment variables.
package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/dotbak/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Config is the resolved dotbak configuration
type Config struct {
	// RegistryRoot is where sessions are stored. Empty selects the XDG
	// default (resolved by pkg/paths).
	RegistryRoot string `koanf:"registry_root"`

	// DotfilesRoot is recorded in manifests for display only
	DotfilesRoot string `koanf:"dotfiles_root"`

	// DryRun reports intended actions without writing anything
	DryRun bool `koanf:"dry_run"`

	Retention RetentionConfig `koanf:"retention"`
	Backup    BackupConfig    `koanf:"backup"`
}

// RetentionConfig controls the registry's retention sweep
type RetentionConfig struct {
	// Keep is how many sessions to keep, newest first
	Keep int `koanf:"keep"`
}

// BackupConfig tunes backup registration
type BackupConfig struct {
	// Suffix is used by the degraded rename-in-place fallback
	Suffix string `koanf:"suffix"`
}

// Load resolves configuration from defaults, the config file under
// configDir (if any), and DOTBAK_* environment variables.
func Load(configDir string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load built-in defaults")
	}

	// 2. User config file, TOML preferred over YAML
	if configDir != "" {
		for _, name := range []string{"dotbak.toml", "dotbak.yaml", "dotbak.yml"} {
			path := filepath.Join(configDir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			var parser koanf.Parser = toml.Parser()
			if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
				parser = yaml.Parser()
			}
			if err := k.Load(file.Provider(path), parser); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
			}
			break
		}
	}

	// 3. Environment: DOTBAK_RETENTION_KEEP=3 -> retention.keep, etc.
	// Single-underscore keys map directly; nested keys use the section
	// name as the first segment.
	err := k.Load(env.Provider("DOTBAK_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "DOTBAK_"))
		for _, section := range []string{"retention_", "backup_"} {
			if strings.HasPrefix(key, section) {
				return strings.TrimSuffix(section, "_") + "." + strings.TrimPrefix(key, section)
			}
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if cfg.Retention.Keep < 1 {
		return nil, errors.Newf(errors.ErrInvalidInput, "retention.keep must be at least 1, got %d", cfg.Retention.Keep)
	}
	if cfg.Backup.Suffix == "" {
		return nil, errors.New(errors.ErrInvalidInput, "backup.suffix must not be empty")
	}

	return &cfg, nil
}

package am

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// isolate points HOME and the working directory at fresh temp dirs and clears
// the cached configuration.
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)
	Reset()
	t.Cleanup(Reset)
	return home, project
}

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance without user or project config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.Generate.Source != InputManifest {
		t.Errorf("expected default source %q, got %q", InputManifest, cfg.Generate.Source)
	}
	if len(cfg.Generate.Languages) != 1 || cfg.Generate.Languages[0] != "kotlin" {
		t.Errorf("expected default languages [kotlin], got %v", cfg.Generate.Languages)
	}
	if cfg.Generate.Output != filepath.Join("build", "namedargs") {
		t.Errorf("unexpected default output %q", cfg.Generate.Output)
	}
	if cfg.Generate.Directive != DefaultDirective {
		t.Errorf("expected default directive %q, got %q", DefaultDirective, cfg.Generate.Directive)
	}
	if cfg.Ledger.Enabled {
		t.Error("ledger should be disabled by default")
	}
	if cfg.Watch.DebounceMS != DefaultDebounceMS {
		t.Errorf("expected default debounce %d, got %d", DefaultDebounceMS, cfg.Watch.DebounceMS)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefaultConfigMatchesSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate(t *testing.T) {
	valid := func() Config { return *DefaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{
			name:   "go source with directive is valid",
			mutate: func(c *Config) { c.Generate.Source = InputGo },
		},
		{
			name:    "unknown source",
			mutate:  func(c *Config) { c.Generate.Source = "java" },
			wantErr: "generate.source",
		},
		{
			name:    "no languages",
			mutate:  func(c *Config) { c.Generate.Languages = nil },
			wantErr: "generate.languages cannot be empty",
		},
		{
			name:    "unknown language",
			mutate:  func(c *Config) { c.Generate.Languages = []string{"kotlin", "cobol"} },
			wantErr: "unknown language",
		},
		{
			name:    "empty output",
			mutate:  func(c *Config) { c.Generate.Output = "" },
			wantErr: "generate.output",
		},
		{
			name: "empty directive with go source",
			mutate: func(c *Config) {
				c.Generate.Source = InputGo
				c.Generate.Directive = ""
			},
			wantErr: "generate.directive",
		},
		{
			name:   "empty directive with manifest source is ignored",
			mutate: func(c *Config) { c.Generate.Directive = "" },
		},
		{
			name: "enabled ledger without path",
			mutate: func(c *Config) {
				c.Ledger.Enabled = true
				c.Ledger.Path = ""
			},
			wantErr: "ledger.path",
		},
		{
			name:   "zero debounce is valid (default)",
			mutate: func(c *Config) { c.Watch.DebounceMS = 0 },
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Watch.DebounceMS = -1 },
			wantErr: "watch.debounce_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDebounce(t *testing.T) {
	assert.Equal(t, 300*time.Millisecond, WatchConfig{}.Debounce())
	assert.Equal(t, 300*time.Millisecond, WatchConfig{DebounceMS: -5}.Debounce())
	assert.Equal(t, 50*time.Millisecond, WatchConfig{DebounceMS: 50}.Debounce())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, `
[generate]
source = "go"
inputs = ["./api/..."]
languages = ["go", "typescript"]
allow_deferred = true

[watch]
debounce_ms = 50
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, InputGo, cfg.Generate.Source)
	assert.Equal(t, []string{"./api/..."}, cfg.Generate.Inputs)
	assert.Equal(t, []string{"go", "typescript"}, cfg.Generate.Languages)
	assert.True(t, cfg.Generate.AllowDeferred)
	assert.Equal(t, 50, cfg.Watch.DebounceMS)
	// Unset keys keep their defaults
	assert.Equal(t, DefaultDirective, cfg.Generate.Directive)
	assert.Equal(t, filepath.Join("build", "namedargs"), cfg.Generate.Output)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, "[generate\nsource = ")
	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestFindProjectConfig(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0755))

	assert.Empty(t, FindProjectConfig(deep))

	writeFile(t, filepath.Join(root, "a", ConfigFileName), "")
	assert.Equal(t, filepath.Join(root, "a", ConfigFileName), FindProjectConfig(deep))

	writeFile(t, filepath.Join(root, "a", "b", ConfigFileName), "")
	assert.Equal(t, filepath.Join(root, "a", "b", ConfigFileName), FindProjectConfig(deep), "nearest file wins")
}

func TestLoad_Precedence(t *testing.T) {
	home, project := isolate(t)

	writeFile(t, filepath.Join(home, UserDirName, ConfigFileName), `
[generate]
output = "from-user"
languages = ["typescript"]

[ledger]
enabled = true
`)
	writeFile(t, filepath.Join(project, ConfigFileName), `
[generate]
output = "from-project"
`)
	t.Setenv("NAMEDARGS_LEDGER_PATH", "/tmp/env.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-project", cfg.Generate.Output, "project overrides user")
	assert.Equal(t, []string{"typescript"}, cfg.Generate.Languages, "user value survives partial project section")
	assert.True(t, cfg.Ledger.Enabled)
	assert.Equal(t, "/tmp/env.db", cfg.Ledger.Path, "environment overrides files")
	assert.Equal(t, DefaultDebounceMS, cfg.Watch.DebounceMS)

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, again, "Load caches until Reset")

	assert.Equal(t, SourceProject, ConfigSources["generate.output"].Source)
	assert.Equal(t, SourceUser, ConfigSources["generate.languages"].Source)
	assert.Equal(t, SourceUser, ConfigSources["ledger.enabled"].Source)
}

func TestLoad_EnvironmentSlice(t *testing.T) {
	isolate(t)
	t.Setenv("NAMEDARGS_GENERATE_LANGUAGES", "go,typescript")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "typescript"}, cfg.Generate.Languages)
}

func TestGetConfigIntrospection(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, filepath.Join(project, ConfigFileName), `
[generate]
source = "go"
`)
	t.Setenv("NAMEDARGS_GENERATE_OUTPUT", "out")

	intro := GetConfigIntrospection()
	assert.Equal(t, filepath.Join(project, ConfigFileName), intro.ConfigFile)

	byKey := make(map[string]SettingInfo, len(intro.Settings))
	keys := make([]string, 0, len(intro.Settings))
	for _, s := range intro.Settings {
		byKey[s.Key] = s
		keys = append(keys, s.Key)
	}

	assert.IsIncreasing(t, keys, "settings are sorted")
	assert.Equal(t, SourceProject, byKey["generate.source"].Source)
	assert.Equal(t, "go", byKey["generate.source"].Value)
	assert.Equal(t, SourceEnvironment, byKey["generate.output"].Source)
	assert.Equal(t, "NAMEDARGS_GENERATE_OUTPUT", byKey["generate.output"].SourcePath)
	assert.Equal(t, SourceDefault, byKey["watch.debounce_ms"].Source)
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "NAMEDARGS_GENERATE_ALLOW_DEFERRED", EnvVar("generate.allow_deferred"))
}

func TestWriteConfigRotatesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	for i := 1; i <= 5; i++ {
		cfg := DefaultConfig()
		cfg.Watch.DebounceMS = i
		require.NoError(t, WriteConfig(path, cfg))
	}

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Watch.DebounceMS)

	for n, want := range map[int]int{1: 4, 2: 3, 3: 2} {
		backup, err := LoadFromFile(backupPath(path, n))
		require.NoError(t, err)
		assert.Equal(t, want, backup.Watch.DebounceMS, "back%d", n)
	}
	_, err = os.Stat(backupPath(path, 4))
	assert.True(t, os.IsNotExist(err), "only three backups are kept")
}

func TestEncode(t *testing.T) {
	cfg := DefaultConfig()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, cfg, FormatTOML))
	assert.Contains(t, buf.String(), "[generate]")
	assert.Contains(t, buf.String(), "debounce_ms = 300")

	buf.Reset()
	require.NoError(t, Encode(&buf, cfg, "YAML"))
	assert.True(t, strings.HasPrefix(buf.String(), "generate:\n"))
	assert.Contains(t, buf.String(), "  allow_deferred: false")

	buf.Reset()
	require.NoError(t, Encode(&buf, cfg, FormatJSON))
	var decoded Config
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *cfg, decoded)

	err := Encode(&buf, cfg, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

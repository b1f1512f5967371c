package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/sqlbuild/internal/core"
	"github.com/coregx/sqlbuild/internal/dialects"
)

func writeFile(t *testing.T, fs afero.Fs, name, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
}

func cwdFile(t *testing.T, name string) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Join(wd, name)
}

func TestLoad_Defaults(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg, err := Load(New(fs), fs, "")
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Dialect)
	assert.False(t, cfg.Strict)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, OutputText, cfg.Output)
}

func TestLoad_ConfigFileInWorkingDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, cwdFile(t, "sqlbuild.yaml"), `
dialect: postgres
strict: true
log_level: debug
output: json
sensitive_fields: [email, phone]
`)

	cfg, err := Load(New(fs), fs, "")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Dialect)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, []string{"email", "phone"}, cfg.SensitiveFields)
}

func TestLoad_ExplicitPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/etc/sqlbuild/custom.yaml", "dialect: sqlserver\n")

	cfg, err := Load(New(fs), fs, "/etc/sqlbuild/custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", cfg.Dialect)

	_, err = Load(New(fs), fs, "/etc/sqlbuild/missing.yaml")
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, cwdFile(t, "sqlbuild.yaml"), "dialect: postgres\noutput: yaml\n")
	t.Setenv("SQLBUILD_DIALECT", "sqlite")

	cfg, err := Load(New(fs), fs, "")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Dialect)
	assert.Equal(t, OutputYAML, cfg.Output)
}

func TestLoad_DotEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, cwdFile(t, "sqlbuild.yaml"), "dialect: postgres\n")
	writeFile(t, fs, ".env", "SQLBUILD_DIALECT=oracle12c\nSQLBUILD_STRICT=true\nSQLBUILD_OUTPUT=json\nDATABASE_URL=ignored\n")
	t.Setenv("SQLBUILD_OUTPUT", "text")
	t.Cleanup(func() {
		_ = os.Unsetenv("SQLBUILD_DIALECT")
		_ = os.Unsetenv("SQLBUILD_STRICT")
	})

	cfg, err := Load(New(fs), fs, "")
	require.NoError(t, err)

	assert.Equal(t, "oracle12c", cfg.Dialect, ".env beats the config file")
	assert.True(t, cfg.Strict)
	assert.Equal(t, OutputText, cfg.Output, "the real environment beats .env")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Unknown dialect", "dialect: informix\n"},
		{"Unknown level", "log_level: loud\n"},
		{"Unknown output", "output: xml\n"},
		{"Unknown audit level", "audit: verbose\n"},
		{"Malformed YAML", "dialect: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFile(t, fs, "/cfg.yaml", tt.content)

			_, err := Load(New(fs), fs, "/cfg.yaml")
			assert.Error(t, err)
		})
	}
}

func TestConfig_DialectID(t *testing.T) {
	cfg := &Config{Dialect: "pgx"}
	id, err := cfg.DialectID()
	require.NoError(t, err)
	assert.Equal(t, dialects.PostgreSQL, id)

	cfg.Dialect = "nope"
	_, err = cfg.DialectID()
	assert.ErrorIs(t, err, core.ErrUnsupportedDialect)
}

func TestConfig_BuilderOptions(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Dialect: "mysql", LogLevel: "debug", SensitiveFields: []string{"email"}, Output: OutputText}

	b := core.New(dialects.MySQL, cfg.BuilderOptions(&buf)...)
	_, err := b.Select().From("users").Where(core.C("email", "=", "a@example.com")).Build()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "statement built")
	assert.NotContains(t, buf.String(), "a@example.com")

	buf.Reset()
	strict := &Config{Strict: true, LogLevel: "error"}
	_, err = core.New(dialects.MySQL, strict.BuilderOptions(&buf)...).Select().From("users; DROP TABLE users").Build()
	assert.ErrorIs(t, err, core.ErrUnsafeInput)
	assert.Empty(t, buf.String())
}

func TestConfig_BuilderOptionsAudit(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Dialect: "mysql", LogLevel: "warn", Output: OutputText, Audit: "writes"}

	b := core.New(dialects.MySQL, cfg.BuilderOptions(&buf)...)
	_, err := b.Delete("sessions").Where(core.C("id", "=", 7)).Build()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "audit_event")
	assert.Contains(t, buf.String(), "operation=DELETE")
}

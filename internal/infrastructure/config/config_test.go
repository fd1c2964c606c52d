package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	return dir
}

func TestLoadFrom_Defaults(t *testing.T) {
	dir := writeConfig(t, "config.yaml", `
database:
  driver: sqlite
  dbname: test.db
`)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 14, cfg.Lending.LoanPeriodDays)
	rate, err := cfg.Lending.FineRate()
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.50")))
	assert.Equal(t, NotifyLog, cfg.Notify.Driver)
	assert.Equal(t, 30*time.Second, cfg.Notify.OpenTimeout)
	assert.Equal(t, "file:test.db?_busy_timeout=5000&_foreign_keys=1", cfg.Database.DSN())
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	dir := writeConfig(t, "config.yaml", `
database:
  driver: sqlite
  dbname: test.db
lending:
  daily_fine_rate: "0.50"
`)
	t.Setenv("LIBRARY_LENDING_DAILY_FINE_RATE", "1.25")
	t.Setenv("LIBRARY_SERVER_PORT", "9090")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "1.25", cfg.Lending.DailyFineRate)
}

func TestLoadFrom_EnvSpecificFile(t *testing.T) {
	dir := writeConfig(t, "config.prod.yaml", `
server:
  port: 80
database:
  driver: postgres
  host: db
  port: 5432
  user: lib
  password: secret
  dbname: library
`)
	t.Setenv("LIBRARY_ENV", "prod")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Server.Port)
	assert.Equal(t, "host=db port=5432 user=lib password=secret dbname=library sslmode=disable", cfg.Database.DSN())
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "database:\n  driver: oracle\n"},
		{"bad fine rate", "database:\n  driver: sqlite\nlending:\n  daily_fine_rate: abc\n"},
		{"negative fine rate", "database:\n  driver: sqlite\nlending:\n  daily_fine_rate: \"-1\"\n"},
		{"zero loan period", "database:\n  driver: sqlite\nlending:\n  loan_period_days: 0\n"},
		{"unknown notifier", "database:\n  driver: sqlite\nnotify:\n  driver: smtp\n"},
		{"default secret in release", "server:\n  mode: release\ndatabase:\n  driver: sqlite\njwt:\n  secret: your-secret-key-change-in-production\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, "config.yaml", tt.body)
			_, err := LoadFrom(dir)
			assert.Error(t, err)
		})
	}
}

func TestDSN_MySQL(t *testing.T) {
	d := DatabaseConfig{
		Driver: DriverMySQL, User: "root", Password: "pw", Host: "localhost", Port: 3306,
		DBName: "library", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai",
	}
	assert.Equal(t, "root:pw@tcp(localhost:3306)/library?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai", d.DSN())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: memory
jwt:
  secret: `+testSecret+`
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "simulated", cfg.Payment.Provider)
	assert.Equal(t, 2*time.Second, cfg.Payment.Delay)
	assert.Equal(t, "USD", cfg.Payment.Currency)
	assert.Equal(t, "booking-events", cfg.Kafka.Topic)
	assert.Equal(t, 24*time.Hour, cfg.Booking.StaleRequestGrace)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.GetGRPCAddress())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  host: db
  user: app
  database: rentshare
jwt:
  secret: `+testSecret+`
`)
	t.Setenv("DB_HOST", "override-host")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("GRPC_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "override-host", cfg.Database.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "postgres://app:@override-host:5432/rentshare?sslmode=disable", cfg.GetDatabaseConnectionString())
	assert.Equal(t, ":9090", cfg.GetGRPCAddress())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Database: DatabaseConfig{Driver: "memory"}, JWT: JWTConfig{Secret: testSecret}}
	}

	t.Run("Short secret", func(t *testing.T) {
		cfg := valid()
		cfg.JWT.Secret = "short"
		assert.ErrorContains(t, cfg.Validate(), "at least 32")
	})

	t.Run("Postgres requires host", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Driver = "postgres"
		assert.ErrorContains(t, cfg.Validate(), "database host")
	})

	t.Run("Mercadopago requires token", func(t *testing.T) {
		cfg := valid()
		cfg.Payment.Provider = "mercadopago"
		assert.ErrorContains(t, cfg.Validate(), "access token")
	})

	t.Run("Timeout must exceed delay", func(t *testing.T) {
		cfg := valid()
		cfg.Payment.Delay = 5 * time.Second
		cfg.Payment.Timeout = time.Second
		assert.ErrorContains(t, cfg.Validate(), "must exceed")
	})
}

func TestRouteSecurity(t *testing.T) {
	assert.Equal(t, SecurityPublic, RouteSecurity("GET", "/api/v1/items"))
	assert.Equal(t, SecurityAccess, RouteSecurity("POST", "/api/v1/items"))
	assert.Equal(t, SecurityAccess, RouteSecurity("PUT", "/api/v1/unknown"))
}

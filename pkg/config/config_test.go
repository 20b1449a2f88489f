package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsYEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("USE_S3", "False")
	t.Setenv("LOT_EXPIRY_WARNING_DAYS", "no-es-numero")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "Dulcería Lilis", cfg.App.CompanyName)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.False(t, cfg.Storage.UseS3)
	assert.Equal(t, 30, cfg.Inventory.LotExpiryWarningDays, "valor inválido cae al default")
	assert.Equal(t, 480, cfg.JWT.Expiration)
}

func TestLoad_SinSecretoFalla(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_S3SinBucketFalla(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("USE_S3", "True")
	t.Setenv("AWS_STORAGE_BUCKET_NAME", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "lilis", Password: "p@ss", DBName: "lilis", SSLMode: "disable"}
	assert.Equal(t, "postgres://lilis:p%40ss@db:5432/lilis?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}

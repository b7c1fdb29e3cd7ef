package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-minter/internal/apperr"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RESTListenAddress)
	assert.Equal(t, 30*time.Second, cfg.StopTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://api.devnet.solana.com", cfg.Solana.RPCEndpoint)
	assert.Equal(t, "confirmed", cfg.Solana.Commitment)
	assert.Equal(t, 90*time.Second, cfg.Confirm.MaxElapsed)
	assert.Equal(t, int64(5<<20), cfg.Icon.MaxBytes)
	assert.Equal(t, 420, cfg.Icon.Size)
	assert.Equal(t, 4096, cfg.Icon.MaxDimension)
	assert.False(t, cfg.Solana.MintMemo)
	assert.True(t, cfg.Fee.Base.Equal(decimal.RequireFromString("0.2")))
	assert.True(t, cfg.Fee.Increment.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, "dadzze2tyBogDsQfQxXYUZ9ueXnKGH9j8QP7Qt9vi6e", cfg.Operator.FeeAddress)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MINTER_PINATA_JWT", "jwt-token")
	t.Setenv("MINTER_SOLANA_RPC_ENDPOINT", "http://localhost:8899")
	t.Setenv("MINTER_USE_MEMORY", "true")
	t.Setenv("MINTER_FEE_BASE", "0.35")
	t.Setenv("MINTER_CONFIRM_MAX_ELAPSED", "15s")
	t.Setenv("MINTER_SOLANA_MINT_MEMO", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "jwt-token", cfg.Pinata.JWT)
	assert.Equal(t, "http://localhost:8899", cfg.Solana.RPCEndpoint)
	assert.True(t, cfg.UseMemory)
	assert.True(t, cfg.Fee.Base.Equal(decimal.RequireFromString("0.35")))
	assert.Equal(t, 15*time.Second, cfg.Confirm.MaxElapsed)
	assert.True(t, cfg.Solana.MintMemo)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"LogLevel": "debug",
		"Pinata": {"Gateway": "example.mypinata.cloud"},
		"Icon": {"Size": 256},
		"Fee": {"Increment": "0.05"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "example.mypinata.cloud", cfg.Pinata.Gateway)
	assert.Equal(t, 256, cfg.Icon.Size)
	assert.True(t, cfg.Fee.Increment.Equal(decimal.RequireFromString("0.05")))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Database.URL = "postgres://localhost/minter"
	cfg.Operator.SecretKey = "secret"
	cfg.Pinata.JWT = "jwt"
	cfg.Pinata.Gateway = "example.mypinata.cloud"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig(t).Validate())
	})

	t.Run("missing keys are listed", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Operator.SecretKey = ""
		cfg.Pinata.JWT = " "

		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "Operator.SecretKey")
		assert.Contains(t, err.Error(), "Pinata.JWT")
	})

	t.Run("memory mode needs no database", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Database.URL = ""
		cfg.UseMemory = true
		assert.NoError(t, cfg.Validate())
	})

	t.Run("negative fee", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Fee.Base = decimal.RequireFromString("-1")
		assert.Error(t, cfg.Validate())
	})
}

// Package config loads service settings from defaults, an optional JSON
// file, a .env file and MINTER_* environment variables.
package config

import (
	"bytes"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"token-minter/internal/apperr"
)

// EnvPrefix prefixes every environment variable name.
const EnvPrefix = "MINTER_"

// Config stores global configuration
type Config struct {
	// REST API address
	RESTListenAddress string

	// Maximum time the server waits for in-flight requests on shutdown
	StopTimeout time.Duration

	// Logging level and format ("text" or "json")
	LogLevel  string
	LogFormat string

	// Keep pending requests and orders in memory instead of Postgres
	UseMemory bool

	Database   Database
	ClickHouse ClickHouse
	Operator   Operator
	Pinata     Pinata
	Solana     Solana
	Confirm    Confirm
	Icon       Icon
	Fee        Fee
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("RESTListenAddress", ":8080")
	v.SetDefault("StopTimeout", "30s")
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "text")
	v.SetDefault("UseMemory", "false")

	setDatabaseDefaults(v)
	setClickHouseDefaults(v)
	setOperatorDefaults(v)
	setPinataDefaults(v)
	setSolanaDefaults(v)
	setConfirmDefaults(v)
	setIconDefaults(v)
	setFeeDefaults(v)
}

// Default returns the configuration built from defaults and environment.
func Default() *Config {
	config, _ := Load("")
	return config
}

// bindEnv visits every field and registers its upper snake case env name,
// e.g. Pinata.JWT -> MINTER_PINATA_JWT. Structs from other packages, such
// as decimal.Decimal, are leaves.
func bindEnv(v *viper.Viper, path []string, val reflect.Value) {
	if val.Kind() != reflect.Struct || val.Type().PkgPath() != configPkgPath {
		key := strings.Join(path, ".")
		env := EnvPrefix + strcase.ToScreamingSnake(strings.Join(path, "_"))
		if err := v.BindEnv(key, env); err != nil {
			panic(err)
		}
		return
	}

	for i := 0; i < val.NumField(); i++ {
		newPath := make([]string, len(path), len(path)+1)
		copy(newPath, path)
		newPath = append(newPath, val.Type().Field(i).Name)
		bindEnv(v, newPath, val.Field(i))
	}
}

var configPkgPath = reflect.TypeOf(Config{}).PkgPath()

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToDecimalHookFunc(),
	)
}

// Load configuration from file and env
func Load(filename string) (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("json")

	setDefaults(v)
	bindEnv(v, []string{}, reflect.ValueOf(Config{}))

	// Empty filename means we use default values
	if filename != "" {
		/* #nosec */
		content, err := os.ReadFile(filename)
		if err != nil {
			return nil, apperr.Configuration("read config file", err)
		}
		if err := v.ReadConfig(bytes.NewBuffer(content)); err != nil {
			return nil, apperr.Configuration("parse config file", err)
		}
	}

	config := new(Config)
	if err := v.Unmarshal(config, viper.DecodeHook(decodeHook())); err != nil {
		return nil, apperr.Configuration("decode config", err)
	}
	return config, nil
}

// Validate reports every required setting that is missing.
func (c *Config) Validate() error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	if !c.UseMemory {
		require("Database.URL", c.Database.URL)
	}
	require("Operator.SecretKey", c.Operator.SecretKey)
	require("Operator.FeeAddress", c.Operator.FeeAddress)
	require("Pinata.JWT", c.Pinata.JWT)
	require("Pinata.Gateway", c.Pinata.Gateway)
	require("Pinata.APIURL", c.Pinata.APIURL)
	require("Solana.RPCEndpoint", c.Solana.RPCEndpoint)

	if len(missing) > 0 {
		return apperr.Configuration("missing settings: "+strings.Join(missing, ", "), nil)
	}

	if c.Icon.MaxBytes <= 0 || c.Icon.MaxDimension <= 0 || c.Icon.Size <= 0 {
		return apperr.Configuration("icon limits must be positive", nil)
	}
	if c.Fee.Base.IsNegative() || c.Fee.Increment.IsNegative() {
		return apperr.Configuration("fee schedule must not be negative", nil)
	}
	return nil
}

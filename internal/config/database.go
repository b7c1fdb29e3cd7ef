package config

import (
	"time"

	"github.com/spf13/viper"
)

// Database is the Postgres store of pending requests and orders.
type Database struct {
	URL string
	// Service key, sent as the connection password when set
	Key         string
	PingTimeout time.Duration
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("Database.URL", "")
	v.SetDefault("Database.Key", "")
	v.SetDefault("Database.PingTimeout", "15s")
}

// ClickHouse is the optional step journal. Empty DSN disables it.
type ClickHouse struct {
	DSN string
}

func setClickHouseDefaults(v *viper.Viper) {
	v.SetDefault("ClickHouse.DSN", "")
}

package config

import (
	"time"

	"github.com/spf13/viper"
)

type Pinata struct {
	JWT string
	// Dedicated gateway host, e.g. example.mypinata.cloud
	Gateway string
	APIURL  string
	Timeout time.Duration
}

func setPinataDefaults(v *viper.Viper) {
	v.SetDefault("Pinata.JWT", "")
	v.SetDefault("Pinata.Gateway", "")
	v.SetDefault("Pinata.APIURL", "https://api.pinata.cloud")
	v.SetDefault("Pinata.Timeout", "60s")
}

// Icon limits the uploaded token image.
type Icon struct {
	MaxBytes int64
	// Largest accepted width or height of the upload, checked before decoding
	MaxDimension int
	// Width and height of the pinned image in pixels
	Size int
}

func setIconDefaults(v *viper.Viper) {
	v.SetDefault("Icon.MaxBytes", "5242880")
	v.SetDefault("Icon.MaxDimension", "4096")
	v.SetDefault("Icon.Size", "420")
}

package config

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Fee is the SOL price schedule of a minting request.
type Fee struct {
	Base      decimal.Decimal
	Increment decimal.Decimal
}

func setFeeDefaults(v *viper.Viper) {
	v.SetDefault("Fee.Base", "0.2")
	v.SetDefault("Fee.Increment", "0.1")
}

// stringToDecimalHookFunc parses decimal strings and numbers exactly.
func stringToDecimalHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(decimal.Decimal{}) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return decimal.NewFromString(v)
		case float64:
			return decimal.NewFromFloat(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		default:
			return data, nil
		}
	}
}

package config

import (
	"time"

	"github.com/spf13/viper"
)

// Operator is the service wallet that collects fees and owns new mints
// until authorities are handed over.
type Operator struct {
	// Base58 encoded 64 byte secret key
	SecretKey string
	// Address that receives the minting fee
	FeeAddress string
}

func setOperatorDefaults(v *viper.Viper) {
	v.SetDefault("Operator.SecretKey", "")
	v.SetDefault("Operator.FeeAddress", "dadzze2tyBogDsQfQxXYUZ9ueXnKGH9j8QP7Qt9vi6e")
}

type Solana struct {
	RPCEndpoint string
	// Optional; enables signatureSubscribe confirmation
	WSEndpoint string
	Commitment string
	RPCTimeout time.Duration
	MaxRetries int
	// Append a memo with the request ID to the create_mint transaction
	MintMemo bool
}

func setSolanaDefaults(v *viper.Viper) {
	v.SetDefault("Solana.RPCEndpoint", "https://api.devnet.solana.com")
	v.SetDefault("Solana.WSEndpoint", "")
	v.SetDefault("Solana.Commitment", "confirmed")
	v.SetDefault("Solana.RPCTimeout", "30s")
	v.SetDefault("Solana.MaxRetries", "3")
	v.SetDefault("Solana.MintMemo", false)
}

// Confirm bounds how long a transaction is polled for.
type Confirm struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

func setConfirmDefaults(v *viper.Viper) {
	v.SetDefault("Confirm.InitialInterval", "500ms")
	v.SetDefault("Confirm.MaxInterval", "4s")
	v.SetDefault("Confirm.MaxElapsed", "90s")
}

package domain

import "time"

// TokenForm is the token description submitted with POST /transaction.
// Numeric fields are signed so that out-of-range input reaches validation
// instead of failing JSON decoding.
type TokenForm struct {
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	Decimals          int    `json:"decimals"`
	Supply            int64  `json:"supply"`
	Description       string `json:"description"`
	Twitter           string `json:"twitter"`
	Telegram          string `json:"telegram"`
	Discord           string `json:"discord"`
	Website           string `json:"website"`
	Creator           string `json:"creator"`
	ModifyCreatorData bool   `json:"modifyCreatorData"`
	RevokeFreeze      bool   `json:"revokeFreeze"`
	RevokeMint        bool   `json:"revokeMint"`
	RevokeUpdate      bool   `json:"revokeUpdate"`
}

// TokenRequest is a persisted pending mint order.
// Corresponds to the token_requests table in PostgreSQL.
// Immutable once stored; read once by the finalizer.
type TokenRequest struct {
	ID            string  // database-assigned UUID
	PayerAddress  string  // base58 requester wallet, fee payer and token owner
	Name          string  // 1..30 chars
	Symbol        string  // 1..8 chars
	Supply        uint64  // whole tokens, >= 1
	Decimals      uint8   // 0..18
	Description   string  // non-empty
	Twitter       *string // nullable
	Telegram      *string // nullable
	Discord       *string // nullable
	Website       *string // nullable
	Creator       *string // nullable
	ModifyCreator bool
	RevokeFreeze  bool
	RevokeMint    bool
	RevokeUpdate  bool
	FeeLamports   uint64    // fee quoted when the request was created
	CreatedAt     time.Time // set by the store
}

// NewTokenRequest converts a validated form into a pending request.
// Empty optional strings become nil.
func NewTokenRequest(payer string, form *TokenForm, fee Fee) *TokenRequest {
	return &TokenRequest{
		PayerAddress:  payer,
		Name:          form.Name,
		Symbol:        form.Symbol,
		Supply:        uint64(form.Supply),
		Decimals:      uint8(form.Decimals),
		Description:   form.Description,
		Twitter:       optional(form.Twitter),
		Telegram:      optional(form.Telegram),
		Discord:       optional(form.Discord),
		Website:       optional(form.Website),
		Creator:       optional(form.Creator),
		ModifyCreator: form.ModifyCreatorData,
		RevokeFreeze:  form.RevokeFreeze,
		RevokeMint:    form.RevokeMint,
		RevokeUpdate:  form.RevokeUpdate,
		FeeLamports:   fee.Lamports,
	}
}

// BaseUnits returns the supply scaled by decimals.
func (r *TokenRequest) BaseUnits() (uint64, error) {
	return ScaleSupply(r.Supply, r.Decimals)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package domain

import "time"

// OrderStatus tracks a submitted fee transaction through minting.
type OrderStatus string

const (
	OrderSubmitted    OrderStatus = "submitted"
	OrderFeeConfirmed OrderStatus = "fee_confirmed"
	OrderMinted       OrderStatus = "minted"
	OrderFailed       OrderStatus = "failed"
)

// FailedStepSendFee marks an order whose fee transaction was never
// accepted by the node. The fee did not leave the payer, so the request
// may be claimed again.
const FailedStepSendFee = "send_fee"

// MintOrder claims a token request for exactly one submission.
// Corresponds to the mint_orders table in PostgreSQL.
type MintOrder struct {
	TransactionID string // FK to token_requests.id, unique
	FeeSignature  string // unique
	Status        OrderStatus
	MintAddress   *string // set once create_mint lands
	FailedStep    *string
	UpdatedAt     time.Time
	CreatedAt     time.Time
}

// Reclaimable reports whether a new submission may take over the order.
func (o *MintOrder) Reclaimable() bool {
	return o.Status == OrderFailed && o.FailedStep != nil && *o.FailedStep == FailedStepSendFee
}

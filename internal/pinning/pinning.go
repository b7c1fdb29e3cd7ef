// Package pinning uploads token icons and off-chain metadata to IPFS.
package pinning

import (
	"context"
	"errors"

	"token-minter/internal/domain"
)

var (
	// ErrEmptyCID is returned when the pinning service answered without a CID.
	ErrEmptyCID = errors.New("pinning service returned no CID")

	// ErrUnexpectedStatus wraps non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// Pinner stores content on IPFS and returns its gateway address.
type Pinner interface {
	// PinFile uploads raw bytes under name.
	PinFile(ctx context.Context, name string, data []byte) (*domain.PinnedAsset, error)

	// PinJSON uploads v encoded as JSON under name.
	PinJSON(ctx context.Context, name string, v interface{}) (*domain.PinnedAsset, error)
}

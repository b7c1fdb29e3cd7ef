// Package stub provides an in-memory Pinner for tests.
package stub

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mr-tron/base58"

	"token-minter/internal/domain"
	"token-minter/internal/pinning"
)

// Pinner records uploads and derives CIDs from the content hash.
type Pinner struct {
	mu sync.Mutex

	Gateway string
	Files   map[string][]byte
	JSON    map[string][]byte

	// FileErr and JSONErr fail the corresponding upload when set.
	FileErr error
	JSONErr error
}

// NewPinner creates a stub pinner.
func NewPinner() *Pinner {
	return &Pinner{
		Gateway: "gateway.test",
		Files:   make(map[string][]byte),
		JSON:    make(map[string][]byte),
	}
}

func cid(data []byte) string {
	sum := sha256.Sum256(data)
	return "Qm" + base58.Encode(sum[:])
}

// PinFile stores data.
func (p *Pinner) PinFile(_ context.Context, name string, data []byte) (*domain.PinnedAsset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FileErr != nil {
		return nil, p.FileErr
	}

	c := cid(data)
	p.Files[c] = append([]byte(nil), data...)
	return &domain.PinnedAsset{
		CID:        c,
		GatewayURL: pinning.GatewayURL(p.Gateway, c),
		Kind:       domain.AssetImage,
		Size:       int64(len(data)),
	}, nil
}

// PinJSON stores v encoded as JSON.
func (p *Pinner) PinJSON(_ context.Context, name string, v interface{}) (*domain.PinnedAsset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.JSONErr != nil {
		return nil, p.JSONErr
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", name, err)
	}
	c := cid(data)
	p.JSON[c] = data
	return &domain.PinnedAsset{
		CID:        c,
		GatewayURL: pinning.GatewayURL(p.Gateway, c),
		Kind:       domain.AssetMetadata,
		Size:       int64(len(data)),
	}, nil
}

// Count returns the number of uploads of both kinds.
func (p *Pinner) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Files) + len(p.JSON)
}

var _ pinning.Pinner = (*Pinner)(nil)

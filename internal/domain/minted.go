package domain

// AssetKind identifies what a pinned asset holds.
type AssetKind string

const (
	AssetImage    AssetKind = "image"
	AssetMetadata AssetKind = "metadata"
)

// PinnedAsset is content uploaded to IPFS through the pinning service.
type PinnedAsset struct {
	CID        string
	GatewayURL string // https://<gateway>/ipfs/<cid>
	Kind       AssetKind
	Size       int64
}

// MintedToken is the result of a finalized order.
// A nil authority means it was revoked.
type MintedToken struct {
	MintAddress     string
	Owner           string
	TokenAccount    string
	AmountBaseUnits uint64
	Decimals        uint8
	MetadataURI     string
	ImageURI        string
	MintAuthority   *string
	FreezeAuthority *string
	UpdateAuthority *string
	CreateSignature string
	MintToSignature string
}

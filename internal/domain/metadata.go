package domain

// Metadata field names written on-chain as additional metadata.
const (
	FieldDescription = "description"
	FieldCreator     = "creator"
	FieldDiscord     = "discord"
	FieldTwitter     = "twitter"
	FieldTelegram    = "telegram"
	FieldWebsite     = "website"
)

// MetadataEntry is one additional on-chain metadata pair.
type MetadataEntry struct {
	Field string
	Value string
}

// MetadataEntries returns the additional metadata for a request in the
// order the update-field instructions are emitted: description and creator
// always, then discord, twitter, telegram and website when present. An
// absent creator is written as an empty value.
func MetadataEntries(r *TokenRequest) []MetadataEntry {
	entries := []MetadataEntry{
		{Field: FieldDescription, Value: r.Description},
		{Field: FieldCreator, Value: deref(r.Creator)},
	}

	for _, e := range []struct {
		field string
		value *string
	}{
		{FieldDiscord, r.Discord},
		{FieldTwitter, r.Twitter},
		{FieldTelegram, r.Telegram},
		{FieldWebsite, r.Website},
	} {
		if e.value != nil && *e.value != "" {
			entries = append(entries, MetadataEntry{Field: e.field, Value: *e.value})
		}
	}

	return entries
}

// OffChainMetadata is the JSON document pinned as the token URI.
type OffChainMetadata struct {
	Name        string             `json:"name"`
	Symbol      string             `json:"symbol"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Extensions  MetadataExtensions `json:"extensions"`
}

// MetadataExtensions carries the creator and social links.
type MetadataExtensions struct {
	Creator  string `json:"creator"`
	Discord  string `json:"discord,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Website  string `json:"website,omitempty"`
}

// NewOffChainMetadata builds the metadata document for a request.
func NewOffChainMetadata(r *TokenRequest, imageURL string) *OffChainMetadata {
	return &OffChainMetadata{
		Name:        r.Name,
		Symbol:      r.Symbol,
		Description: r.Description,
		Image:       imageURL,
		Extensions: MetadataExtensions{
			Creator:  deref(r.Creator),
			Discord:  deref(r.Discord),
			Twitter:  deref(r.Twitter),
			Telegram: deref(r.Telegram),
			Website:  deref(r.Website),
		},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

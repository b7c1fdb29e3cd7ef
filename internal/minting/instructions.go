package minting

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/memo"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"token-minter/internal/domain"
	"token-minter/internal/token2022"
)

// mintPlan is everything create_mint needs besides rent.
type mintPlan struct {
	operator solana.PublicKey
	owner    solana.PublicKey
	mint     solana.PublicKey
	decimals uint8
	metadata *token2022.Metadata
	revoke   bool   // metadata update authority
	memo     string // appended as a memo instruction when set
}

func newMintPlan(req *domain.TokenRequest, operator, owner, mint solana.PublicKey, uri string) *mintPlan {
	md := &token2022.Metadata{
		UpdateAuthority: &operator,
		Mint:            mint,
		Name:            req.Name,
		Symbol:          req.Symbol,
		URI:             uri,
	}
	for _, e := range domain.MetadataEntries(req) {
		md.Additional = append(md.Additional, [2]string{e.Field, e.Value})
	}

	return &mintPlan{
		operator: operator,
		owner:    owner,
		mint:     mint,
		decimals: req.Decimals,
		metadata: md,
		revoke:   req.RevokeUpdate,
	}
}

// rentSize is the size rent must cover once metadata has been written.
func (p *mintPlan) rentSize() uint64 {
	return uint64(token2022.MetadataAccountLen(p.metadata))
}

// instructions builds the single create_mint transaction. The account is
// created at the pointer-only size; the metadata program grows it into
// the prefunded lamports.
func (p *mintPlan) instructions(lamports uint64) ([]solana.Instruction, error) {
	ixs := []solana.Instruction{
		system.NewCreateAccountInstruction(
			lamports,
			token2022.MetadataPointerMintLen,
			token2022.ProgramID,
			p.operator,
			p.mint,
		).Build(),
		token2022.NewInitializeMetadataPointerInstruction(p.mint, p.operator, p.mint),
		token.NewInitializeMint2Instruction(p.decimals, p.operator, p.operator, p.mint).Build(),
	}

	initMetadata, err := token2022.NewInitializeMetadataInstruction(
		p.mint, p.operator, p.mint, p.operator,
		p.metadata.Name, p.metadata.Symbol, p.metadata.URI,
	)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, initMetadata)

	for _, kv := range p.metadata.Additional {
		ix, err := token2022.NewUpdateFieldInstruction(p.mint, p.operator, kv[0], kv[1])
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, ix)
	}

	var next *solana.PublicKey
	if !p.revoke {
		next = &p.owner
	}
	ixs = append(ixs, token2022.NewUpdateMetadataAuthorityInstruction(p.mint, p.operator, next))

	if p.memo != "" {
		ixs = append(ixs, memo.NewMemoInstruction([]byte(p.memo), p.operator).Build())
	}
	return ixs, nil
}

// setAuthority hands authorityType over to owner, or clears it when revoke
// is set.
func setAuthority(mint, current, owner solana.PublicKey, authorityType token.AuthorityType, revoke bool) solana.Instruction {
	b := token.NewSetAuthorityInstructionBuilder().
		SetAuthorityType(authorityType).
		SetSubjectAccount(mint).
		SetAuthorityAccount(current)
	if !revoke {
		b.SetNewAuthority(owner)
	}
	return b.Build()
}

func mintTo(amount uint64, decimals uint8, mint, destination, authority solana.PublicKey) solana.Instruction {
	return token.NewMintToCheckedInstruction(amount, decimals, mint, destination, authority, nil).Build()
}

func authorityName(t token.AuthorityType) string {
	switch t {
	case token.AuthorityMintTokens:
		return "mint"
	case token.AuthorityFreezeAccount:
		return "freeze"
	default:
		return fmt.Sprintf("authority(%d)", t)
	}
}

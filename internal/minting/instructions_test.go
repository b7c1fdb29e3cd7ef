package minting

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-minter/internal/domain"
	"token-minter/internal/token2022"
)

func TestMintPlan(t *testing.T) {
	operator := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	discord := "https://discord.gg/test"
	req := &domain.TokenRequest{
		ID:           "req-1",
		Name:         "Name",
		Symbol:       "SYM",
		Decimals:     9,
		Description:  "desc",
		Discord:      &discord,
		RevokeUpdate: true,
	}

	plan := newMintPlan(req, operator, owner, mint, "https://gw/ipfs/Qm1")
	assert.Equal(t, [][2]string{{"description", "desc"}, {"creator", ""}, {"discord", discord}}, plan.metadata.Additional)

	// mint with pointer, TLV header, then two keys, three strings and three pairs
	assert.Equal(t, uint64(234+4+182), plan.rentSize())

	ixs, err := plan.instructions(1_000)
	require.NoError(t, err)
	// create, pointer, mint, metadata, 3 fields, update authority
	require.Len(t, ixs, 8)
	assert.Equal(t, solana.SystemProgramID, ixs[0].ProgramID())

	update, err := ixs[7].Data()
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), update[8:], "revoked update authority")

	for _, ix := range ixs[1:] {
		assert.Equal(t, token2022.ProgramID, ix.ProgramID())
	}
}

func TestMintPlan_Memo(t *testing.T) {
	req := &domain.TokenRequest{ID: "req-2", Name: "N", Symbol: "S", Description: "d"}
	plan := newMintPlan(req, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), "u")
	plan.memo = req.ID

	ixs, err := plan.instructions(1)
	require.NoError(t, err)
	// create, pointer, mint, metadata, 2 fields, update authority, memo
	require.Len(t, ixs, 8)
	assert.Equal(t, token2022.ProgramID, ixs[6].ProgramID())
	assert.Equal(t, solana.MemoProgramID, ixs[7].ProgramID())

	data, err := ixs[7].Data()
	require.NoError(t, err)
	assert.Equal(t, []byte("req-2"), data)
}

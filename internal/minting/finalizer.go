// Package minting finalizes paid token requests: it pins the icon and
// metadata, creates the Token-2022 mint and hands the supply and
// authorities to the requester.
package minting

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/sirupsen/logrus"

	"token-minter/internal/apperr"
	"token-minter/internal/domain"
	"token-minter/internal/logger"
	"token-minter/internal/observability"
	"token-minter/internal/pinning"
	rpc "token-minter/internal/solana"
	"token-minter/internal/storage"
	"token-minter/internal/token2022"
	"token-minter/internal/txsend"
	"token-minter/internal/wallet"
)

// Options for creating Finalizer.
type Options struct {
	// Required
	Store    storage.TokenRequestStore
	Pinner   pinning.Pinner
	RPC      rpc.RPCClient
	Sender   *txsend.Sender
	Operator wallet.Signer

	// Optional
	Journal    storage.StepJournal
	Commitment rpc.Commitment
	NewMint    func() (wallet.Signer, error) // defaults to a random keypair
	Memo       bool                          // tag create_mint with the request ID
}

// Finalizer runs the mint saga for one request at a time. It holds no
// per-request state and is safe for concurrent use.
type Finalizer struct {
	store      storage.TokenRequestStore
	pinner     pinning.Pinner
	rpc        rpc.RPCClient
	sender     *txsend.Sender
	operator   wallet.Signer
	journal    storage.StepJournal
	commitment rpc.Commitment
	newMint    func() (wallet.Signer, error)
	memo       bool
	log        *logrus.Entry
}

// New creates a new Finalizer.
func New(opts Options) *Finalizer {
	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentConfirmed
	}
	if opts.NewMint == nil {
		opts.NewMint = func() (wallet.Signer, error) {
			return wallet.GenerateKeypair()
		}
	}

	return &Finalizer{
		store:      opts.Store,
		pinner:     opts.Pinner,
		rpc:        opts.RPC,
		sender:     opts.Sender,
		operator:   opts.Operator,
		journal:    opts.Journal,
		commitment: opts.Commitment,
		newMint:    opts.NewMint,
		memo:       opts.Memo,
		log:        logger.NewSublogger("minting"),
	}
}

// saga carries the state of one run between steps.
type saga struct {
	f    *Finalizer
	id   string
	icon []byte

	req      *domain.TokenRequest
	owner    solana.PublicKey
	amount   uint64
	image    *domain.PinnedAsset
	metadata *domain.PinnedAsset
	mint     wallet.Signer
	minted   bool // create_mint landed
	ata      solana.PublicKey

	out *domain.MintedToken
}

// Finalize mints the token described by request transactionID. icon is the
// prepared PNG. Steps run in order and each on-chain step is confirmed
// before the next one starts. Nothing is rolled back: a failure after
// create_mint leaves a partially configured mint, reported through
// *StepError.
//
// Once started the saga runs to completion or to its first failed step;
// cancelling ctx does not stop it. Each step is still bounded by the RPC,
// pinning and confirmation timeouts.
func (f *Finalizer) Finalize(ctx context.Context, transactionID string, icon []byte) (*domain.MintedToken, error) {
	ctx = context.WithoutCancel(ctx)
	s := &saga{f: f, id: transactionID, icon: icon, out: &domain.MintedToken{}}

	for _, step := range []struct {
		name string
		fn   func(ctx context.Context) (string, error)
	}{
		{StepLoadRequest, s.loadRequest},
		{StepPinImage, s.pinImage},
		{StepPinMetadata, s.pinMetadata},
		{StepCreateMint, s.createMint},
		{StepCreateTokenAccount, s.createTokenAccount},
		{StepMintSupply, s.mintSupply},
		{StepSetMintAuthority, s.setMintAuthority},
		{StepSetFreezeAuthority, s.setFreezeAuthority},
	} {
		if err := s.run(ctx, step.name, step.fn); err != nil {
			return nil, err
		}
	}

	observability.RecordMinted()
	f.log.WithField("transaction_id", transactionID).
		WithField("mint", s.out.MintAddress).
		WithField("owner", s.out.Owner).
		Info("Token minted")

	return s.out, nil
}

func (s *saga) run(ctx context.Context, name string, fn func(ctx context.Context) (string, error)) error {
	start := time.Now()
	sig, err := fn(ctx)
	elapsed := time.Since(start)

	outcome := domain.StepOK
	if err != nil {
		outcome = domain.StepFailed
	}
	observability.RecordStep(name, string(outcome), elapsed)
	s.record(ctx, name, outcome, sig, err, start, elapsed)

	log := s.f.log.WithField("transaction_id", s.id).
		WithField("step", name).
		WithField("elapsed", elapsed.String())
	if sig != "" {
		log = log.WithField("signature", sig)
	}
	if err != nil {
		log.WithError(err).Error("Mint step failed")
		return s.fail(name, err)
	}
	log.Debug("Mint step done")
	return nil
}

func (s *saga) fail(step string, err error) *StepError {
	return &StepError{Step: step, MintAddress: s.mintAddress(), Err: err}
}

func (s *saga) mintAddress() string {
	if !s.minted {
		return ""
	}
	return s.mint.PublicKey().String()
}

// record journals a step. Journal failures never fail the saga.
func (s *saga) record(ctx context.Context, step string, outcome domain.StepOutcome, sig string, stepErr error, start time.Time, elapsed time.Duration) {
	if s.f.journal == nil {
		return
	}

	rec := &domain.StepRecord{
		TransactionID: s.id,
		Step:          step,
		Outcome:       outcome,
		MintAddress:   s.mintAddress(),
		Signature:     sig,
		DurationMs:    elapsed.Milliseconds(),
		StartedAt:     start.UTC(),
	}
	if stepErr != nil {
		rec.Error = stepErr.Error()
	}
	if err := s.f.journal.Record(ctx, rec); err != nil {
		s.f.log.WithError(err).WithField("step", step).Warn("Failed to journal mint step")
	}
}

func (s *saga) loadRequest(ctx context.Context) (string, error) {
	req, err := s.f.store.GetByID(ctx, s.id)
	if err != nil {
		return "", apperr.NotFound("token request "+s.id, err)
	}

	owner, err := solana.PublicKeyFromBase58(req.PayerAddress)
	if err != nil {
		return "", apperr.Validation("publicKey", "Invalid `publicKey`.")
	}
	amount, err := req.BaseUnits()
	if err != nil {
		return "", apperr.Validation("supply", "Supply is too large for the chosen decimals.")
	}

	s.req = req
	s.owner = owner
	s.amount = amount
	s.out.Owner = req.PayerAddress
	s.out.Decimals = req.Decimals
	s.out.AmountBaseUnits = amount
	return "", nil
}

func (s *saga) pinImage(ctx context.Context) (string, error) {
	if len(s.icon) == 0 {
		return "", apperr.Validation("tokenIcon", "Missing token icon.")
	}

	asset, err := s.f.pinner.PinFile(ctx, s.req.Symbol+".png", s.icon)
	if err == nil && asset.CID == "" {
		err = pinning.ErrEmptyCID
	}
	observability.RecordPin(string(domain.AssetImage), err)
	if err != nil {
		return "", apperr.Upload("pin token icon", err)
	}

	s.image = asset
	s.out.ImageURI = asset.GatewayURL
	return "", nil
}

func (s *saga) pinMetadata(ctx context.Context) (string, error) {
	doc := domain.NewOffChainMetadata(s.req, s.image.GatewayURL)

	asset, err := s.f.pinner.PinJSON(ctx, s.req.Symbol+"-metadata.json", doc)
	if err == nil && asset.CID == "" {
		err = pinning.ErrEmptyCID
	}
	observability.RecordPin(string(domain.AssetMetadata), err)
	if err != nil {
		return "", apperr.Upload("pin token metadata", err)
	}

	s.metadata = asset
	s.out.MetadataURI = asset.GatewayURL
	return "", nil
}

func (s *saga) createMint(ctx context.Context) (string, error) {
	mint, err := s.f.newMint()
	if err != nil {
		return "", apperr.Minting("generate mint keypair", err)
	}
	s.mint = mint

	operator := s.f.operator.PublicKey()
	plan := newMintPlan(s.req, operator, s.owner, mint.PublicKey(), s.metadata.GatewayURL)
	if s.f.memo {
		plan.memo = s.req.ID
	}

	lamports, err := s.f.rpc.GetMinimumBalanceForRentExemption(ctx, plan.rentSize(), s.f.commitment)
	if err != nil {
		return "", apperr.Network("fetch mint rent", err)
	}

	ixs, err := plan.instructions(lamports)
	if err != nil {
		return "", apperr.Minting("build mint instructions", err)
	}

	sig, err := s.f.sender.SendAndConfirm(ctx, ixs, s.f.operator, mint)
	if err != nil {
		return sig, err
	}

	s.minted = true
	s.out.MintAddress = mint.PublicKey().String()
	s.out.CreateSignature = sig
	if !s.req.RevokeUpdate {
		s.out.UpdateAuthority = &s.out.Owner
	}
	return sig, nil
}

func (s *saga) createTokenAccount(ctx context.Context) (string, error) {
	ix, ata, err := token2022.NewCreateIdempotentATAInstruction(s.f.operator.PublicKey(), s.owner, s.mint.PublicKey())
	if err != nil {
		return "", apperr.Minting("derive token account", err)
	}

	sig, err := s.f.sender.SendAndConfirm(ctx, []solana.Instruction{ix}, s.f.operator)
	if err != nil {
		return sig, err
	}

	s.ata = ata
	s.out.TokenAccount = ata.String()
	return sig, nil
}

func (s *saga) mintSupply(ctx context.Context) (string, error) {
	ix := mintTo(s.amount, s.req.Decimals, s.mint.PublicKey(), s.ata, s.f.operator.PublicKey())

	sig, err := s.f.sender.SendAndConfirm(ctx, []solana.Instruction{ix}, s.f.operator)
	if err != nil {
		return sig, err
	}
	s.out.MintToSignature = sig
	return sig, nil
}

func (s *saga) setMintAuthority(ctx context.Context) (string, error) {
	sig, err := s.setAuthority(ctx, token.AuthorityMintTokens, s.req.RevokeMint)
	if err == nil && !s.req.RevokeMint {
		s.out.MintAuthority = &s.out.Owner
	}
	return sig, err
}

func (s *saga) setFreezeAuthority(ctx context.Context) (string, error) {
	sig, err := s.setAuthority(ctx, token.AuthorityFreezeAccount, s.req.RevokeFreeze)
	if err == nil && !s.req.RevokeFreeze {
		s.out.FreezeAuthority = &s.out.Owner
	}
	return sig, err
}

func (s *saga) setAuthority(ctx context.Context, authorityType token.AuthorityType, revoke bool) (string, error) {
	operator := s.f.operator.PublicKey()
	ix := setAuthority(s.mint.PublicKey(), operator, s.owner, authorityType, revoke)

	sig, err := s.f.sender.SendAndConfirm(ctx, []solana.Instruction{ix}, s.f.operator)
	if err != nil {
		return sig, err
	}

	s.f.log.WithField("mint", s.mint.PublicKey().String()).
		WithField("authority", authorityName(authorityType)).
		WithField("revoked", revoke).
		Debug("Authority set")
	return sig, nil
}

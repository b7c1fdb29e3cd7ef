package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"token-minter/internal/api"
	"token-minter/internal/apperr"
	"token-minter/internal/config"
	"token-minter/internal/domain"
	"token-minter/internal/feetx"
	"token-minter/internal/logger"
	"token-minter/internal/minting"
	"token-minter/internal/observability"
	"token-minter/internal/pinning"
	rpc "token-minter/internal/solana"
	"token-minter/internal/storage"
	chstore "token-minter/internal/storage/clickhouse"
	"token-minter/internal/storage/memory"
	pgstore "token-minter/internal/storage/postgres"
	"token-minter/internal/submitter"
	"token-minter/internal/txsend"
	"token-minter/internal/wallet"
)

// app holds the process-wide components, built once and injected.
type app struct {
	server  *api.Server
	closers []func()
}

// stores holds the storage implementations.
type stores struct {
	requests storage.TokenRequestStore
	orders   storage.MintOrderStore
	journal  storage.StepJournal // nil when not journaling
	ping     api.HealthCheck     // nil in memory mode
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	self := new(app)
	defer func() {
		if err != nil {
			self.Close()
		}
	}()

	log := logger.NewSublogger("app")
	commitment := rpc.Commitment(cfg.Solana.Commitment)

	operator, err := wallet.KeypairFromBase58(cfg.Operator.SecretKey)
	if err != nil {
		return nil, apperr.Configuration("operator secret key", err)
	}

	st, err := self.createStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := rpc.NewHTTPClient(cfg.Solana.RPCEndpoint,
		rpc.WithTimeout(cfg.Solana.RPCTimeout),
		rpc.WithMaxRetries(cfg.Solana.MaxRetries),
		rpc.WithObserver(observability.RecordRPCCall),
	)

	var confirmer rpc.Confirmer = rpc.NewPollingConfirmer(client, rpc.ConfirmConfig{
		Commitment:      commitment,
		InitialInterval: cfg.Confirm.InitialInterval,
		MaxInterval:     cfg.Confirm.MaxInterval,
		MaxElapsed:      cfg.Confirm.MaxElapsed,
	}).WithNotify(func(err error, next time.Duration) {
		log.WithError(err).WithField("next", next.String()).Trace("Waiting for confirmation")
	})

	if cfg.Solana.WSEndpoint != "" {
		ws, err := rpc.NewWSClient(ctx, cfg.Solana.WSEndpoint, nil)
		if err != nil {
			// Polling alone still confirms.
			log.WithError(err).Warn("WebSocket unavailable, confirming by polling")
		} else {
			self.closers = append(self.closers, func() { _ = ws.Close() })
			confirmer = rpc.NewWSConfirmer(ws, confirmer, commitment)
		}
	}

	sender := txsend.New(client, confirmer, commitment)

	pinner := pinning.NewPinataClient(pinning.PinataConfig{
		APIURL:  cfg.Pinata.APIURL,
		JWT:     cfg.Pinata.JWT,
		Gateway: cfg.Pinata.Gateway,
		Timeout: cfg.Pinata.Timeout,
	})

	builder, err := feetx.New(feetx.Options{
		RPC:        client,
		Store:      st.requests,
		FeeAddress: cfg.Operator.FeeAddress,
		Schedule:   domain.FeeSchedule{Base: cfg.Fee.Base, Increment: cfg.Fee.Increment},
		Commitment: commitment,
	})
	if err != nil {
		return nil, err
	}

	finalizer := minting.New(minting.Options{
		Store:      st.requests,
		Pinner:     pinner,
		RPC:        client,
		Sender:     sender,
		Operator:   operator,
		Journal:    st.journal,
		Commitment: commitment,
		Memo:       cfg.Solana.MintMemo,
	})

	sub, err := submitter.New(submitter.Options{
		Requests:         st.requests,
		Orders:           st.orders,
		Sender:           sender,
		Finalizer:        finalizer,
		FeeAddress:       cfg.Operator.FeeAddress,
		IconMaxBytes:     cfg.Icon.MaxBytes,
		IconMaxDimension: cfg.Icon.MaxDimension,
		IconSize:         cfg.Icon.Size,
	})
	if err != nil {
		return nil, err
	}

	checks := map[string]api.HealthCheck{
		"rpc": func(ctx context.Context) error {
			_, err := client.GetBlockHeight(ctx, commitment)
			return err
		},
	}
	if st.ping != nil {
		checks["database"] = st.ping
	}

	self.server = api.NewServer(api.Options{
		ListenAddress: cfg.RESTListenAddress,
		StopTimeout:   cfg.StopTimeout,
		IconMaxBytes:  cfg.Icon.MaxBytes,
		FeeBuilder:    builder,
		Submitter:     sub,
		Inspector:     minting.NewInspector(client, st.orders, commitment),
		Checks:        checks,
		Metrics:       observability.Handler(),
	})

	log.WithFields(logrus.Fields{
		"operator":    operator.PublicKey().String(),
		"fee_address": builder.FeeAddress().String(),
		"rpc":         cfg.Solana.RPCEndpoint,
		"memory":      cfg.UseMemory,
	}).Info("Components ready")

	return self, nil
}

func (self *app) createStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	out := new(stores)

	if cfg.UseMemory {
		out.requests = memory.NewTokenRequestStore()
		out.orders = memory.NewMintOrderStore()
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.PingTimeout)
		pool, err := pgstore.NewPoolWithKey(pingCtx, cfg.Database.URL, cfg.Database.Key)
		cancel()
		if err != nil {
			return nil, apperr.Storage("connect to postgres", err)
		}
		self.closers = append(self.closers, pool.Close)

		out.requests = pgstore.NewTokenRequestStore(pool)
		out.orders = pgstore.NewMintOrderStore(pool)
		out.ping = func(ctx context.Context) error { return pool.Ping(ctx) }
	}

	journal, err := self.createJournal(ctx, cfg)
	if err != nil {
		return nil, err
	}
	out.journal = journal

	return out, nil
}

// createJournal returns the ClickHouse journal when a DSN is set, an
// in-memory one when everything runs in memory, and nil otherwise.
func (self *app) createJournal(ctx context.Context, cfg *config.Config) (storage.StepJournal, error) {
	switch {
	case cfg.ClickHouse.DSN != "":
		conn, err := chstore.NewConn(ctx, cfg.ClickHouse.DSN)
		if err != nil {
			return nil, apperr.Storage("connect to clickhouse", err)
		}
		self.closers = append(self.closers, func() { _ = conn.Close() })
		return chstore.NewStepJournal(conn), nil
	case cfg.UseMemory:
		return memory.NewStepJournal(), nil
	default:
		return nil, nil
	}
}

// Close releases connections in reverse order of creation.
func (self *app) Close() {
	for i := len(self.closers) - 1; i >= 0; i-- {
		self.closers[i]()
	}
	self.closers = nil
}

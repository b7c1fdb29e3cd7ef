// Package api exposes the minting flow over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"token-minter/internal/domain"
	"token-minter/internal/feetx"
	"token-minter/internal/logger"
	"token-minter/internal/minting"
	"token-minter/internal/submitter"
)

// FeeBuilder serves POST /transaction.
type FeeBuilder interface {
	Build(ctx context.Context, payer string, form *domain.TokenForm) (*feetx.BuildResult, error)
}

// Submitter serves POST /submit-transaction.
type Submitter interface {
	Submit(ctx context.Context, signedTx, transactionID string, icon io.Reader) (*submitter.Result, error)
}

// Inspector serves GET /token/:address.
type Inspector interface {
	Inspect(ctx context.Context, address string) (*minting.TokenInfo, error)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Options for creating Server.
type Options struct {
	ListenAddress string
	StopTimeout   time.Duration
	IconMaxBytes  int64

	FeeBuilder FeeBuilder
	Submitter  Submitter
	Inspector  Inspector // optional
	Checks     map[string]HealthCheck
	Metrics    http.Handler // optional
}

// Server is the REST API.
type Server struct {
	httpServer *http.Server
	Router     *gin.Engine

	stopTimeout  time.Duration
	iconMaxBytes int64
	feeBuilder   FeeBuilder
	submitter    Submitter
	inspector    Inspector
	checks       map[string]HealthCheck
	log          *logrus.Entry
}

// NewServer creates the server and registers its routes.
func NewServer(opts Options) (self *Server) {
	self = new(Server)
	self.log = logger.NewSublogger("api")
	self.stopTimeout = opts.StopTimeout
	self.iconMaxBytes = opts.IconMaxBytes
	if self.iconMaxBytes <= 0 {
		self.iconMaxBytes = 5 << 20
	}
	self.feeBuilder = opts.FeeBuilder
	self.submitter = opts.Submitter
	self.inspector = opts.Inspector
	self.checks = opts.Checks

	gin.SetMode(gin.ReleaseMode)
	self.Router = gin.New()
	self.Router.Use(gin.Recovery(), self.observe())

	// Multipart bodies above this are spooled to disk; the icon limit is
	// enforced separately.
	self.Router.MaxMultipartMemory = self.iconMaxBytes + 1<<20

	self.Router.POST("/transaction", self.onPostTransaction)
	self.Router.POST("/submit-transaction", self.onSubmitTransaction)
	self.Router.GET("/health", self.onGetHealth)
	if self.inspector != nil {
		self.Router.GET("/token/:address", self.onGetToken)
	}
	if opts.Metrics != nil {
		self.Router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	self.httpServer = &http.Server{
		Addr:              opts.ListenAddress,
		Handler:           self.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return
}

// Run serves until Stop is called.
func (self *Server) Run() error {
	self.log.WithField("addr", self.httpServer.Addr).Info("Starting REST server")

	err := self.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		self.log.WithError(err).Error("Failed to start REST server")
		return err
	}
	return nil
}

// Stop shuts the server down, waiting up to the stop timeout for
// in-flight requests.
func (self *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.stopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}

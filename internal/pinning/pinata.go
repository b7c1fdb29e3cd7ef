package pinning

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"token-minter/internal/domain"
	"token-minter/internal/logger"
)

// PinataConfig configures the Pinata client.
type PinataConfig struct {
	APIURL  string
	JWT     string
	Gateway string // host of the dedicated gateway
	Timeout time.Duration
}

// PinataClient implements Pinner with Pinata's pinning API.
type PinataClient struct {
	config PinataConfig
	client *resty.Client
	log    *logrus.Entry
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinJSONRequest struct {
	PinataContent  interface{}    `json:"pinataContent"`
	PinataMetadata pinataMetadata `json:"pinataMetadata"`
}

type pinataMetadata struct {
	Name string `json:"name"`
}

// NewPinataClient creates a Pinata client.
func NewPinataClient(config PinataConfig) *PinataClient {
	self := &PinataClient{
		config: config,
		log:    logger.NewSublogger("pinata"),
	}
	if self.config.Timeout <= 0 {
		self.config.Timeout = 60 * time.Second
	}

	self.client = resty.New().
		SetBaseURL(strings.TrimRight(config.APIURL, "/")).
		SetTimeout(self.config.Timeout).
		SetAuthToken(config.JWT).
		SetHeader("User-Agent", "token-minter").
		SetLogger(logger.NewRestyLogger("pinata-http")).
		SetTransport(createTransport()).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(onRetryCondition).
		OnAfterResponse(self.onStatusToError)
	return self
}

func createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		ForceAttemptHTTP2:     true,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
	}
}

// Converts HTTP status to errors
func (self *PinataClient) onStatusToError(c *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	self.log.WithField("status", resp.StatusCode()).
		WithField("resp", string(resp.Body())).
		WithField("url", resp.Request.URL).
		Debug("Pinning request failed")
	return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status())
}

// Retry request only upon server errors and rate limits
func onRetryCondition(resp *resty.Response, err error) bool {
	if resp == nil {
		return false
	}
	return resp.StatusCode() >= 500 || resp.StatusCode() == http.StatusTooManyRequests
}

// PinFile uploads data as a multipart file.
func (self *PinataClient) PinFile(ctx context.Context, name string, data []byte) (*domain.PinnedAsset, error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetFileReader("file", name, bytes.NewReader(data)).
		SetMultipartFormData(map[string]string{
			"pinataMetadata": fmt.Sprintf(`{"name":%q}`, name),
		}).
		SetResult(&pinResponse{}).
		Post("/pinning/pinFileToIPFS")
	if err != nil {
		return nil, fmt.Errorf("pin file %s: %w", name, err)
	}
	return self.asset(resp, domain.AssetImage)
}

// PinJSON uploads v as a JSON document.
func (self *PinataClient) PinJSON(ctx context.Context, name string, v interface{}) (*domain.PinnedAsset, error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetBody(pinJSONRequest{
			PinataContent:  v,
			PinataMetadata: pinataMetadata{Name: name},
		}).
		SetResult(&pinResponse{}).
		ForceContentType("application/json").
		Post("/pinning/pinJSONToIPFS")
	if err != nil {
		return nil, fmt.Errorf("pin json %s: %w", name, err)
	}
	return self.asset(resp, domain.AssetMetadata)
}

func (self *PinataClient) asset(resp *resty.Response, kind domain.AssetKind) (*domain.PinnedAsset, error) {
	out, ok := resp.Result().(*pinResponse)
	if !ok || out == nil || out.IpfsHash == "" {
		return nil, ErrEmptyCID
	}

	self.log.WithField("cid", out.IpfsHash).WithField("kind", kind).Debug("Pinned")

	return &domain.PinnedAsset{
		CID:        out.IpfsHash,
		GatewayURL: GatewayURL(self.config.Gateway, out.IpfsHash),
		Kind:       kind,
		Size:       out.PinSize,
	}, nil
}

// GatewayURL is the public address of cid behind gateway.
func GatewayURL(gateway, cid string) string {
	gateway = strings.TrimPrefix(strings.TrimPrefix(gateway, "https://"), "http://")
	return "https://" + strings.TrimRight(gateway, "/") + "/ipfs/" + cid
}

var _ Pinner = (*PinataClient)(nil)

package callback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"callback/internal/pkg/errors"
)

const (
	SignatureHeader = "X-Signature"
	DeliveryHeader  = "X-Callback-Delivery"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Response struct {
	DeliveryID string
	StatusCode int
	Status     string
	Body       []byte
}

// Failed reports whether the endpoint answered with a client or server error.
func (r *Response) Failed() bool {
	return r.StatusCode >= 400
}

type Client struct {
	doer            Doer
	timeout         time.Duration
	signatureHeader string
}

type ClientOption func(*Client)

// WithTimeout bounds the whole round trip, body included. Zero disables it.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

func WithSignatureHeader(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.signatureHeader = name
		}
	}
}

func NewClient(doer Doer, opts ...ClientOption) *Client {
	if doer == nil {
		doer = &http.Client{}
	}
	c := &Client{doer: doer, signatureHeader: SignatureHeader}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send POSTs payload to endpoint exactly once. The body written is payload
// itself, so the signature stays valid at the receiver. Failures never retry
// and are logged at debug level only; reporting them is the caller's job.
func (c *Client) Send(ctx context.Context, endpoint string, payload []byte, signature string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &errors.TransportError{Op: "build request", URL: endpoint, Err: err}
	}

	deliveryID := uuid.New().String()
	req.ContentLength = int64(len(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.signatureHeader, signature)
	req.Header.Set(DeliveryHeader, deliveryID)

	logger := log.With().Str("delivery_id", deliveryID).Str("url", endpoint).Logger()
	logger.Debug().Int("bytes", len(payload)).Msg("sending callback")

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		logger.Debug().Err(err).Dur("duration", time.Since(start)).Msg("callback request failed")
		return nil, &errors.TransportError{Op: "POST", URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Debug().Err(err).Int("status", resp.StatusCode).Msg("failed to read callback response")
		return nil, &errors.TransportError{Op: "read response", URL: endpoint, Err: fmt.Errorf("status %d: %w", resp.StatusCode, err)}
	}

	logger.Info().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("callback delivered")

	return &Response{
		DeliveryID: deliveryID,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
	}, nil
}

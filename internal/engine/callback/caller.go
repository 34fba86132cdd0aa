package callback

import (
	"context"

	"callback/internal/pkg/errors"
	"callback/internal/platform/config"
)

// Caller runs the signed callback pipeline: load secret, build payload,
// sign, send.
type Caller struct {
	cfg    *config.Config
	client *Client
}

func NewCaller(cfg *config.Config, doer Doer) *Caller {
	return &Caller{
		cfg: cfg,
		client: NewClient(doer,
			WithTimeout(cfg.Callback.Timeout),
			WithSignatureHeader(cfg.Callback.SignatureHeader),
		),
	}
}

// Call signs args and delivers them to the configured endpoint. A
// configuration failure is returned before the network is touched.
func (c *Caller) Call(ctx context.Context, args []string) (*Response, error) {
	secret, err := LoadSecretKey(c.cfg.Secret.File, c.cfg.Secret.Key)
	if err != nil {
		return nil, err
	}

	payload, err := BuildPayload(args)
	if err != nil {
		return nil, &errors.ConfigurationError{Err: err}
	}

	signature := c.cfg.Callback.SignaturePrefix + Sign(payload, secret)

	return c.client.Send(ctx, c.cfg.Callback.URL(), payload, signature)
}

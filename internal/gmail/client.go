package gmail

import (
	"context"
	"fmt"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/aura-assistant/aura/internal/google"
	"github.com/aura-assistant/aura/internal/instrumentation"
)

// Client wraps the Gmail Users service
type Client struct {
	svc     *gmail.UsersService
	account string // The account this client is associated with
	metrics *instrumentation.Metrics
}

// NewClient creates a Gmail client from explicit API options.
func NewClient(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users, account: account}, nil
}

// NewClientForAccount creates a Gmail client authorized with the stored token of account.
func NewClientForAccount(ctx context.Context, config google.Config, provider google.TokenProvider, account string) (*Client, error) {
	opts, err := google.ClientOptions(ctx, config, provider, account)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, account, opts...)
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// SetMetrics enables Google API metrics for the client.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

func (c *Client) track(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := instrumentation.StartClientSpan(ctx, instrumentation.ServiceGmail, op)
	start := time.Now()
	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, op, status, time.Since(start))
		instrumentation.EndSpan(span, err)
	}
}

package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/rakapradana/kasirpoint-backend/pkg/config"
	"github.com/rakapradana/kasirpoint-backend/pkg/logger"
)

var errProjectIDRequired = errors.New("gcp project id is required")

// Client publishes domain events to the configured Pub/Sub topic.
type Client struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	projectID string
}

// NewClient creates a Pub/Sub client bound to the transaction events topic.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	if strings.TrimSpace(cfg.TransactionTopic) == "" {
		return nil, errors.New("pubsub topic name is required")
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:    psClient,
		publisher: psClient.Publisher(cfg.TransactionTopic),
		projectID: gcp.ProjectID,
	}

	if logg != nil {
		logg.Info(ctx, "pubsub client initialized")
	}

	return c, nil
}

// Publish sends the payload with the provided attributes and waits for the
// server-assigned message id.
func (c *Client) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	if c == nil || c.publisher == nil {
		return "", errors.New("pubsub client not initialized")
	}
	result := c.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publishing message: %w", err)
	}
	return id, nil
}

// Close stops the publisher and releases the underlying connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.publisher != nil {
		c.publisher.Stop()
	}
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

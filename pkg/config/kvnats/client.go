// Package kvnats backs config.KVStore with a NATS JetStream key-value bucket.
package kvnats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/rscapture/pkg/config"
)

const DefaultBucket = "rscapture-config"

type Client struct {
	nc     *nats.Conn
	ownsNC bool
	kv     jetstream.KeyValue
	bucket string
}

var _ config.KVStore = (*Client)(nil)

// Connect dials url and opens the bucket, creating it if needed. The
// returned client closes the connection on Close.
func Connect(ctx context.Context, url, bucket string) (*Client, error) {
	nc, err := nats.Connect(url, nats.Name("rscapture-config"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	c, err := New(ctx, nc, bucket)
	if err != nil {
		nc.Close()

		return nil, err
	}

	c.ownsNC = true

	return c, nil
}

// New opens the bucket on an existing connection, creating it if needed.
func New(ctx context.Context, nc *nats.Conn, bucket string) (*Client, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
	if err != nil {
		return nil, fmt.Errorf("failed to open KV bucket %s: %w", bucket, err)
	}

	return &Client{nc: nc, kv: kv, bucket: bucket}, nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return entry.Value(), true, nil
}

func (c *Client) Put(ctx context.Context, key string, value []byte) error {
	_, err := c.kv.Put(ctx, key, value)

	return err
}

func (c *Client) Create(ctx context.Context, key string, value []byte) error {
	_, err := c.kv.Create(ctx, key, value)
	if errors.Is(err, jetstream.ErrKeyExists) {
		return config.ErrKeyExists
	}

	return err
}

func (c *Client) Close() error {
	if c.ownsNC {
		c.nc.Close()
	}

	return nil
}

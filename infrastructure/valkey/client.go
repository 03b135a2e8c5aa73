package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	valkeylib "github.com/valkey-io/valkey-go"
)

const defaultConnectTimeout = 5 * time.Second

type Config struct {
	Address        string
	Password       string
	DB             int
	KeyPrefix      string
	ConnectTimeout time.Duration
}

// Client is the shared Valkey connection used by the ad index and health checks.
type Client struct {
	inner  valkeylib.Client
	prefix string
}

// NewClient dials Valkey and verifies the connection with a PING.
func NewClient(cfg Config) (*Client, error) {
	opts := valkeylib.ClientOption{
		InitAddress:  []string{cfg.Address},
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	}

	inner, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c := Wrap(inner, cfg.KeyPrefix)
	if err := c.Ping(ctx); err != nil {
		inner.Close()
		return nil, fmt.Errorf("ping valkey at %s: %w", cfg.Address, err)
	}

	logrus.WithField("address", cfg.Address).Info("[VALKEY] Connected")
	return c, nil
}

// Wrap builds a Client around an existing connection.
func Wrap(inner valkeylib.Client, keyPrefix string) *Client {
	prefix := strings.TrimSuffix(keyPrefix, ":")
	if prefix != "" {
		prefix += ":"
	}
	return &Client{inner: inner, prefix: prefix}
}

func (c *Client) Inner() valkeylib.Client {
	return c.inner
}

func (c *Client) Close() {
	if c.inner != nil {
		c.inner.Close()
	}
}

// Key joins parts with ':' under the configured prefix.
// Key("ad", "42") -> "adlib:ad:42"
func (c *Client) Key(parts ...string) string {
	return c.prefix + strings.Join(parts, ":")
}

func (c *Client) Ping(ctx context.Context) error {
	return c.inner.Do(ctx, c.inner.B().Ping().Build()).Error()
}

// IsNil reports whether err is a Valkey nil reply.
func IsNil(err error) bool {
	return valkeylib.IsValkeyNil(err)
}

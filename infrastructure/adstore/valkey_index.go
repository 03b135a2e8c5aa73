package adstore

import (
	"context"
	"fmt"
	"time"

	"github.com/AzielCF/az-adlib/infrastructure/valkey"
	valkeylib "github.com/valkey-io/valkey-go"
)

// ValkeyAdIndex stores the ad id → page URL index as plain string keys.
// Keys carry the cache retention as TTL so they expire with the rows they point to.
type ValkeyAdIndex struct {
	client *valkey.Client
	ttl    time.Duration
}

func NewValkeyAdIndex(client *valkey.Client, ttl time.Duration) *ValkeyAdIndex {
	return &ValkeyAdIndex{client: client, ttl: ttl}
}

func (v *ValkeyAdIndex) inner() valkeylib.Client {
	return v.client.Inner()
}

func (v *ValkeyAdIndex) key(id string) string {
	return v.client.Key("ad", id)
}

func (v *ValkeyAdIndex) Put(ctx context.Context, pageURL string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	cmds := make(valkeylib.Commands, 0, len(ids))
	for _, id := range ids {
		if v.ttl > 0 {
			cmds = append(cmds, v.inner().B().Set().Key(v.key(id)).Value(pageURL).Ex(v.ttl).Build())
		} else {
			cmds = append(cmds, v.inner().B().Set().Key(v.key(id)).Value(pageURL).Build())
		}
	}

	for i, resp := range v.inner().DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("index ad %s: %w", ids[i], err)
		}
	}
	return nil
}

func (v *ValkeyAdIndex) Lookup(ctx context.Context, id string) (string, bool, error) {
	pageURL, err := v.inner().Do(ctx, v.inner().B().Get().Key(v.key(id)).Build()).ToString()
	if err != nil {
		if valkey.IsNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return pageURL, true, nil
}

func (v *ValkeyAdIndex) Remove(ctx context.Context, id string) error {
	return v.inner().Do(ctx, v.inner().B().Del().Key(v.key(id)).Build()).Error()
}

package cache

import (
	"context"
	"time"

	"github.com/matzehuels/lazydeps/pkg/observability"
)

// hooked reports cache traffic to the registered observability cache hooks.
type hooked struct {
	Cache
}

// WithHooks wraps c so that every Get reports a hit or a miss and every
// successful Set reports its size to [observability.Cache]. Hooks are looked
// up per call, so hooks registered after wrapping are honored.
func WithHooks(c Cache) Cache {
	return hooked{Cache: c}
}

func (h hooked) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := h.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (h hooked) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := h.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

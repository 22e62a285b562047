package metadata

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	KeySession = "session"
	KeyView    = "dashboard_view"
)

// GetJSON decodes the value at key into v. found is false when the key is
// absent, in which case v is untouched.
func GetJSON(ctx context.Context, r Repository, key string, v any) (found bool, err error) {
	b, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("failed to decode metadata[%s]: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v encoded as JSON at key.
func SetJSON(ctx context.Context, r Repository, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode metadata[%s]: %w", key, err)
	}
	return r.Set(ctx, key, b)
}

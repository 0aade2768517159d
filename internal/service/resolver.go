package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/guttosm/freightrates/internal/storage"
)

// LocationResolver turns a user-supplied location token into port codes.
type LocationResolver struct {
	store storage.LocationStore
}

func NewLocationResolver(store storage.LocationStore) *LocationResolver {
	return &LocationResolver{store: store}
}

// Resolve returns the sorted, de-duplicated port codes beneath token when it
// names a region, and [token] otherwise. Unknown tokens are not an error.
func (r *LocationResolver) Resolve(ctx context.Context, token string) ([]string, error) {
	codes, err := r.store.PortCodesUnder(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", token, err)
	}
	if len(codes) == 0 {
		return []string{token}, nil
	}

	sort.Strings(codes)
	out := codes[:0]
	for i, c := range codes {
		if i == 0 || c != codes[i-1] {
			out = append(out, c)
		}
	}
	return out, nil
}

package verify

import (
	"context"
	"strings"

	"github.com/adboardapp/adboard/internal/repositories/metadata"
)

// PurgeRecords removes every outstanding verification record from the
// local store. Codes are bound to a login attempt; after a logout they
// have no value and only accumulate.
func PurgeRecords(ctx context.Context, meta metadata.Repository) error {
	all, err := meta.List(ctx)
	if err != nil {
		return err
	}
	for key := range all {
		if !strings.HasPrefix(key, codeKeyPrefix) {
			continue
		}
		if err := meta.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Package store persists identity records keyed by normalized alias.
package store

import (
	"context"

	"github.com/ConTROLLAPP/controll/identity"
)

// Store is the persistence boundary for identity records. Keys are
// normalized aliases (identity.NormalizeAlias); Save overwrites any prior
// value for the key.
type Store interface {
	// Load returns the stored record for key, or identity.ErrRecordNotFound.
	// A stored record that fails validation is treated as absent.
	Load(ctx context.Context, key string) (*identity.Record, error)

	// Save durably stores a record under key, replacing any prior value.
	Save(ctx context.Context, key string, rec *identity.Record) error

	// Update runs fn under the per-key lock: it loads the current record
	// (nil if absent), applies fn, and saves the result. This is the safe
	// path for concurrent scans of the same identity.
	Update(ctx context.Context, key string, fn func(current *identity.Record) (*identity.Record, error)) error

	// FindByContact returns the first stored record whose email or phone
	// matches exactly, for cross-operator alert lookups. Returns
	// identity.ErrRecordNotFound when nothing matches.
	FindByContact(ctx context.Context, email, phone string) (*identity.Record, error)

	// Purge removes the record for key. Removing an absent key is not an
	// error; purging is the only deletion path.
	Purge(ctx context.Context, key string) error
}

// Package kvstore defines the narrow, total interface the core consumes
// from the external key-value store (spec.md §2 component 1, §4.1,
// §6 "KV contract"). The core assumes only by-key semantics: no
// transactions, no ordering, no partial reads of a value.
//
// Grounded on the shape of the teacher's gcs.Bucket collaborator
// (gcs/bucket.go): a narrow interface pre-bound to its backing store,
// consumed by name/key rather than by path.
package kvstore

import (
	"context"

	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
)

// Store is the KV adapter contract. Every method is total with respect to
// its success path (spec.md §4.1): any underlying driver error is wrapped
// as KindInternal and is fatal to the current gateway operation.
type Store interface {
	// Fetch loads the value stored at key. Returns a *kvfserrors.Error of
	// KindNoEntry if the key is absent.
	Fetch(ctx context.Context, key identifier.ID) ([]byte, error)

	// Store writes value at key, creating or overwriting it.
	Store(ctx context.Context, key identifier.ID, value []byte) error

	// Delete removes key. Returns KindNoEntry if it was already absent.
	Delete(ctx context.Context, key identifier.ID) error

	// Exists reports whether key is present, without fetching its value.
	Exists(ctx context.Context, key identifier.ID) (bool, error)
}

// RootKey is the well-known KV entry holding the root directory's FCB
// identifier (spec.md §3 "Root pointer", §6 "Root object"). It is a fixed,
// non-random key so every mount of the same store finds the same root.
var RootKey identifier.ID = identifier.ID{'k', 'v', 'f', 's', 'f', 'u', 's', 'e', ':', 'r', 'o', 'o', 't', 0, 0, 0}

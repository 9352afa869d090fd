// Package identifier generates the 128-bit identifiers used as KV keys
// throughout the tree: FCB ids, index block ids, and data block ids
// (spec.md §2 component 2, §3 "Identifier").
//
// Grounded on the teacher's use of github.com/google/uuid for inode/object
// identity (go.mod require github.com/google/uuid).
package identifier

import "github.com/google/uuid"

// ID is a 16-byte opaque key, used both inside the core and as the KV key.
type ID [16]byte

// Nil is the zero identifier. No live FCB, index block, or data block ever
// has this id; index blocks and free directory slots use it as a "no value"
// sentinel, and the open-file table returns it alongside an error.
var Nil ID

// New returns a fresh identifier with negligible collision probability.
func New() ID {
	return ID(uuid.New())
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Parse decodes the canonical UUID string form back into an ID.
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, err
	}
	return ID(u), nil
}

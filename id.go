package paystream

import "github.com/xraph/paystream/id"

// ID is the primary identifier type for all paystream entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

package commission

import "github.com/google/uuid"

// IDGenerator produces fresh identifiers for sales, entries and payments.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string { return uuid.NewString() }

package blob

import (
	memorystore "airportcore/internal/infra/blob/memory"
)

// NewMemory returns an in-memory Store.
func NewMemory() Store { return memorystore.New() }

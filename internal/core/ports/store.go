package ports

import "github.com/vestige-research/eeg-alpha/internal/core/domain"

// StampStore defines the interface for storing and retrieving provisioning stamps.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StampStore interface {
	// Get retrieves the stamp with the given name under root.
	// Returns nil, nil if not found.
	Get(root, name string) (*domain.Stamp, error)

	// Put stores the stamp under root.
	Put(root string, stamp domain.Stamp) error
}

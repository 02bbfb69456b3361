package ports

import "github.com/vestige-research/eeg-alpha/internal/core/domain"

// Hasher defines the interface for computing provisioning fingerprints.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// Fingerprint summarizes everything setup installs: the manifest content,
	// the tool list, the hook types and the interpreter version.
	Fingerprint(root string, b domain.Bootstrap, interpreterVersion string) (string, error)
}

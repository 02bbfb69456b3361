package ports

// Remover deletes project paths matched by glob patterns.
//
//go:generate mockgen -source=remover.go -destination=mocks/mock_remover.go -package=mocks
type Remover interface {
	// Remove deletes every path under root matching pattern and returns the
	// removed paths relative to root. A pattern that matches nothing is not an
	// error.
	Remove(root, pattern string) ([]string, error)
}

package fs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes provisioning fingerprints.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return hasher.Sum64(), nil
}

// Fingerprint computes a single hash over everything setup installs.
// List order matters: reordering tools changes the install command and so the fingerprint.
func (h *Hasher) Fingerprint(root string, b domain.Bootstrap, interpreterVersion string) (string, error) {
	hasher := xxhash.New()

	writeField(hasher, b.Interpreter)
	writeField(hasher, interpreterVersion)
	writeField(hasher, b.EnvDir)
	writeList(hasher, b.Tools)
	writeList(hasher, b.Hooks)

	writeField(hasher, b.Manifest)
	if b.Manifest != "" {
		path := filepath.Join(root, b.Manifest)
		sum, err := h.ComputeFileHash(path)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				return "", zerr.With(zerr.Wrap(domain.ErrManifestNotFound, b.Manifest), "path", path)
			}
			return "", err
		}
		if err := binary.Write(hasher, binary.LittleEndian, sum); err != nil {
			return "", zerr.Wrap(err, "failed to write hash to digest")
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func writeField(hasher *xxhash.Digest, s string) {
	_, _ = hasher.WriteString(s)
	_, _ = hasher.Write([]byte{0})
}

func writeList(hasher *xxhash.Digest, items []string) {
	for _, item := range items {
		writeField(hasher, item)
	}
	_, _ = hasher.Write([]byte{0}) // Section separator
}

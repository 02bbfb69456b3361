package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

var _ ports.Remover = (*Remover)(nil)

// Remover deletes paths matched by shell glob patterns, with ** matching
// any number of directories.
type Remover struct{}

// NewRemover creates a new Remover.
func NewRemover() *Remover {
	return &Remover{}
}

// Remove deletes every path under root matching pattern.
// Matches that do not exist by the time they are removed are skipped.
func (r *Remover) Remove(root, pattern string) ([]string, error) {
	matches, err := r.Match(root, pattern)
	if err != nil {
		return nil, err
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve project root"), "root", root)
	}

	var (
		removed []string
		errs    error
	)
	for _, rel := range matches {
		target := filepath.Join(rootAbs, rel)
		if _, statErr := os.Lstat(target); errors.Is(statErr, iofs.ErrNotExist) {
			// An earlier match already removed a parent directory.
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, domain.ErrRemoveFailed.Error()), "path", rel))
			continue
		}
		removed = append(removed, rel)
	}
	return removed, errs
}

// Match expands pattern relative to root and returns the matching paths,
// relative to root and sorted. A pattern that matches nothing yields no paths.
func (r *Remover) Match(root, pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" || filepath.IsAbs(pattern) {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, "empty or absolute pattern"), "pattern", pattern)
	}

	var words []*syntax.Word
	err := syntax.NewParser().Words(strings.NewReader(pattern), func(w *syntax.Word) bool {
		words = append(words, w)
		return true
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidPattern.Error()), "pattern", pattern)
	}
	if len(words) != 1 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, "expected a single path"), "pattern", pattern)
	}
	// A leading **/ also matches at the top level.
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		top, err := r.Match(root, rest)
		if err != nil {
			return nil, err
		}
		deeper, err := r.expand(root, pattern, words[0])
		if err != nil {
			return nil, err
		}
		matches := append(top, deeper...)
		slices.Sort(matches)
		return slices.Compact(matches), nil
	}
	return r.expand(root, pattern, words[0])
}

func (r *Remover) expand(root, pattern string, word *syntax.Word) ([]string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve project root"), "root", root)
	}

	cfg := &expand.Config{
		Env:      expand.ListEnviron("PWD=" + rootAbs),
		ReadDir2: os.ReadDir,
		GlobStar: true,
		NullGlob: true,
	}
	fields, err := expand.Fields(cfg, word)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidPattern.Error()), "pattern", pattern)
	}

	var matches []string
	for _, field := range fields {
		rel := filepath.Clean(field)
		if filepath.IsAbs(rel) {
			if rel, err = filepath.Rel(rootAbs, rel); err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidPattern.Error()), "pattern", pattern)
			}
		}
		if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, "path escapes project root"), "pattern", pattern)
		}
		if _, statErr := os.Lstat(filepath.Join(rootAbs, rel)); statErr != nil {
			// Literal patterns are passed through unexpanded even when absent.
			continue
		}
		matches = append(matches, rel)
	}

	slices.Sort(matches)
	return slices.Compact(matches), nil
}

package domain

import "path/filepath"

const (
	// ChoreDirName is the name of the internal state directory.
	ChoreDirName = ".chore"

	// StoreDirName is the name of the stamp store directory.
	StoreDirName = "store"

	// ConfigFileName is the name of the YAML project configuration file.
	ConfigFileName = "chore.yaml"

	// TOMLConfigFileName is the name of the TOML project configuration file.
	TOMLConfigFileName = "chore.toml"

	// DefaultEnvDir is the default virtual environment directory.
	DefaultEnvDir = ".venv"

	// SetupStampName is the stamp key under which setup records its fingerprint.
	SetupStampName = "setup"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultStorePath returns the default path for the stamp store.
// It joins .chore and store.
func DefaultStorePath() string {
	return filepath.Join(ChoreDirName, StoreDirName)
}

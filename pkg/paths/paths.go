// Package paths provides centralized path handling for camstack.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for locating the pipeline file and the
// state directory.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfig points directly at a pipeline file
	EnvConfig = "CAMSTACK_CONFIG"
)

const (
	// AppDirName is the directory name for camstack-specific files
	AppDirName = "camstack"

	// ConfigFileName is the name of the pipeline declaration file
	ConfigFileName = "camstack.toml"

	// LogFileName is the name of the log file
	LogFileName = "camstack.log"
)

// ConfigFilePath resolves the pipeline file location. Resolution order:
// the explicit flag value, $CAMSTACK_CONFIG, the XDG config directory,
// then the working directory. An empty return means no file was found
// and the embedded default pipeline applies.
func ConfigFilePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}

	candidates := []string{
		filepath.Join(xdg.ConfigHome, AppDirName, ConfigFileName),
		ConfigFileName,
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// StateDir returns the XDG state directory for camstack
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppDirName)
}

// LogFilePath returns the path of the append-mode log file
func LogFilePath() string {
	return filepath.Join(StateDir(), LogFileName)
}

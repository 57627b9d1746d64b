package profile

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.disa, or $DISA_HOME when set.
func BaseDir() string {
	if dir := os.Getenv("DISA_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".disa")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// SocketPath returns the UDS socket path for a profile.
func SocketPath(name string) string {
	return filepath.Join(Dir(name), "daemon.sock")
}

// LockPath returns the lock file path for a profile.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// AppDBPath returns the disa.db path holding the credential entries.
func AppDBPath(name string) string {
	return filepath.Join(Dir(name), "disa.db")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the daemon log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "disad.log")
}

// ClientLogPath returns the log file used by the TUI and CLI.
func ClientLogPath(name, binary string) string {
	return filepath.Join(LogDir(name), binary+".log")
}

// ExportsDir is where shared transcripts are written.
func ExportsDir(name string) string {
	return filepath.Join(Dir(name), "exports")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
		ExportsDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}

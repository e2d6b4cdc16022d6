// Package keys locates the private key used to authenticate an SSH
// connection.
package keys

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/rstat/internal/errors"
)

// DefaultKeyNames are the files searched under ~/.ssh when no key path is
// configured, in preference order.
var DefaultKeyNames = []string{"id_ed25519", "id_ecdsa", "id_rsa", "id_dsa"}

// Resolver returns private key bytes for a connection.
//
// With a non-empty keyPath the file must be readable. With an empty keyPath
// the resolver searches its default locations and returns (nil, nil) when
// nothing is found, leaving the transport to fall back to agent auth.
type Resolver interface {
	Resolve(keyPath string) ([]byte, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(keyPath string) ([]byte, error)

// Resolve calls f(keyPath).
func (f ResolverFunc) Resolve(keyPath string) ([]byte, error) {
	return f(keyPath)
}

// FileResolver reads keys from the local filesystem.
type FileResolver struct {
	// Home replaces the user's home directory for ~ expansion and the
	// default search. Empty means os.UserHomeDir.
	Home string
	// Names overrides DefaultKeyNames.
	Names []string
}

// NewFileResolver returns a resolver rooted at the user's home directory.
func NewFileResolver() *FileResolver {
	return &FileResolver{}
}

// Resolve implements Resolver.
func (r *FileResolver) Resolve(keyPath string) ([]byte, error) {
	if keyPath != "" {
		path, err := r.Expand(keyPath)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrSSH,
				fmt.Sprintf("Can't read SSH key %s", path),
				"Check the key path and its permissions (chmod 600)")
		}
		return data, nil
	}

	for _, path := range r.Candidates() {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
	}
	return nil, nil
}

// Candidates returns the default key paths in search order.
func (r *FileResolver) Candidates() []string {
	home, err := r.home()
	if err != nil {
		return nil
	}

	names := r.Names
	if len(names) == 0 {
		names = DefaultKeyNames
	}

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(home, ".ssh", name)
	}
	return paths
}

// Expand replaces a leading ~ with the home directory.
func (r *FileResolver) Expand(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := r.home()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to determine home directory",
			"Set HOME or use an absolute key path")
	}
	return filepath.Join(home, path[1:]), nil
}

func (r *FileResolver) home() (string, error) {
	if r.Home != "" {
		return r.Home, nil
	}
	return os.UserHomeDir()
}

// KeyInfo describes a private key found on disk.
type KeyInfo struct {
	Path      string
	Type      string
	HasPublic bool
}

// Find lists the default keys that exist, in search order.
func (r *FileResolver) Find() []KeyInfo {
	var found []KeyInfo
	for _, path := range r.Candidates() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_, pubErr := os.Stat(path + ".pub")
		found = append(found, KeyInfo{
			Path:      path,
			Type:      inferKeyType(path),
			HasPublic: pubErr == nil,
		})
	}
	return found
}

// inferKeyType determines key type from filename.
func inferKeyType(path string) string {
	base := filepath.Base(path)
	switch {
	case strings.Contains(base, "ed25519"):
		return "ed25519"
	case strings.Contains(base, "ecdsa"):
		return "ecdsa"
	case strings.Contains(base, "rsa"):
		return "rsa"
	case strings.Contains(base, "dsa"):
		return "dsa"
	default:
		return "unknown"
	}
}

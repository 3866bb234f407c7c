package collect

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Store lays out the lab workspace and writes per-device artifacts.
// The layout matches what the containerlab descriptor references:
//
//	<output>/<site>/nodes/configs/<name>.cfg
//	<output>/<site>/nodes/sn/<name>.txt
type Store struct {
	root string
}

// NewStore creates a store rooted at <outputDir>/<lowercased site>
func NewStore(outputDir, site string) *Store {
	return &Store{root: filepath.Join(outputDir, strings.ToLower(site))}
}

// Root returns the lab workspace directory
func (s *Store) Root() string { return s.root }

// ConfigsDir returns the running-config artifact directory
func (s *Store) ConfigsDir() string { return filepath.Join(s.root, "nodes", "configs") }

// SerialDir returns the identity artifact directory
func (s *Store) SerialDir() string { return filepath.Join(s.root, "nodes", "sn") }

// ConfigPath returns the running-config artifact path for a device
func (s *Store) ConfigPath(name string) string {
	return filepath.Join(s.ConfigsDir(), name+".cfg")
}

// IdentityPath returns the identity artifact path for a device
func (s *Store) IdentityPath(name string) string {
	return filepath.Join(s.SerialDir(), name+".txt")
}

// Prepare creates the workspace directory tree
func (s *Store) Prepare() error {
	for _, dir := range []string{s.ConfigsDir(), s.SerialDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// WriteConfig persists a device's running configuration
func (s *Store) WriteConfig(name, config string) error {
	if !strings.HasSuffix(config, "\n") {
		config += "\n"
	}
	path := s.ConfigPath(name)
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		return fmt.Errorf("failed to write config artifact: %w", err)
	}
	return nil
}

// WriteIdentity persists a device's hardware identity
func (s *Store) WriteIdentity(name string, id Identity) error {
	content := fmt.Sprintf("SERIALNUMBER=%s\nSYSTEMMACADDR=%s\n", id.Serial, id.SystemMAC)
	path := s.IdentityPath(name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write identity artifact: %w", err)
	}
	return nil
}

// ReadIdentity loads a previously written identity artifact
func (s *Store) ReadIdentity(name string) (Identity, error) {
	data, err := os.ReadFile(s.IdentityPath(name))
	if err != nil {
		return Identity{}, err
	}
	var id Identity
	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "SERIALNUMBER":
			id.Serial = strings.TrimSpace(value)
		case "SYSTEMMACADDR":
			id.SystemMAC = strings.TrimSpace(value)
		}
	}
	return id, nil
}

// RelaxPermissions opens the lab tree up so a non-root operator can
// inspect and remove files containerlab created as root
func (s *Store) RelaxPermissions() error {
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		mode := fs.FileMode(0o666)
		if d.IsDir() {
			mode = 0o777
		}
		if err := os.Chmod(path, mode); err != nil {
			return fmt.Errorf("failed to chmod %s: %w", path, err)
		}
		return nil
	})
}

// Remove deletes the whole lab workspace
func (s *Store) Remove() error {
	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("failed to remove lab directory: %w", err)
	}
	return nil
}

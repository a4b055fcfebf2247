package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/assetvault/avc/internal/auth"
)

// ErrProfileNotFound indicates the named profile has not been saved.
var ErrProfileNotFound = errors.New("profile not found")

const activeProfileFile = "active_profile"

// Profile is a saved connection: API endpoint plus credentials.
type Profile struct {
	Name        string           `json:"name"`
	BaseURL     string           `json:"baseUrl"`
	Credentials auth.Credentials `json:"credentials"`
}

// Dir returns the root directory for persisted client state
// (~/.config/avc on Linux). AVC_CONFIG_DIR overrides it.
func Dir() (string, error) {
	if dir := os.Getenv("AVC_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(base, "avc"), nil
}

func profilesDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles"), nil
}

func validateProfileName(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("invalid profile name %q", name)
	}
	return nil
}

// SaveProfile writes a profile to disk, replacing any previous version.
// Credential material goes in the file, so it is written 0600.
func SaveProfile(p Profile) error {
	if err := validateProfileName(p.Name); err != nil {
		return err
	}
	if p.BaseURL == "" {
		return fmt.Errorf("profile %q has no base URL", p.Name)
	}

	dir, err := profilesDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating profiles dir: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profile %q: %w", p.Name, err)
	}

	path := filepath.Join(dir, p.Name+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing profile %q: %w", p.Name, err)
	}
	return nil
}

// LoadProfile reads a saved profile by name.
func LoadProfile(name string) (*Profile, error) {
	if err := validateProfileName(name); err != nil {
		return nil, err
	}

	dir, err := profilesDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
		}
		return nil, fmt.Errorf("reading profile %q: %w", name, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %q: %w", name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	return &p, nil
}

// DeleteProfile removes a saved profile. Deleting the active profile also
// clears the active marker.
func DeleteProfile(name string) error {
	if err := validateProfileName(name); err != nil {
		return err
	}

	dir, err := profilesDir()
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, name+".json")); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
		}
		return fmt.Errorf("deleting profile %q: %w", name, err)
	}

	if active, _ := ActiveProfile(); active == name {
		root, err := Dir()
		if err == nil {
			os.Remove(filepath.Join(root, activeProfileFile))
		}
	}
	return nil
}

// ListProfiles returns saved profile names in sorted order.
func ListProfiles() ([]string, error) {
	dir, err := profilesDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing profiles: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// SetActiveProfile marks a saved profile as the default for future runs.
func SetActiveProfile(name string) error {
	if _, err := LoadProfile(name); err != nil {
		return err
	}

	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, activeProfileFile), []byte(name+"\n"), 0o600); err != nil {
		return fmt.Errorf("recording active profile: %w", err)
	}
	return nil
}

// ActiveProfile returns the name of the default profile, or "" when none is
// set.
func ActiveProfile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(dir, activeProfileFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading active profile: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

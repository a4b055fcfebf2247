package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/assetvault/avc/internal/auth"
)

func testProfile(name string) Profile {
	return Profile{
		Name:    name,
		BaseURL: "https://api.example.com",
		Credentials: auth.Credentials{
			Token: "secret-token",
		},
	}
}

func TestProfileRoundTrip(t *testing.T) {
	t.Setenv("AVC_CONFIG_DIR", t.TempDir())

	if err := SaveProfile(testProfile("prod")); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	p, err := LoadProfile("prod")
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if p.Name != "prod" || p.BaseURL != "https://api.example.com" {
		t.Errorf("loaded profile = %+v", p)
	}
	if p.Credentials.Token != "secret-token" {
		t.Errorf("credentials not preserved")
	}
}

func TestProfileFilePermissions(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AVC_CONFIG_DIR", dir)

	if err := SaveProfile(testProfile("prod")); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "profiles", "prod.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("profile file mode = %o, want 0600 (holds credentials)", perm)
	}
}

func TestLoadProfileNotFound(t *testing.T) {
	t.Setenv("AVC_CONFIG_DIR", t.TempDir())

	_, err := LoadProfile("nope")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("LoadProfile error = %v, want ErrProfileNotFound", err)
	}
}

func TestProfileNameValidation(t *testing.T) {
	t.Setenv("AVC_CONFIG_DIR", t.TempDir())

	bad := []string{"", "../escape", "a/b", `a\b`}
	for _, name := range bad {
		p := testProfile("x")
		p.Name = name
		if err := SaveProfile(p); err == nil {
			t.Errorf("SaveProfile accepted name %q", name)
		}
		if _, err := LoadProfile(name); err == nil {
			t.Errorf("LoadProfile accepted name %q", name)
		}
	}
}

func TestListProfilesSorted(t *testing.T) {
	t.Setenv("AVC_CONFIG_DIR", t.TempDir())

	for _, name := range []string{"staging", "dev", "prod"} {
		if err := SaveProfile(testProfile(name)); err != nil {
			t.Fatal(err)
		}
	}

	names, err := ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles failed: %v", err)
	}
	want := []string{"dev", "prod", "staging"}
	if len(names) != len(want) {
		t.Fatalf("got %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestListProfilesEmpty(t *testing.T) {
	t.Setenv("AVC_CONFIG_DIR", t.TempDir())

	names, err := ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("names = %v, want none", names)
	}
}

func TestActiveProfileLifecycle(t *testing.T) {
	t.Setenv("AVC_CONFIG_DIR", t.TempDir())

	// No active profile yet.
	active, err := ActiveProfile()
	if err != nil || active != "" {
		t.Fatalf("ActiveProfile = %q, %v; want empty", active, err)
	}

	// Activating an unsaved profile is an error.
	if err := SetActiveProfile("ghost"); err == nil {
		t.Fatal("SetActiveProfile accepted an unsaved profile")
	}

	if err := SaveProfile(testProfile("prod")); err != nil {
		t.Fatal(err)
	}
	if err := SetActiveProfile("prod"); err != nil {
		t.Fatalf("SetActiveProfile failed: %v", err)
	}
	active, err = ActiveProfile()
	if err != nil || active != "prod" {
		t.Fatalf("ActiveProfile = %q, %v; want prod", active, err)
	}

	// Deleting the active profile clears the marker.
	if err := DeleteProfile("prod"); err != nil {
		t.Fatalf("DeleteProfile failed: %v", err)
	}
	active, _ = ActiveProfile()
	if active != "" {
		t.Errorf("ActiveProfile = %q after delete, want empty", active)
	}

	if err := DeleteProfile("prod"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("second delete error = %v, want ErrProfileNotFound", err)
	}
}

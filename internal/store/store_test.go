package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestOpenRestrictsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disa.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("db permission = %o, want 0600", perm)
	}
}

func TestCookieSetGet(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	if err := db.SetCookie(Cookie{Name: "accessToken", Value: "tok", ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	c, err := db.GetCookie("accessToken", now)
	if err != nil {
		t.Fatal(err)
	}
	if c.Value != "tok" {
		t.Errorf("Value = %q, want tok", c.Value)
	}
	if c.Path != "/" || c.SameSite != "Strict" {
		t.Errorf("attributes = %q/%q, want //Strict", c.Path, c.SameSite)
	}

	// Overwrite keeps one row.
	if err := db.SetCookie(Cookie{Name: "accessToken", Value: "tok2", ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	c, err = db.GetCookie("accessToken", now)
	if err != nil {
		t.Fatal(err)
	}
	if c.Value != "tok2" {
		t.Errorf("Value after overwrite = %q, want tok2", c.Value)
	}
}

func TestCookieExpired(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	if err := db.SetCookie(Cookie{Name: "userData", Value: "x", ExpiresAt: now.Add(-time.Minute)}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetCookie("userData", now); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCookie(expired) error = %v, want ErrNotFound", err)
	}

	n, err := db.PurgeExpired(now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("PurgeExpired() = %d, want 1", n)
	}
}

func TestDeleteCookies(t *testing.T) {
	db := testDB(t)
	exp := time.Now().Add(time.Hour)
	for _, name := range []string{"userData", "accessToken", "other"} {
		if err := db.SetCookie(Cookie{Name: name, Value: "v", ExpiresAt: exp}); err != nil {
			t.Fatal(err)
		}
	}

	if err := db.DeleteCookies("userData", "accessToken"); err != nil {
		t.Fatal(err)
	}
	// Deleting absent names is not an error.
	if err := db.DeleteCookies("userData"); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"userData", "accessToken"} {
		if _, err := db.GetCookie(name, time.Now()); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s still present: %v", name, err)
		}
	}
	if _, err := db.GetCookie("other", time.Now()); err != nil {
		t.Errorf("other cookie removed: %v", err)
	}
}

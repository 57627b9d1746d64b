package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a cookie is absent or expired.
var ErrNotFound = errors.New("store: not found")

// Cookie is one named credential entry with browser-cookie attributes.
type Cookie struct {
	Name      string
	Value     string
	Path      string
	SameSite  string
	ExpiresAt time.Time
}

const upsertCookie = `
	INSERT INTO cookies (name, value, path, same_site, expires_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		value = excluded.value,
		path = excluded.path,
		same_site = excluded.same_site,
		expires_at = excluded.expires_at,
		updated_at = excluded.updated_at`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// SetCookie inserts or replaces a cookie by name.
func (db *DB) SetCookie(c Cookie) error {
	return setCookie(db, c)
}

// SetCookies writes all cookies atomically.
func (db *DB) SetCookies(cs ...Cookie) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, c := range cs {
		if err := setCookie(tx, c); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func setCookie(ex execer, c Cookie) error {
	path := c.Path
	if path == "" {
		path = "/"
	}
	sameSite := c.SameSite
	if sameSite == "" {
		sameSite = "Strict"
	}
	_, err := ex.Exec(upsertCookie,
		c.Name, c.Value, path, sameSite, c.ExpiresAt.UnixMilli(), time.Now().UnixMilli())
	return err
}

// GetCookie returns the named cookie if it has not expired at now.
func (db *DB) GetCookie(name string, now time.Time) (*Cookie, error) {
	var c Cookie
	var expires int64
	err := db.QueryRow(`
		SELECT name, value, path, same_site, expires_at
		FROM cookies WHERE name = ? AND expires_at > ?`,
		name, now.UnixMilli()).Scan(&c.Name, &c.Value, &c.Path, &c.SameSite, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.ExpiresAt = time.UnixMilli(expires)
	return &c, nil
}

// DeleteCookies removes the named cookies in one transaction.
func (db *DB) DeleteCookies(names ...string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := tx.Exec(`DELETE FROM cookies WHERE name = ?`, name); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// PurgeExpired deletes cookies that expired at or before now.
func (db *DB) PurgeExpired(now time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM cookies WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

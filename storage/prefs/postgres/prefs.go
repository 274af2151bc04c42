package pgprefs

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
)

// Preferences keeps one session's keys as rows of session_prefs.
type Preferences struct {
	db      *sqlx.DB
	session string
}

var _ core.Preferences = (*Preferences)(nil)

func NewPreferences(db *sqlx.DB, session string) *Preferences {
	return &Preferences{db: db, session: session}
}

func (p *Preferences) Store(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO session_prefs (session, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := p.db.ExecContext(ctx, q, p.session, key, value)
	return errors.Wrapf(err, "storing %s", key)
}

func (p *Preferences) Retrieve(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM session_prefs WHERE session = $1 AND key = $2`
	var val string
	if err := p.db.GetContext(ctx, &val, q, p.session, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", core.ErrPrefNotFound
		}
		return "", errors.Wrapf(err, "retrieving %s", key)
	}
	return val, nil
}

func (p *Preferences) Remove(ctx context.Context, key string) error {
	const q = `DELETE FROM session_prefs WHERE session = $1 AND key = $2`
	_, err := p.db.ExecContext(ctx, q, p.session, key)
	return errors.Wrapf(err, "removing %s", key)
}

func (p *Preferences) Clear(ctx context.Context) error {
	const q = `DELETE FROM session_prefs WHERE session = $1`
	_, err := p.db.ExecContext(ctx, q, p.session)
	return errors.Wrap(err, "clearing session")
}

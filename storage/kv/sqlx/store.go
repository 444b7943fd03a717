package sqlxkv

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS dashboard_session (
    sid   TEXT NOT NULL,
    key   TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (sid, key)
);`

// Store is a Postgres-backed session.Keeper for deployments where the
// gateway runs with more than one replica.
type Store struct {
	db *sqlx.DB
}

var _ session.Keeper = (*Store)(nil)

func Open(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating dashboard_session table")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(sid, key string) (string, bool, error) {
	var val string
	err := s.db.Get(&val, `SELECT value FROM dashboard_session WHERE sid = $1 AND key = $2`, sid, key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "getting %s/%s", sid, key)
	}
	return val, true, nil
}

func (s *Store) Set(sid, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO dashboard_session (sid, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (sid, key) DO UPDATE SET value = EXCLUDED.value`,
		sid, key, value,
	)
	return errors.Wrapf(err, "setting %s/%s", sid, key)
}

// Update writes the whole batch inside one transaction so replicas never
// observe a half-applied session mutation.
func (s *Store) Update(sid string, changes map[string]string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	for key, value := range changes {
		if value == "" {
			_, err = tx.Exec(`DELETE FROM dashboard_session WHERE sid = $1 AND key = $2`, sid, key)
		} else {
			_, err = tx.Exec(
				`INSERT INTO dashboard_session (sid, key, value) VALUES ($1, $2, $3)
				 ON CONFLICT (sid, key) DO UPDATE SET value = EXCLUDED.value`,
				sid, key, value,
			)
		}
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "updating %s/%s", sid, key)
		}
	}
	return errors.Wrapf(tx.Commit(), "updating %s", sid)
}

func (s *Store) Delete(sid, key string) error {
	_, err := s.db.Exec(`DELETE FROM dashboard_session WHERE sid = $1 AND key = $2`, sid, key)
	return errors.Wrapf(err, "deleting %s/%s", sid, key)
}

func (s *Store) Drop(sid string) error {
	_, err := s.db.Exec(`DELETE FROM dashboard_session WHERE sid = $1`, sid)
	return errors.Wrapf(err, "dropping %s", sid)
}

func (s *Store) SIDs() ([]string, error) {
	var sids []string
	err := s.db.Select(&sids, `SELECT DISTINCT sid FROM dashboard_session ORDER BY sid`)
	return sids, errors.Wrap(err, "listing session ids")
}

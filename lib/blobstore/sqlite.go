package blobstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mazen160/go-random"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS objects (
	key TEXT NOT NULL PRIMARY KEY,
	data BLOB NOT NULL,
	revision TEXT NOT NULL
);
`

// Sqlite keeps objects in a single local (or remote libsql) database.
// Used for development and tests in place of the GitHub-backed store.
type Sqlite struct {
	db *sql.DB
}

type SqliteOptions struct {
	File string `json:"file"`
	// a libsql:// URL; when set it takes precedence over File
	Url string `json:"url"`
}

func NewSqlite(opts SqliteOptions) (*Sqlite, error) {
	var db *sql.DB
	var err error
	if opts.Url != "" {
		db, err = sql.Open("libsql", opts.Url)
	} else {
		db, err = sql.Open("sqlite", fmt.Sprintf("file:%s", opts.File))
	}
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(sqliteSchema)
	if err != nil {
		return nil, err
	}
	return &Sqlite{db: db}, nil
}

// NewSqliteFromDB wraps an existing database handle; the schema must
// already be applied (see Schema).
func NewSqliteFromDB(db *sql.DB) *Sqlite {
	return &Sqlite{db: db}
}

// Schema is exposed for test setup.
const Schema = sqliteSchema

func (s *Sqlite) Get(ctx context.Context, key string) (Object, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data, revision FROM objects WHERE key = ?`, key)

	var obj Object
	err := row.Scan(&obj.Data, &obj.Revision)
	if err == sql.ErrNoRows {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, err
	}
	return obj, nil
}

func (s *Sqlite) Put(ctx context.Context, key string, data []byte, expectedRevision string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT revision FROM objects WHERE key = ?`, key).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if expectedRevision != "" && expectedRevision != current {
		return ErrRevisionMismatch
	}

	revision, err := random.String(16)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO objects (key, data, revision) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET data = excluded.data, revision = excluded.revision
	`, key, data, revision)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Sqlite) List(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM objects WHERE key LIKE ? ORDER BY key`, prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[string]bool{}
	var names []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		child := strings.TrimPrefix(key, prefix)
		if i := strings.IndexByte(child, '/'); i >= 0 {
			child = child[:i]
		}
		if !seen[child] {
			seen[child] = true
			names = append(names, child)
		}
	}
	return names, rows.Err()
}

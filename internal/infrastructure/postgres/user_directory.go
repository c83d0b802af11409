package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-rsvp/internal/domain/user"
)

type userRow struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

// UserDirectory は users テーブルからプロフィールを解決する
type UserDirectory struct {
	db *sqlx.DB
}

func NewUserDirectory(db *sqlx.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

// Resolve は指定IDのプロフィールを返す。存在しないIDは含まれない
func (d *UserDirectory) Resolve(ctx context.Context, ids []string) (map[string]user.Profile, error) {
	profiles := make(map[string]user.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	var rows []userRow
	if err := d.db.SelectContext(ctx, &rows, `SELECT id, name, email FROM users WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("%w: %v", user.ErrDirectoryUnavailable, err)
	}
	for _, r := range rows {
		profiles[r.ID] = user.Profile{ID: r.ID, Name: r.Name, Email: r.Email}
	}
	return profiles, nil
}

var _ user.Directory = (*UserDirectory)(nil)

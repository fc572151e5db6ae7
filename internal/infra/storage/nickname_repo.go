package storage

import (
	"context"
	"database/sql"
)

type NicknameRepo struct{ db *sql.DB }

func NewNicknameRepo(db *sql.DB) *NicknameRepo { return &NicknameRepo{db: db} }

// List devuelve el pool custom del guild (vacío ⇒ el caller usa el default).
func (r *NicknameRepo) List(ctx context.Context, guildID string) ([]NicknameEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, guild_id, nickname
  FROM nicknames
 WHERE guild_id = $1
 ORDER BY id ASC
`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NicknameEntry
	for rows.Next() {
		var n NicknameEntry
		if err := rows.Scan(&n.ID, &n.GuildID, &n.Nickname); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NicknameRepo) Add(ctx context.Context, guildID, nickname string) (NicknameEntry, error) {
	var n NicknameEntry
	err := r.db.QueryRowContext(ctx, `
INSERT INTO nicknames (guild_id, nickname)
VALUES ($1, $2)
RETURNING id, guild_id, nickname
`, guildID, nickname).Scan(&n.ID, &n.GuildID, &n.Nickname)
	return n, err
}

func (r *NicknameRepo) Delete(ctx context.Context, guildID string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM nicknames
 WHERE id = $1 AND guild_id = $2
`, id, guildID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

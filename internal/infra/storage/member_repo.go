package storage

import (
	"context"
	"database/sql"
)

type MemberRepo struct{ db *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

// TouchSeen: inserta o refresca lo último que vimos del miembro al entrar a voz.
// El reset_nickname manual del dashboard nunca se pisa desde acá; el automático
// sigue al último nick real.
func (r *MemberRepo) TouchSeen(ctx context.Context, m MemberNickname) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO member_nicknames (guild_id, user_id, username, display_name, last_seen_nick, reset_nickname, last_seen_at)
VALUES ($1,$2,$3,$4,$5,$5,now())
ON CONFLICT (guild_id, user_id) DO UPDATE SET
  username       = EXCLUDED.username,
  display_name   = EXCLUDED.display_name,
  last_seen_nick = EXCLUDED.last_seen_nick,
  reset_nickname = CASE WHEN member_nicknames.reset_nickname_manual
                        THEN member_nicknames.reset_nickname
                        ELSE EXCLUDED.last_seen_nick END,
  last_seen_at   = now()
`, m.GuildID, m.UserID, m.Username, m.DisplayName, m.LastSeenNick)
	return err
}

func (r *MemberRepo) Get(ctx context.Context, guildID, userID string) (MemberNickname, error) {
	var m MemberNickname
	err := r.db.QueryRowContext(ctx, `
SELECT id, guild_id, user_id, username, display_name, last_seen_nick,
       reset_nickname, reset_nickname_manual, last_seen_at
  FROM member_nicknames
 WHERE guild_id = $1 AND user_id = $2
`, guildID, userID).Scan(
		&m.ID, &m.GuildID, &m.UserID, &m.Username, &m.DisplayName, &m.LastSeenNick,
		&m.ResetNickname, &m.ResetNicknameManual, &m.LastSeenAt,
	)
	if err == sql.ErrNoRows {
		return MemberNickname{}, ErrNotFound
	}
	return m, err
}

func (r *MemberRepo) List(ctx context.Context, guildID string, offset, limit int) ([]MemberNickname, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `
SELECT count(*) FROM member_nicknames WHERE guild_id = $1
`, guildID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, guild_id, user_id, username, display_name, last_seen_nick,
       reset_nickname, reset_nickname_manual, last_seen_at
  FROM member_nicknames
 WHERE guild_id = $1
 ORDER BY last_seen_at DESC
 OFFSET $2 LIMIT $3
`, guildID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []MemberNickname
	for rows.Next() {
		var m MemberNickname
		if err := rows.Scan(&m.ID, &m.GuildID, &m.UserID, &m.Username, &m.DisplayName, &m.LastSeenNick,
			&m.ResetNickname, &m.ResetNicknameManual, &m.LastSeenAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// SetReset fija el nickname de reset desde el dashboard. manual=false vuelve
// al modo automático (seguir el último nick visto).
func (r *MemberRepo) SetReset(ctx context.Context, guildID, userID string, nickname *string, manual bool) (MemberNickname, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE member_nicknames
   SET reset_nickname        = CASE WHEN $3 THEN $4 ELSE COALESCE($4, last_seen_nick) END,
       reset_nickname_manual = $3
 WHERE guild_id = $1 AND user_id = $2
`, guildID, userID, manual, nickname)
	if err != nil {
		return MemberNickname{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return MemberNickname{}, ErrNotFound
	}
	return r.Get(ctx, guildID, userID)
}

func (r *MemberRepo) Delete(ctx context.Context, guildID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM member_nicknames WHERE guild_id = $1 AND user_id = $2
`, guildID, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ResetOverride: nick de reset fijado a mano desde el dashboard, si hay.
// (bool=false ⇒ restaurar con el snapshot en memoria)
func (r *MemberRepo) ResetOverride(ctx context.Context, guildID, userID string) (*string, bool, error) {
	m, err := r.Get(ctx, guildID, userID)
	if err == ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !m.ResetNicknameManual {
		return nil, false, nil
	}
	return m.ResetNickname, true, nil
}

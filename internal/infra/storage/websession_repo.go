package storage

import (
	"context"
	"database/sql"
	"time"
)

type WebSessionRepo struct{ db *sql.DB }

func NewWebSessionRepo(db *sql.DB) *WebSessionRepo { return &WebSessionRepo{db: db} }

// Upsert por discord_id: un login nuevo rota el token de sesión y pisa
// los tokens OAuth viejos.
func (r *WebSessionRepo) Upsert(ctx context.Context, s WebSession) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO web_sessions
  (token, discord_id, username, avatar_url, access_token, refresh_token, token_expires_at)
VALUES
  ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (discord_id) DO UPDATE SET
  token            = EXCLUDED.token,
  username         = EXCLUDED.username,
  avatar_url       = EXCLUDED.avatar_url,
  access_token     = EXCLUDED.access_token,
  refresh_token    = EXCLUDED.refresh_token,
  token_expires_at = EXCLUDED.token_expires_at,
  updated_at       = now()
`, s.Token, s.DiscordID, s.Username, s.AvatarURL, s.AccessToken, s.RefreshToken, s.TokenExpiresAt)
	return err
}

func (r *WebSessionRepo) GetByToken(ctx context.Context, token string) (WebSession, error) {
	var s WebSession
	err := r.db.QueryRowContext(ctx, `
SELECT token, discord_id, username, avatar_url, access_token, refresh_token,
       token_expires_at, created_at, updated_at
  FROM web_sessions
 WHERE token = $1
`, token).Scan(
		&s.Token, &s.DiscordID, &s.Username, &s.AvatarURL, &s.AccessToken, &s.RefreshToken,
		&s.TokenExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return WebSession{}, ErrNotFound
	}
	return s, err
}

// RefreshTokens actualiza los tokens OAuth tras un refresh exitoso.
func (r *WebSessionRepo) RefreshTokens(ctx context.Context, token, access, refresh string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE web_sessions
   SET access_token = $2, refresh_token = $3, token_expires_at = $4, updated_at = now()
 WHERE token = $1
`, token, access, refresh, expiresAt)
	return err
}

func (r *WebSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM web_sessions WHERE token = $1`, token)
	return err
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type GuildRepo struct{ db *sql.DB }

func NewGuildRepo(db *sql.DB) *GuildRepo { return &GuildRepo{db: db} }

func (r *GuildRepo) Get(ctx context.Context, guildID string) (GuildSettings, error) {
	var g GuildSettings
	err := r.db.QueryRowContext(ctx, `
SELECT guild_id, name, icon_url, enabled, restore_on_leave, immunity_role_id, created_at, updated_at
  FROM guilds
 WHERE guild_id = $1
`, guildID).Scan(
		&g.GuildID, &g.Name, &g.IconURL, &g.Enabled, &g.RestoreOnLeave, &g.ImmunityRoleID, &g.CreatedAt, &g.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return GuildSettings{}, ErrNotFound
	}
	return g, err
}

// Ensure devuelve la config del guild, creando la fila default si no existe
// (primer evento que vemos del server). Refresca nombre/ícono si cambiaron.
func (r *GuildRepo) Ensure(ctx context.Context, guildID, name string, iconURL *string) (GuildSettings, error) {
	g, err := r.Get(ctx, guildID)
	if err == nil {
		if name != "" && (g.Name != name || !strEq(g.IconURL, iconURL)) {
			_, _ = r.db.ExecContext(ctx, `
UPDATE guilds SET name = $2, icon_url = $3, updated_at = now() WHERE guild_id = $1
`, guildID, name, iconURL)
		}
		return g, nil
	}
	if err != ErrNotFound {
		return GuildSettings{}, err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO guilds (guild_id, name, icon_url)
VALUES ($1, $2, $3)
ON CONFLICT (guild_id) DO NOTHING
`, guildID, name, iconURL)
	if err != nil {
		return GuildSettings{}, err
	}
	return r.Get(ctx, guildID)
}

func (r *GuildRepo) Update(ctx context.Context, guildID string, u GuildSettingsUpdate) (GuildSettings, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	i := 1

	if u.Enabled != nil {
		sets = append(sets, fmt.Sprintf("enabled = $%d", i))
		args = append(args, *u.Enabled)
		i++
	}
	if u.RestoreOnLeave != nil {
		sets = append(sets, fmt.Sprintf("restore_on_leave = $%d", i))
		args = append(args, *u.RestoreOnLeave)
		i++
	}
	if u.ClearImmunity {
		sets = append(sets, "immunity_role_id = NULL")
	} else if u.ImmunityRoleID != nil {
		sets = append(sets, fmt.Sprintf("immunity_role_id = $%d", i))
		args = append(args, *u.ImmunityRoleID)
		i++
	}
	if len(sets) == 0 {
		// nada que cambiar
		return r.Get(ctx, guildID)
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", i))
	args = append(args, time.Now())
	i++

	args = append(args, guildID)

	_, err := r.db.ExecContext(ctx, `
UPDATE guilds
   SET `+strings.Join(sets, ", ")+`
 WHERE guild_id = $`+fmt.Sprint(i), args...)
	if err != nil {
		return GuildSettings{}, err
	}
	return r.Get(ctx, guildID)
}

func (r *GuildRepo) ListAll(ctx context.Context) ([]GuildSettings, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT guild_id, name, icon_url, enabled, restore_on_leave, immunity_role_id, created_at, updated_at
  FROM guilds
 ORDER BY name ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GuildSettings
	for rows.Next() {
		var g GuildSettings
		if err := rows.Scan(&g.GuildID, &g.Name, &g.IconURL, &g.Enabled, &g.RestoreOnLeave, &g.ImmunityRoleID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func strEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

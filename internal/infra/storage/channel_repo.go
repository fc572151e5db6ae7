package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/jose-valero/identity-crisis-bot/internal/app/transform"
)

type ChannelRepo struct{ db *sql.DB }

func NewChannelRepo(db *sql.DB) *ChannelRepo { return &ChannelRepo{db: db} }

// ---------- lookups que usa el voice handler ----------

func (r *ChannelRepo) IsExcluded(ctx context.Context, guildID, channelID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
SELECT 1 FROM excluded_channels WHERE guild_id = $1 AND channel_id = $2
`, guildID, channelID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (r *ChannelRepo) IsIncluded(ctx context.Context, guildID, channelID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
SELECT 1 FROM included_channels WHERE guild_id = $1 AND channel_id = $2
`, guildID, channelID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// HasAnyIncludedOrCustom decide el modo de policy del guild: si hay al menos
// una regla included/custom el guild está en modo allow-list.
func (r *ChannelRepo) HasAnyIncludedOrCustom(ctx context.Context, guildID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
SELECT 1
 WHERE EXISTS (SELECT 1 FROM included_channels WHERE guild_id = $1)
    OR EXISTS (SELECT 1 FROM custom_channels  WHERE guild_id = $1)
`, guildID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// CustomRulesFor trae las reglas custom de varios canales en una sola query
// (el handler resuelve canal anterior y destino juntos).
func (r *ChannelRepo) CustomRulesFor(ctx context.Context, guildID string, channelIDs []string) (map[string][]transform.Rule, error) {
	out := map[string][]transform.Rule{}
	if len(channelIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT channel_id, rules
  FROM custom_channels
 WHERE guild_id = $1 AND channel_id = ANY($2)
`, guildID, pq.Array(channelIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var chID string
		var raw []byte
		if err := rows.Scan(&chID, &raw); err != nil {
			return nil, err
		}
		var rules []transform.Rule
		if err := json.Unmarshal(raw, &rules); err != nil {
			return nil, fmt.Errorf("custom_channels rules de %s: %w", chID, err)
		}
		out[chID] = rules
	}
	return out, rows.Err()
}

// ---------- CRUD que usa el dashboard ----------

func (r *ChannelRepo) listRefs(ctx context.Context, table, guildID string) ([]ChannelRef, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, guild_id, channel_id, channel_name FROM `+table+` WHERE guild_id = $1 ORDER BY id ASC
`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChannelRef
	for rows.Next() {
		var c ChannelRef
		if err := rows.Scan(&c.ID, &c.GuildID, &c.ChannelID, &c.ChannelName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ChannelRepo) ListExcluded(ctx context.Context, guildID string) ([]ChannelRef, error) {
	return r.listRefs(ctx, "excluded_channels", guildID)
}

func (r *ChannelRepo) ListIncluded(ctx context.Context, guildID string) ([]ChannelRef, error) {
	return r.listRefs(ctx, "included_channels", guildID)
}

func (r *ChannelRepo) AddIncluded(ctx context.Context, guildID, channelID, channelName string) (ChannelRef, error) {
	var c ChannelRef
	err := r.db.QueryRowContext(ctx, `
INSERT INTO included_channels (guild_id, channel_id, channel_name)
VALUES ($1, $2, $3)
ON CONFLICT (guild_id, channel_id) DO NOTHING
RETURNING id, guild_id, channel_id, channel_name
`, guildID, channelID, channelName).Scan(&c.ID, &c.GuildID, &c.ChannelID, &c.ChannelName)
	if err == sql.ErrNoRows {
		return ChannelRef{}, fmt.Errorf("canal %s ya estaba incluido", channelID)
	}
	return c, err
}

func (r *ChannelRepo) AddExcluded(ctx context.Context, guildID, channelID, channelName string) (ChannelRef, error) {
	var c ChannelRef
	err := r.db.QueryRowContext(ctx, `
INSERT INTO excluded_channels (guild_id, channel_id, channel_name)
VALUES ($1, $2, $3)
ON CONFLICT (guild_id, channel_id) DO NOTHING
RETURNING id, guild_id, channel_id, channel_name
`, guildID, channelID, channelName).Scan(&c.ID, &c.GuildID, &c.ChannelID, &c.ChannelName)
	if err == sql.ErrNoRows {
		return ChannelRef{}, fmt.Errorf("canal %s ya estaba excluido", channelID)
	}
	return c, err
}

func (r *ChannelRepo) DeleteIncluded(ctx context.Context, guildID string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM included_channels WHERE id = $1 AND guild_id = $2
`, id, guildID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ChannelRepo) DeleteExcluded(ctx context.Context, guildID string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM excluded_channels WHERE id = $1 AND guild_id = $2
`, id, guildID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ChannelRepo) ListCustom(ctx context.Context, guildID string) ([]CustomChannel, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, guild_id, channel_id, channel_name, rules
  FROM custom_channels
 WHERE guild_id = $1
 ORDER BY id ASC
`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomChannel
	for rows.Next() {
		var c CustomChannel
		var raw []byte
		if err := rows.Scan(&c.ID, &c.GuildID, &c.ChannelID, &c.ChannelName, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &c.Rules); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ChannelRepo) AddCustom(ctx context.Context, c CustomChannel) (CustomChannel, error) {
	raw, err := json.Marshal(rulesOrEmpty(c.Rules))
	if err != nil {
		return CustomChannel{}, err
	}
	err = r.db.QueryRowContext(ctx, `
INSERT INTO custom_channels (guild_id, channel_id, channel_name, rules)
VALUES ($1, $2, $3, $4)
ON CONFLICT (guild_id, channel_id) DO NOTHING
RETURNING id
`, c.GuildID, c.ChannelID, c.ChannelName, raw).Scan(&c.ID)
	if err == sql.ErrNoRows {
		return CustomChannel{}, fmt.Errorf("canal %s ya tiene reglas custom", c.ChannelID)
	}
	return c, err
}

func (r *ChannelRepo) UpdateCustomRules(ctx context.Context, guildID string, id int64, rules []transform.Rule) (bool, error) {
	raw, err := json.Marshal(rulesOrEmpty(rules))
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE custom_channels SET rules = $3 WHERE id = $1 AND guild_id = $2
`, id, guildID, raw)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ChannelRepo) DeleteCustom(ctx context.Context, guildID string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM custom_channels WHERE id = $1 AND guild_id = $2
`, id, guildID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// JSONB guarda '[]' y no 'null' para listas vacías.
func rulesOrEmpty(rules []transform.Rule) []transform.Rule {
	if rules == nil {
		return []transform.Rule{}
	}
	return rules
}

package service

import (
	"context"

	"github.com/jose-valero/identity-crisis-bot/internal/app/transform"
	"github.com/jose-valero/identity-crisis-bot/internal/infra/storage"
)

// Lo implementa internal/infra/storage.GuildRepo
type GuildRepo interface {
	Ensure(ctx context.Context, guildID, name string, iconURL *string) (storage.GuildSettings, error)
	Get(ctx context.Context, guildID string) (storage.GuildSettings, error)
	Update(ctx context.Context, guildID string, u storage.GuildSettingsUpdate) (storage.GuildSettings, error)
}

// Lo implementa internal/infra/storage.NicknameRepo
type PoolRepo interface {
	List(ctx context.Context, guildID string) ([]storage.NicknameEntry, error)
}

// Lo implementa internal/infra/storage.ChannelRepo
type ChannelRepo interface {
	IsExcluded(ctx context.Context, guildID, channelID string) (bool, error)
	IsIncluded(ctx context.Context, guildID, channelID string) (bool, error)
	HasAnyIncludedOrCustom(ctx context.Context, guildID string) (bool, error)
	CustomRulesFor(ctx context.Context, guildID string, channelIDs []string) (map[string][]transform.Rule, error)
}

// Lo implementa internal/infra/storage.MemberRepo
type MemberRepo interface {
	TouchSeen(ctx context.Context, m storage.MemberNickname) error
	ResetOverride(ctx context.Context, guildID, userID string) (*string, bool, error)
}

// Gateway es lo que el handler necesita de Discord: chequeos de jerarquía
// y el edit de nickname (nil = limpiar). Lo implementa
// internal/adapters/discord.Gateway.
type Gateway interface {
	BotUserID() string
	IsGuildOwner(guildID, userID string) (bool, error)
	BotOutranks(guildID, userID string) (bool, error)
	MemberHasRole(guildID, userID, roleID string) (bool, error)
	EditNickname(ctx context.Context, guildID, userID string, nick *string) error
}

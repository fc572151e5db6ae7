package storage

import (
	"time"

	"github.com/jose-valero/identity-crisis-bot/internal/app/transform"
)

type GuildSettings struct {
	GuildID        string
	Name           string
	IconURL        *string
	Enabled        bool
	RestoreOnLeave bool
	ImmunityRoleID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Para updates parciales desde el dashboard o /chaos set
type GuildSettingsUpdate struct {
	Enabled        *bool
	RestoreOnLeave *bool
	ImmunityRoleID *string
	ClearImmunity  bool
}

type NicknameEntry struct {
	ID       int64
	GuildID  string
	Nickname string
}

// ChannelRef es una fila de excluded_channels o included_channels.
type ChannelRef struct {
	ID          int64
	GuildID     string
	ChannelID   string
	ChannelName string
}

type CustomChannel struct {
	ID          int64
	GuildID     string
	ChannelID   string
	ChannelName string
	Rules       []transform.Rule
}

// MemberNickname es el registro persistente de un miembro visto en voz:
// a qué nombre lo resetea el dashboard y cuándo lo vimos por última vez.
type MemberNickname struct {
	ID                  int64
	GuildID             string
	UserID              string
	Username            string
	DisplayName         string
	LastSeenNick        *string
	ResetNickname       *string
	ResetNicknameManual bool
	LastSeenAt          time.Time
}

type WebSession struct {
	Token          string
	DiscordID      string
	Username       string
	AvatarURL      *string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

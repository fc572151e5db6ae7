package service

import (
	"context"
	"fmt"

	"github.com/jose-valero/identity-crisis-bot/internal/infra/storage"
)

// SettingsService da la vista admin de la config del guild (/chaos y dashboard).
type SettingsService struct {
	guilds GuildRepo
}

func NewSettingsService(g GuildRepo) *SettingsService { return &SettingsService{guilds: g} }

type SettingsPatch struct {
	Enabled        *bool
	RestoreOnLeave *bool
	ImmunityRoleID *string
	ClearImmunity  bool
}

func (s *SettingsService) Get(ctx context.Context, guildID string) (storage.GuildSettings, error) {
	return s.guilds.Get(ctx, guildID)
}

func (s *SettingsService) Show(ctx context.Context, guildID string) (string, error) {
	g, err := s.guilds.Get(ctx, guildID)
	if err != nil {
		return "", err
	}
	immunity := "—"
	if g.ImmunityRoleID != nil {
		immunity = fmt.Sprintf("<@&%s>", *g.ImmunityRoleID)
	}
	return fmt.Sprintf(
		"**IdentityCrisis en %s**\n• enabled: **%v**\n• restore_on_leave: **%v**\n• immunity_role: %s",
		g.Name, g.Enabled, g.RestoreOnLeave, immunity,
	), nil
}

func (s *SettingsService) Update(ctx context.Context, guildID string, patch SettingsPatch) (string, error) {
	_, err := s.guilds.Update(ctx, guildID, storage.GuildSettingsUpdate{
		Enabled:        patch.Enabled,
		RestoreOnLeave: patch.RestoreOnLeave,
		ImmunityRoleID: patch.ImmunityRoleID,
		ClearImmunity:  patch.ClearImmunity,
	})
	if err != nil {
		return "", err
	}
	return s.Show(ctx, guildID)
}

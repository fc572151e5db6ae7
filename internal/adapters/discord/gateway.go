package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Gateway implementa service.Gateway sobre la sesión de discordgo: chequeos
// de jerarquía y el edit de nickname. Lee del State cache y cae a REST
// cuando falta algo.
type Gateway struct {
	s *discordgo.Session
}

func NewGateway(s *discordgo.Session) *Gateway { return &Gateway{s: s} }

func (g *Gateway) BotUserID() string { return g.s.State.User.ID }

func (g *Gateway) IsGuildOwner(guildID, userID string) (bool, error) {
	gd, err := g.safeGetGuild(guildID)
	if err != nil {
		return false, err
	}
	return gd.OwnerID == userID, nil
}

// BotOutranks: el top role del bot tiene que estar estrictamente por encima
// del top role del miembro, si no Discord rechaza el edit.
func (g *Gateway) BotOutranks(guildID, userID string) (bool, error) {
	gd, err := g.safeGetGuild(guildID)
	if err != nil {
		return false, err
	}
	botTop, err := g.topRolePosition(gd, g.s.State.User.ID)
	if err != nil {
		return false, err
	}
	memberTop, err := g.topRolePosition(gd, userID)
	if err != nil {
		return false, err
	}
	return botTop > memberTop, nil
}

func (g *Gateway) MemberHasRole(guildID, userID, roleID string) (bool, error) {
	m, err := g.safeGetMember(guildID, userID)
	if err != nil {
		return false, err
	}
	for _, rid := range m.Roles {
		if rid == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (g *Gateway) EditNickname(ctx context.Context, guildID, userID string, nick *string) error {
	newNick := "" // string vacío limpia el nickname del server
	if nick != nil {
		newNick = *nick
	}
	return g.s.GuildMemberNickname(guildID, userID, newNick, discordgo.WithContext(ctx))
}

// ---------- helpers State-first ----------

func (g *Gateway) safeGetGuild(id string) (*discordgo.Guild, error) {
	if gd, err := g.s.State.Guild(id); err == nil && gd != nil {
		return gd, nil
	}
	gd, err := g.s.Guild(id)
	if err != nil {
		return nil, err
	}
	_ = g.s.State.GuildAdd(gd)
	return gd, nil
}

func (g *Gateway) safeGetMember(guildID, userID string) (*discordgo.Member, error) {
	if m, err := g.s.State.Member(guildID, userID); err == nil && m != nil {
		return m, nil
	}
	m, err := g.s.GuildMember(guildID, userID)
	if err != nil {
		return nil, err
	}
	_ = g.s.State.MemberAdd(m)
	return m, nil
}

// topRolePosition: posición del role más alto del miembro. Sin roles
// asignados queda en -1 (@everyone está en 0).
func (g *Gateway) topRolePosition(gd *discordgo.Guild, userID string) (int, error) {
	m, err := g.safeGetMember(gd.ID, userID)
	if err != nil {
		return 0, fmt.Errorf("member %s: %w", userID, err)
	}
	byID := make(map[string]*discordgo.Role, len(gd.Roles))
	for _, r := range gd.Roles {
		byID[r.ID] = r
	}
	top := -1
	for _, rid := range m.Roles {
		if r, ok := byID[rid]; ok && r.Position > top {
			top = r.Position
		}
	}
	return top, nil
}

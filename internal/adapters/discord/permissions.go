package discord

import "github.com/bwmarrin/discordgo"

// requireAdminOrRoles deja pasar al owner, a cualquier rol con el bit
// Administrator, o a los roles extra de ADMIN_ROLE_IDS. Todo lo demás
// recibe una negativa efímera.
func (r *Router) requireAdminOrRoles(s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	if ic.Member == nil || ic.Member.User == nil {
		return false
	}
	if g, _ := s.State.Guild(ic.GuildID); g != nil && ic.Member.User.ID == g.OwnerID {
		return true
	}

	memberRoles := make(map[string]struct{}, len(ic.Member.Roles))
	for _, rid := range ic.Member.Roles {
		memberRoles[rid] = struct{}{}
	}

	// roles extra configurados para el bot
	for _, want := range r.adminRoleIDs {
		if _, ok := memberRoles[want]; ok {
			return true
		}
	}

	// bit Administrator en cualquiera de sus roles
	if roles, err := s.GuildRoles(ic.GuildID); err == nil {
		for _, ro := range roles {
			if _, ok := memberRoles[ro.ID]; !ok {
				continue
			}
			if ro.Permissions&discordgo.PermissionAdministrator != 0 {
				return true
			}
		}
	}

	ReplyEphemeral(s, ic, "🔒 El caos sólo se configura con permisos de admin.")
	return false
}

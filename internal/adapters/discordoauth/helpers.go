package discordoauth

import (
	"strconv"
	"strings"
	"time"
)

const (
	permAdministrator = 0x8
	permManageGuild   = 0x20
)

// HasAdmin: el usuario puede administrar ese guild (Administrator o Manage Guild).
func (g UserGuild) HasAdmin() bool {
	perms, err := strconv.ParseInt(g.Permissions, 10, 64)
	if err != nil {
		return false
	}
	return perms&(permAdministrator|permManageGuild) != 0
}

// IsTokenExpired con 5 minutos de colchón.
func IsTokenExpired(expiresAt time.Time) bool {
	return !time.Now().Before(expiresAt.Add(-5 * time.Minute))
}

func (u User) AvatarURL() string {
	if u.Avatar == "" {
		return ""
	}
	ext := "png"
	if strings.HasPrefix(u.Avatar, "a_") {
		ext = "gif"
	}
	return "https://cdn.discordapp.com/avatars/" + u.ID + "/" + u.Avatar + "." + ext
}

func (g UserGuild) IconURL() string {
	if g.Icon == "" {
		return ""
	}
	ext := "png"
	if strings.HasPrefix(g.Icon, "a_") {
		ext = "gif"
	}
	return "https://cdn.discordapp.com/icons/" + g.ID + "/" + g.Icon + "." + ext
}

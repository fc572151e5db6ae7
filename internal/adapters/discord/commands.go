package discord

import "github.com/bwmarrin/discordgo"

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "chaos",
		Description: "Ver o cambiar la config de IdentityCrisis (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "show", Description: "Ver configuración"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Actualizar configuración (sólo lo que pases)",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "enabled", Description: "Activar/desactivar el caos"},
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "restore_on_leave", Description: "Restaurar el nick al salir de voz"},
					{Type: discordgo.ApplicationCommandOptionRole, Name: "immunity_role", Description: "Rol inmune al renombrado"},
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "clear_immunity", Description: "Quitar el rol de inmunidad"},
				},
			},
		},
	},
}

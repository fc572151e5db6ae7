package discord

import "testing"

func TestRememberGuildDistinguishesStartupFromJoin(t *testing.T) {
	r := NewRouter(nil, nil, nil, nil)

	// el READY del arranque siembra los guilds donde ya estábamos
	for _, id := range []string{"g1", "g2"} {
		r.rememberGuild(id)
	}

	// los GUILD_CREATE que llegan después del READY para esos guilds no
	// son joins nuevos: nada de mensaje de bienvenida
	if !r.rememberGuild("g1") {
		t.Fatal("g1 venía del READY, tendría que figurar como conocido")
	}

	// un guild que no estaba en el READY sí es un join real
	if r.rememberGuild("g3") {
		t.Fatal("g3 es nuevo, no tendría que figurar como conocido")
	}
	// y a partir de ahí queda registrado
	if !r.rememberGuild("g3") {
		t.Fatal("el segundo GUILD_CREATE de g3 ya no es un join")
	}
}

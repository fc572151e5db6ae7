package dashboard

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/rs/cors"

	"github.com/jose-valero/identity-crisis-bot/internal/adapters/discordoauth"
	"github.com/jose-valero/identity-crisis-bot/internal/app/service"
	"github.com/jose-valero/identity-crisis-bot/internal/infra/storage"
)

// Server es la API del dashboard: login OAuth con Discord y CRUD de la
// config por guild. Nunca toca el session store en memoria del bot.
type Server struct {
	oauth    *discordoauth.Client
	guilds   *storage.GuildRepo
	pool     *storage.NicknameRepo
	channels *storage.ChannelRepo
	members  *storage.MemberRepo
	sessions *storage.WebSessionRepo
	gw       service.Gateway

	mux            *http.ServeMux
	allowedOrigins []string
}

func New(
	oauth *discordoauth.Client,
	guilds *storage.GuildRepo,
	pool *storage.NicknameRepo,
	channels *storage.ChannelRepo,
	members *storage.MemberRepo,
	sessions *storage.WebSessionRepo,
	gw service.Gateway,
	allowedOrigins []string,
) *Server {
	s := &Server{
		oauth:          oauth,
		guilds:         guilds,
		pool:           pool,
		channels:       channels,
		members:        members,
		sessions:       sessions,
		gw:             gw,
		mux:            http.NewServeMux(),
		allowedOrigins: allowedOrigins,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /auth/callback", s.handleCallback)
	s.mux.HandleFunc("GET /auth/logout", s.handleLogout)

	s.mux.HandleFunc("GET /api/available-rules", s.handleAvailableRules)

	s.mux.HandleFunc("GET /api/guilds", s.withAuth(s.handleListGuilds))
	s.mux.HandleFunc("GET /api/guilds/{guildID}", s.withAuth(s.handleGetGuild))
	s.mux.HandleFunc("PATCH /api/guilds/{guildID}", s.withAuth(s.handlePatchGuild))

	s.mux.HandleFunc("GET /api/guilds/{guildID}/nicknames", s.withAuth(s.handleListNicknames))
	s.mux.HandleFunc("POST /api/guilds/{guildID}/nicknames", s.withAuth(s.handleAddNickname))
	s.mux.HandleFunc("DELETE /api/guilds/{guildID}/nicknames/{id}", s.withAuth(s.handleDeleteNickname))

	s.mux.HandleFunc("GET /api/guilds/{guildID}/included-channels", s.withAuth(s.handleListIncluded))
	s.mux.HandleFunc("POST /api/guilds/{guildID}/included-channels", s.withAuth(s.handleAddIncluded))
	s.mux.HandleFunc("DELETE /api/guilds/{guildID}/included-channels/{id}", s.withAuth(s.handleDeleteIncluded))

	s.mux.HandleFunc("GET /api/guilds/{guildID}/excluded-channels", s.withAuth(s.handleListExcluded))
	s.mux.HandleFunc("POST /api/guilds/{guildID}/excluded-channels", s.withAuth(s.handleAddExcluded))
	s.mux.HandleFunc("DELETE /api/guilds/{guildID}/excluded-channels/{id}", s.withAuth(s.handleDeleteExcluded))

	s.mux.HandleFunc("GET /api/guilds/{guildID}/custom-channels", s.withAuth(s.handleListCustom))
	s.mux.HandleFunc("POST /api/guilds/{guildID}/custom-channels", s.withAuth(s.handleAddCustom))
	s.mux.HandleFunc("PATCH /api/guilds/{guildID}/custom-channels/{id}", s.withAuth(s.handlePatchCustom))
	s.mux.HandleFunc("DELETE /api/guilds/{guildID}/custom-channels/{id}", s.withAuth(s.handleDeleteCustom))

	s.mux.HandleFunc("GET /api/guilds/{guildID}/member-nicknames", s.withAuth(s.handleListMembers))
	s.mux.HandleFunc("PATCH /api/guilds/{guildID}/member-nicknames/{userID}", s.withAuth(s.handlePatchMember))
	s.mux.HandleFunc("DELETE /api/guilds/{guildID}/member-nicknames/{userID}", s.withAuth(s.handleDeleteMember))
}

func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(s.mux)
}

func (s *Server) Start(addr string) {
	log.Printf("🌐 dashboard listening on %s", addr)
	if err := http.ListenAndServe(addr, s.Handler()); err != nil {
		log.Fatalf("dashboard server: %v", err)
	}
}

// ---------- helpers JSON ----------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"github.com/jose-valero/identity-crisis-bot/internal/adapters/dashboard"
	discordrouter "github.com/jose-valero/identity-crisis-bot/internal/adapters/discord"
	"github.com/jose-valero/identity-crisis-bot/internal/adapters/discordoauth"
	"github.com/jose-valero/identity-crisis-bot/internal/app/service"
	"github.com/jose-valero/identity-crisis-bot/internal/infra/config"
	"github.com/jose-valero/identity-crisis-bot/internal/infra/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// DB
	db, err := storage.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatal("migrate:", err)
	}
	log.Println("✅ DB lista y migrada")

	// Repos
	guildRepo := storage.NewGuildRepo(db)
	poolRepo := storage.NewNicknameRepo(db)
	channelRepo := storage.NewChannelRepo(db)
	memberRepo := storage.NewMemberRepo(db)
	sessionRepo := storage.NewWebSessionRepo(db)

	// Discord session (antes de los services, que la necesitan vía Gateway)
	auth := cfg.DiscordToken
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
		auth = "Bot " + strings.TrimSpace(auth)
	}
	s, err := discordgo.New(auth)
	if err != nil {
		log.Fatal(err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates | discordgo.IntentsGuildMembers

	// Services
	gw := discordrouter.NewGateway(s)
	voiceSvc := service.NewVoiceService(guildRepo, poolRepo, channelRepo, memberRepo, gw)
	settingsSvc := service.NewSettingsService(guildRepo)

	// Dashboard (OAuth + API de config)
	oauth := discordoauth.New(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURI)
	web := dashboard.New(oauth, guildRepo, poolRepo, channelRepo, memberRepo, sessionRepo, gw, cfg.AllowedOrigins)
	go web.Start(cfg.HTTPAddr)

	// Router: los handlers van antes de Open para no perder el READY
	// (ahí se siembra qué guilds ya conocíamos)
	r := discordrouter.NewRouter(s, voiceSvc, settingsSvc, cfg.AdminRoleIDs)
	r.Handlers()

	if err := s.Open(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	log.Printf("✅ Conectado como %s (%s)", s.State.User.Username, s.State.User.ID)

	if err := r.Register(); err != nil {
		log.Fatalf("registrando comandos: %v", err)
	}
	log.Println("✅ comandos registrados")

	// Esperar señal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop
	log.Printf("ℹ️ apagando con %d sesión(es) de voz activas", voiceSvc.Sessions().Len())
}

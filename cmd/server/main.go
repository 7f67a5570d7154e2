package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"web3events/config"
	_ "web3events/docs"
	"web3events/internal/adapters/auth"
	"web3events/internal/adapters/email"
	"web3events/internal/adapters/ledger"
	httpdelivery "web3events/internal/delivery/http"
	"web3events/internal/delivery/http/controllers"
	"web3events/internal/delivery/http/middleware"
	"web3events/internal/repository/postgres"
	"web3events/internal/services"
	"web3events/internal/state"
)

// @title Web3 Events API
// @version 1.0
// @description Event discovery, registration, attendance, POAP badges and bounties backed by a ledger.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	logger.Info("connected to database")

	// Ledger gateway and in-memory event state
	gateway := ledger.NewClient(&http.Client{Timeout: 30 * time.Second}, cfg.LedgerRPCURL)
	store := state.NewStore()

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	regRepo := postgres.NewRegistrationRepository(db)
	bountyRepo := postgres.NewBountyRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	loginCodeRepo := postgres.NewLoginCodeRepository(db)

	// Email
	mailer, err := email.NewMailer(logger, email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	})
	if err != nil {
		log.Fatalf("failed to create mailer: %v", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		log.Fatalf("failed to parse email templates: %v", err)
	}
	emailSvc := services.NewEmailService(mailer, renderer)

	// Auth adapters
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	hasher := auth.NewBcryptCodeHasher(0)

	// Services
	syncSvc := services.NewSyncService(gateway, cfg.LedgerRegistryID, store, logger, cfg.RefreshDelay)
	eventSvc := services.NewEventService(eventRepo, gateway, syncSvc, logger)
	regSvc := services.NewRegistrationService(store, gateway, regRepo, emailSvc, syncSvc, logger)
	bountySvc := services.NewBountyService(bountyRepo)
	profileSvc := services.NewProfileService(profileRepo, gateway, logger)
	authSvc := services.NewAuthService(profileRepo, loginCodeRepo, hasher, issuer, emailSvc, cfg.TokenExpiry)
	blastSvc := services.NewBlastService(store, regRepo, emailSvc, logger)

	// Warm the in-memory state before serving
	if _, err := syncSvc.FetchEvents(context.Background()); err != nil {
		logger.Warn("initial ledger fetch failed, starting with empty state", "err", err)
	}

	// Controllers and router
	router := httpdelivery.NewRouter(
		verifier,
		controllers.NewEventController(logger, eventSvc, blastSvc),
		controllers.NewRegistrationController(logger, regSvc),
		controllers.NewBountyController(logger, bountySvc),
		controllers.NewProfileController(logger, profileSvc),
		controllers.NewAuthController(logger, authSvc),
	)

	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, router))

	addr := ":" + cfg.Port
	logger.Info("server starting", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

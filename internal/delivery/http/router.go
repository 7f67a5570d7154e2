package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"web3events/internal/delivery/http/controllers"
	"web3events/internal/delivery/http/middleware"
	"web3events/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Mutating routes require a Bearer session token; discovery routes are public.
func NewRouter(
	verifier domain.TokenVerifier,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	bountyController *controllers.BountyController,
	profileController *controllers.ProfileController,
	authController *controllers.AuthController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/wallet", authController.WalletLogin)
	mux.HandleFunc("POST /auth/email/code", authController.RequestLoginCode)
	mux.HandleFunc("POST /auth/email/login", authController.EmailLogin)

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEventByID)
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("POST /events/{eventID}/blast", auth(eventController.SendBlast))

	// Sync
	mux.HandleFunc("POST /events/{eventID}/sync", eventController.SyncEvent)
	mux.HandleFunc("POST /sync/events", eventController.SyncEvents)

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/register", auth(registrationController.Register))
	mux.HandleFunc("GET /events/{eventID}/registration", auth(registrationController.GetRegistration))
	mux.HandleFunc("POST /events/{eventID}/checkin", auth(registrationController.CheckIn))
	mux.HandleFunc("POST /events/{eventID}/poap", auth(registrationController.ClaimPOAP))

	// Bounties
	mux.HandleFunc("GET /bounties", bountyController.ListBounties)
	mux.HandleFunc("GET /bounties/{bountyID}", bountyController.GetBountyByID)
	mux.HandleFunc("POST /bounties", auth(bountyController.CreateBounty))
	mux.HandleFunc("POST /bounties/{bountyID}/claim", auth(bountyController.ClaimBounty))
	mux.HandleFunc("POST /bounties/{bountyID}/proof", auth(bountyController.SubmitProof))
	mux.HandleFunc("POST /bounties/{bountyID}/resolve", auth(bountyController.ResolveBounty))

	// Profiles
	mux.HandleFunc("GET /profiles/{address}", profileController.GetProfile)
	mux.HandleFunc("POST /profiles", auth(profileController.UpsertProfile))
	mux.HandleFunc("PUT /profiles/me", auth(profileController.UpdateProfile))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

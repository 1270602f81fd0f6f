package app

import (
	"log/slog"
	"time"

	"github.com/crowdcue/platform/internal/auth"
	"github.com/crowdcue/platform/internal/guard"
	"github.com/crowdcue/platform/internal/handler"
	adminhandler "github.com/crowdcue/platform/internal/handler/admin"
	"github.com/crowdcue/platform/internal/infra"
	"github.com/crowdcue/platform/internal/ledger"
	"github.com/crowdcue/platform/internal/projection"
	"github.com/crowdcue/platform/internal/provider"
	"github.com/crowdcue/platform/internal/repository"
	"github.com/crowdcue/platform/internal/service"
	"github.com/crowdcue/platform/internal/settlement"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// bidRateLimit caps bid submissions per user; bursts beyond it get a 429.
const (
	bidRateLimit  = 30
	bidRateWindow = time.Minute
)

// RouterDeps holds everything NewRouter needs to assemble the API.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	Cfg    *infra.Config
	JWTMgr *auth.JWTManager
	Store  projection.Store
	Logger *slog.Logger
}

// App is the assembled application: the router plus the background pieces
// the binary starts alongside the HTTP server.
type App struct {
	Router         chi.Router
	ChartRefresher *projection.ChartRefresher
	Hub            *infra.WSHub
}

// NewApp wires repositories, the ledger engine, services, and handlers
// into a chi router and the chart refresher.
func NewApp(deps RouterDeps) *App {
	pool := deps.Pool
	cfg := deps.Cfg
	jwtMgr := deps.JWTMgr
	store := deps.Store
	logger := deps.Logger

	// Repositories
	walletRepo := repository.NewWalletRepository()
	txRepo := repository.NewTransactionRepository()
	bidRepo := repository.NewBidRepository()
	mediaRepo := repository.NewMediaRepository()
	partyRepo := repository.NewPartyRepository()
	queueRepo := repository.NewQueueRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Ledger engine and veto settlement
	engine := ledger.NewEngine(walletRepo, txRepo, bidRepo, mediaRepo, queueRepo, outboxRepo)
	vetoSettlement := settlement.NewVetoSettlement(engine, bidRepo, mediaRepo, queueRepo, outboxRepo)

	// External providers and guards
	metadataClient := provider.NewMetadataClient(cfg.MetadataBaseURL, cfg.MetadataTimeout, logger)
	bidLimiter := guard.NewRateLimiter(bidRateLimit, bidRateWindow)
	idemGuard := guard.NewIdempotencyGuard()
	hub := infra.NewWSHub(logger)

	// Services
	userSvc := service.NewUserService(pool, walletRepo, jwtMgr, logger)
	walletSvc := service.NewWalletService(pool, engine, walletRepo, txRepo, store, logger)
	bidSvc := service.NewBidService(pool, engine, partyRepo, mediaRepo, metadataClient, bidLimiter, idemGuard, store, hub, logger)
	partySvc := service.NewPartyService(pool, partyRepo, queueRepo, outboxRepo, vetoSettlement, hub, store, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(userSvc)
	walletHandler := handler.NewWalletHandler(walletSvc)
	bidHandler := handler.NewBidHandler(bidSvc)
	partyHandler := handler.NewPartyHandler(partySvc)
	chartHandler := handler.NewChartHandler(store)
	refresher := projection.NewChartRefresher(pool, mediaRepo, store,
		cfg.ChartRefreshInterval, cfg.ChartScanBudget, logger)
	vetoAdmin := adminhandler.NewVetoHandler(partySvc)
	chartAdmin := adminhandler.NewChartHandler(refresher)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(cfg.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Guest join (no auth)
	r.Post("/auth/guest", authHandler.RegisterGuest)

	// Global chart (no auth; read-only cached projection)
	r.Get("/chart", chartHandler.GetChart)

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateUser(jwtMgr))

		r.Get("/users/me", authHandler.GetMe)

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", walletHandler.GetBalance)
			r.Get("/transactions", walletHandler.ListTransactions)
			r.Post("/deposits", walletHandler.Deposit)
		})

		r.Post("/parties", partyHandler.CreateParty)
		r.Route("/parties/{partyID}", func(r chi.Router) {
			r.Get("/", partyHandler.GetParty)
			r.Get("/queue", partyHandler.GetQueue)
			r.Post("/bids", bidHandler.PlaceBid)
			r.Post("/play", partyHandler.Play)
			r.Post("/complete", partyHandler.Complete)
			r.Post("/skip", partyHandler.Skip)
			r.Post("/veto", partyHandler.Veto)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))
		r.Use(auth.RequireRole(auth.WriteRoles()...))

		r.Post("/parties/{partyID}/veto", vetoAdmin.Veto)
		r.Post("/chart/refresh", chartAdmin.Refresh)
	})

	return &App{Router: r, ChartRefresher: refresher, Hub: hub}
}

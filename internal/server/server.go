package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/mathom/internal/backup"
	"github.com/dukerupert/mathom/internal/config"
	"github.com/dukerupert/mathom/internal/handler"
	"github.com/dukerupert/mathom/internal/hash"
	"github.com/dukerupert/mathom/internal/middleware"
	"github.com/dukerupert/mathom/internal/service"
	"github.com/dukerupert/mathom/internal/store"
	"github.com/dukerupert/mathom/internal/token"
	ws "github.com/dukerupert/mathom/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	issuer        *token.Issuer
	authH         *handler.AuthHandler
	profileH      *handler.ProfileHandler
	accountH      *handler.AccountHandler
	categoryH     *handler.CategoryHandler
	budgetH       *handler.BudgetHandler
	backupH       *handler.BackupHandler
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	prefsStore := store.NewPreferencesStore(db)
	accountStore := store.NewAccountStore(db)
	categoryStore := store.NewCategoryStore(db)
	budgetStore := store.NewBudgetStore(db)
	backupStore := store.NewBackupStore(db)

	issuer := token.NewIssuer(token.Config{
		Secret: []byte(cfg.JWTSecret),
		Issuer: "mathom",
	})
	sessions := service.NewSessionService(
		userStore, prefsStore, hash.NewHasher(), issuer,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.BackupS3Endpoint,
			Bucket:    cfg.BackupS3Bucket,
			Region:    cfg.BackupS3Region,
			AccessKey: cfg.BackupS3AccessKey,
			SecretKey: cfg.BackupS3SecretKey,
		},
		DBPath:        cfg.DBPath,
		Passphrase:    cfg.BackupPassphrase,
		Interval:      time.Duration(cfg.BackupIntervalHours) * time.Hour,
		RetentionDays: cfg.BackupRetentionDays,
	}, db, backupStore, logger.With("component", "backup"))

	return &Server{
		db:            db,
		hub:           hub,
		issuer:        issuer,
		authH:         handler.NewAuthHandler(sessions, cfg.CookieSecure, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, logger.With("component", "auth")),
		profileH:      handler.NewProfileHandler(sessions, logger.With("component", "profile")),
		accountH:      handler.NewAccountHandler(accountStore, hub, logger.With("component", "account")),
		categoryH:     handler.NewCategoryHandler(categoryStore, hub, logger.With("component", "category")),
		budgetH:       handler.NewBudgetHandler(budgetStore, categoryStore, hub, logger.With("component", "budget")),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// BackupManager returns the backup manager so the caller can run its
// scheduled loop.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/signup", s.authH.Signup)
	outerMux.HandleFunc("POST /api/auth/signin", s.authH.Signin)
	outerMux.HandleFunc("POST /api/auth/refresh", s.authH.Refresh)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.issuer)
	outerMux.Handle("/", authMiddleware(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Session + profile routes
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/profile", s.profileH.Get)
	mux.HandleFunc("PUT /api/profile", s.profileH.Update)
	mux.HandleFunc("PUT /api/profile/preferences", s.profileH.UpdatePreferences)

	// Account API routes
	mux.HandleFunc("GET /api/accounts", s.accountH.List)
	mux.HandleFunc("POST /api/accounts", s.accountH.Create)
	mux.HandleFunc("GET /api/accounts/{id}", s.accountH.Get)
	mux.HandleFunc("PUT /api/accounts/{id}", s.accountH.Update)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.accountH.Delete)

	// Category API routes
	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("POST /api/categories", s.categoryH.Create)
	mux.HandleFunc("GET /api/categories/{id}", s.categoryH.Get)
	mux.HandleFunc("PUT /api/categories/{id}", s.categoryH.Update)
	mux.HandleFunc("DELETE /api/categories/{id}", s.categoryH.Delete)

	// Budget API routes
	mux.HandleFunc("GET /api/budgets", s.budgetH.List)
	mux.HandleFunc("PUT /api/budgets", s.budgetH.Set)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.budgetH.Delete)

	// Backup API routes
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups/run", s.backupH.Trigger)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.backupH.Restore)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}

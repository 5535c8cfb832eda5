package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/i9parcerias/demandas/internal/config"
	"github.com/i9parcerias/demandas/internal/demand"
	httpmiddleware "github.com/i9parcerias/demandas/internal/http/middleware"
	"github.com/i9parcerias/demandas/internal/partner"
	"github.com/i9parcerias/demandas/internal/service"
	"github.com/i9parcerias/demandas/internal/storage"
	"github.com/i9parcerias/demandas/internal/task"
	"github.com/i9parcerias/demandas/internal/user"
)

// Handler agrega serviços consumidos pelas rotas HTTP.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	auth          *service.AuthService
	users         *user.Service
	partners      *partner.Service
	demands       *demand.Service
	tasks         *task.Service
	uploader      storage.Uploader
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewHandler monta o handler com os serviços já construídos (útil em testes).
func NewHandler(cfg *config.Config, authService *service.AuthService, users *user.Service, partners *partner.Service, demands *demand.Service, tasks *task.Service, uploader storage.Uploader) *Handler {
	return &Handler{
		cfg:      cfg,
		auth:     authService,
		users:    users,
		partners: partners,
		demands:  demands,
		tasks:    tasks,
		uploader: uploader,
	}
}

// NewRouter devolve roteador configurado com todos os módulos.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService) (http.Handler, error) {
	userRepo := user.NewRepository(pool)
	userService := user.NewService(userRepo)

	partnerRepo := partner.NewRepository(pool)
	partnerService := partner.NewService(partnerRepo)

	demandRepo := demand.NewRepository(pool)
	demandService := demand.NewService(demandRepo, userRepo, partnerRepo)

	taskRepo := task.NewRepository(pool)
	taskService := task.NewService(taskRepo)

	var uploader storage.Uploader
	switch cfg.Storage.Provider {
	case "", "noop":
		uploader = storage.NoopUploader{}
	case "s3":
		s3, err := storage.NewS3Uploader(storage.S3Config{
			Endpoint:     cfg.Storage.S3Endpoint,
			Region:       cfg.Storage.S3Region,
			Bucket:       cfg.Storage.S3Bucket,
			AccessKey:    cfg.Storage.S3AccessKey,
			SecretKey:    cfg.Storage.S3SecretKey,
			PublicDomain: cfg.Storage.S3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		uploader = s3
	default:
		return nil, fmt.Errorf("storage: provedor %s não suportado", cfg.Storage.Provider)
	}

	h := NewHandler(cfg, authService, userService, partnerService, demandService, taskService, uploader)
	h.pool = pool
	h.redis = redisClient
	h.publicLimiter = httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)
	h.authLimiter = httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Login)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)

		private.Route("/users", func(u chi.Router) {
			u.Get("/", h.ListUsers)
			u.With(httpmiddleware.RequireRoles(user.RoleAdmin)).Post("/", h.CreateUser)
		})

		private.Route("/partners", func(p chi.Router) {
			p.Get("/", h.ListPartners)
			p.Post("/", h.CreatePartner)
		})

		private.Route("/collaborators", func(c chi.Router) {
			c.Get("/", h.ListCollaborators)
			c.Post("/", h.CreateCollaborator)
		})

		private.Route("/demands", func(d chi.Router) {
			d.Get("/", h.ListDemands)
			d.Post("/", h.CreateDemand)
			d.Get("/{id}", h.GetDemand)
			d.Put("/{id}", h.UpdateDemand)
			d.Delete("/{id}", h.DeleteDemand)
			d.Post("/{id}/finish", h.FinishDemand)
		})

		private.Route("/sub-demands", func(sd chi.Router) {
			sd.Get("/", h.ListSubDemands)
			sd.Post("/", h.CreateSubDemand)
			sd.Put("/{id}", h.UpdateSubDemand)
			sd.Get("/{id}/progress", h.SubDemandProgress)
		})

		private.Route("/sub-steps", func(ss chi.Router) {
			ss.Post("/", h.CreateSubStep)
			ss.Put("/{id}", h.UpdateSubStep)
			ss.Post("/{id}/toggle", h.ToggleSubStep)
			ss.Delete("/{id}", h.DeleteSubStep)
		})

		private.Get("/notifications", h.Notifications)
		private.Post("/export", h.ExportDemands)
		private.Post("/upload", h.Upload)
	})

	return r, nil
}

// Package server exposes the pricing calculator as a JSON API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/railzwaylabs/pricecalc/internal/auth"
	"github.com/railzwaylabs/pricecalc/internal/authorization"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/config"
	"github.com/railzwaylabs/pricecalc/internal/migration"
	"github.com/railzwaylabs/pricecalc/internal/observability"
	"github.com/railzwaylabs/pricecalc/internal/pricing"
	profiledomain "github.com/railzwaylabs/pricecalc/internal/profile/domain"
	quotedomain "github.com/railzwaylabs/pricecalc/internal/quote/domain"
	refreshdomain "github.com/railzwaylabs/pricecalc/internal/refresh/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	DB         *gorm.DB
	Redis      *redis.Client `optional:"true"`
	Metrics    *observability.Metrics
	SchemaGate migration.SchemaGate
	Verifier   auth.Verifier
	Authz      authorization.Authorizer
	ProfileSvc profiledomain.Service
	CatalogSvc catalogdomain.Service
	QuoteSvc   quotedomain.Service
	RefreshSvc refreshdomain.Service
}

type Server struct {
	cfg        config.Config
	log        *zap.Logger
	db         *gorm.DB
	redis      *redis.Client
	metrics    *observability.Metrics
	schemaGate migration.SchemaGate
	verifier   auth.Verifier
	authz      authorization.Authorizer
	profileSvc profiledomain.Service
	catalogSvc catalogdomain.Service
	quoteSvc   quotedomain.Service
	refreshSvc refreshdomain.Service
	formatter  pricing.Formatter

	engine *gin.Engine
}

func NewServer(p Params) *Server {
	if p.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:        p.Cfg,
		log:        p.Log.Named("http"),
		db:         p.DB,
		redis:      p.Redis,
		metrics:    p.Metrics,
		schemaGate: p.SchemaGate,
		verifier:   p.Verifier,
		authz:      p.Authz,
		profileSvc: p.ProfileSvc,
		catalogSvc: p.CatalogSvc,
		quoteSvc:   p.QuoteSvc,
		refreshSvc: p.RefreshSvc,
		formatter:  pricing.NewFormatter(p.Cfg.Currency.Symbol),
	}
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), RequestID(), Tracing(), s.AccessLog(), s.RequestMetrics())
	s.RegisterRoutes(s.engine)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", s.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Gatherer(), promhttp.HandlerOpts{})))
	r.GET("/swagger/doc.json", s.SwaggerDoc)

	api := r.Group("/api", s.Authenticated())

	api.GET("/me", s.GetMe)

	api.GET("/catalog", s.RequirePermission(authorization.ObjectCatalog, authorization.ActionRead), s.ListCatalog)
	api.POST("/catalog/import", s.RequirePermission(authorization.ObjectImport, authorization.ActionWrite), s.ImportCatalog)
	api.GET("/catalog/imports", s.RequirePermission(authorization.ObjectImport, authorization.ActionRead), s.ListCatalogImports)
	api.GET("/catalog/refresh", s.RequirePermission(authorization.ObjectRefresh, authorization.ActionTrigger), s.GetRefreshStatus)
	api.POST("/catalog/refresh", s.RequirePermission(authorization.ObjectRefresh, authorization.ActionTrigger), s.TriggerRefresh)

	quotes := api.Group("/quotes")
	read := s.RequirePermission(authorization.ObjectQuote, authorization.ActionRead)
	write := s.RequirePermission(authorization.ObjectQuote, authorization.ActionWrite)
	quotes.POST("/calculate", read, s.CalculateQuote)
	quotes.GET("", read, s.ListQuotes)
	quotes.POST("", write, s.CreateQuote)
	quotes.GET("/:id", read, s.GetQuote)
	quotes.PUT("/:id", write, s.UpdateQuote)
	quotes.DELETE("/:id", write, s.DeleteQuote)
	quotes.GET("/:id/export", read, s.ExportQuote)
}

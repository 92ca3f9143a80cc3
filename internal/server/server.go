package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aulapay/aulapay/internal/config"
	"github.com/aulapay/aulapay/internal/dashboard"
	dashboarddomain "github.com/aulapay/aulapay/internal/dashboard/domain"
	"github.com/aulapay/aulapay/internal/enrollment"
	enrollmentdomain "github.com/aulapay/aulapay/internal/enrollment/domain"
	"github.com/aulapay/aulapay/internal/observability"
	obsmiddleware "github.com/aulapay/aulapay/internal/observability/logger"
	obsmetrics "github.com/aulapay/aulapay/internal/observability/metrics"
	obstracing "github.com/aulapay/aulapay/internal/observability/tracing"
	"github.com/aulapay/aulapay/internal/pricing"
	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	"github.com/aulapay/aulapay/internal/pricingconfig"
	pricingconfigdomain "github.com/aulapay/aulapay/internal/pricingconfig/domain"
	"github.com/aulapay/aulapay/internal/product"
	productdomain "github.com/aulapay/aulapay/internal/product/domain"
	"github.com/aulapay/aulapay/internal/student"
	studentdomain "github.com/aulapay/aulapay/internal/student/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	pricingconfig.Module,
	student.Module,
	product.Module,
	pricing.Module,
	enrollment.Module,
	dashboard.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine           *gin.Engine
	cfg              config.Config
	db               *gorm.DB
	genID            *snowflake.Node
	pricingSvc       pricingdomain.Service
	pricingConfigSvc pricingconfigdomain.Service
	enrollmentSvc    enrollmentdomain.Service
	dashboardSvc     dashboarddomain.Service
	studentRepo      studentdomain.Repository
	productRepo      productdomain.Repository
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	DB               *gorm.DB
	GenID            *snowflake.Node
	PricingSvc       pricingdomain.Service
	PricingConfigSvc pricingconfigdomain.Service
	EnrollmentSvc    enrollmentdomain.Service
	DashboardSvc     dashboarddomain.Service
	StudentRepo      studentdomain.Repository
	ProductRepo      productdomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		db:               p.DB,
		genID:            p.GenID,
		pricingSvc:       p.PricingSvc,
		pricingConfigSvc: p.PricingConfigSvc,
		enrollmentSvc:    p.EnrollmentSvc,
		dashboardSvc:     p.DashboardSvc,
		studentRepo:      p.StudentRepo,
		productRepo:      p.ProductRepo,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Catalog --------
	api.GET("/students", s.ListStudents)
	api.GET("/products", s.ListProducts)

	// -------- Pricing --------
	api.POST("/pricing/quote", s.QuotePricing)

	// -------- Enrollments --------
	api.POST("/enrollments", s.CreateEnrollments)
	api.GET("/enrollments", s.ListEnrollments)
	api.GET("/enrollments/totals", s.GetTutorTotals)
	api.PATCH("/enrollments/:id/payment", s.UpdatePaymentStatus)

	// -------- Dashboard --------
	api.GET("/dashboard/metrics", s.GetDashboardMetrics)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	// -------- Pricing configuration --------
	admin.GET("/pricing-config", s.GetPricingConfig)
	admin.PATCH("/pricing-config", s.UpdatePricingConfig)
	admin.GET("/pricing-config/history", s.GetPricingConfigHistory)

	// -------- Reports --------
	admin.GET("/reports/discounted-students", s.ListDiscountedStudents)
}

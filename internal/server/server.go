package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tillworks/tillpos/internal/auth"
	authdomain "github.com/tillworks/tillpos/internal/auth/domain"
	"github.com/tillworks/tillpos/internal/authz"
	"github.com/tillworks/tillpos/internal/config"
	"github.com/tillworks/tillpos/internal/migration"
	"github.com/tillworks/tillpos/internal/observability"
	obslogger "github.com/tillworks/tillpos/internal/observability/logger"
	obsmetrics "github.com/tillworks/tillpos/internal/observability/metrics"
	obstracing "github.com/tillworks/tillpos/internal/observability/tracing"
	"github.com/tillworks/tillpos/internal/payment"
	paymentdomain "github.com/tillworks/tillpos/internal/payment/domain"
	"github.com/tillworks/tillpos/internal/product"
	productdomain "github.com/tillworks/tillpos/internal/product/domain"
	"github.com/tillworks/tillpos/internal/providers/pdf"
	"github.com/tillworks/tillpos/internal/ratelimit"
	"github.com/tillworks/tillpos/internal/sale"
	saledomain "github.com/tillworks/tillpos/internal/sale/domain"
	"github.com/tillworks/tillpos/internal/subscription"
	subscriptiondomain "github.com/tillworks/tillpos/internal/subscription/domain"
	"github.com/tillworks/tillpos/internal/tenant"
	tenantdomain "github.com/tillworks/tillpos/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(NewEngine),
	authz.Module,
	auth.Module,
	tenant.Module,
	product.Module,
	sale.Module,
	subscription.Module,
	payment.Module,
	pdf.Module,
	ratelimit.Module,
	migration.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
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

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
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
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	gate            *authz.Gate
	authSvc         authdomain.Service
	tenantSvc       tenantdomain.Service
	productSvc      productdomain.Service
	saleSvc         saledomain.Service
	subscriptionSvc subscriptiondomain.Service
	paymentSvc      paymentdomain.Service
	pdfProvider     pdf.Provider
	posConfig       *config.POSConfigHolder
	obsMetrics      *obsmetrics.Metrics
	loginLimiter    *ratelimit.TokenBucket
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Gate            *authz.Gate
	AuthSvc         authdomain.Service
	TenantSvc       tenantdomain.Service
	ProductSvc      productdomain.Service
	SaleSvc         saledomain.Service
	SubscriptionSvc subscriptiondomain.Service
	PaymentSvc      paymentdomain.Service
	PDFProvider     pdf.Provider
	POSConfig       *config.POSConfigHolder
	ObsMetrics      *obsmetrics.Metrics        `optional:"true"`
	LoginLimiter    *ratelimit.TokenBucket     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		gate:            p.Gate,
		authSvc:         p.AuthSvc,
		tenantSvc:       p.TenantSvc,
		productSvc:      p.ProductSvc,
		saleSvc:         p.SaleSvc,
		subscriptionSvc: p.SubscriptionSvc,
		paymentSvc:      p.PaymentSvc,
		pdfProvider:     p.PDFProvider,
		posConfig:       p.POSConfig,
		obsMetrics:      p.ObsMetrics,
		loginLimiter:    p.LoginLimiter,
	}

	svc.registerPublicRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/signup", s.Signup)
	v1.POST("/auth/login", s.Login)
	v1.POST("/webhooks/paystack", s.HandleGatewayWebhook)
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(s.AuthRequired())
	v1.Use(s.TenantGuard())

	v1.GET("/permissions", s.RequirePermission(authz.PermPermissionsView), s.ListPermissions)

	v1.POST("/products", s.RequirePermission(authz.PermProductsCreate), s.CreateProduct)
	v1.GET("/products", s.RequirePermission(authz.PermProductsView), s.ListProducts)
	v1.GET("/products/:id", s.RequirePermission(authz.PermProductsView), s.GetProduct)
	v1.PATCH("/products/:id", s.RequirePermission(authz.PermProductsUpdate), s.UpdateProduct)
	v1.DELETE("/products/:id", s.RequirePermission(authz.PermProductsDelete), s.ArchiveProduct)

	v1.POST("/sales", s.RequirePermission(authz.PermSalesCreate), s.CreateSale)
	v1.GET("/sales", s.RequirePermission(authz.PermSalesView), s.ListSales)
	v1.GET("/sales/:id", s.RequirePermission(authz.PermSalesView), s.GetSale)
	v1.POST("/sales/:id/refund", s.RequirePermission(authz.PermSalesRefund), s.RefundSale)
	v1.GET("/sales/:id/receipt", s.RequirePermission(authz.PermSalesView), s.GetSaleReceipt)

	v1.GET("/users", s.RequirePermission(authz.PermUsersView), s.ListUsers)
	v1.POST("/users", s.RequirePermission(authz.PermUsersCreate), s.CreateUser)
	v1.PATCH("/users/:id/role", s.RequirePermission(authz.PermUsersUpdate), s.ChangeUserRole)
	v1.DELETE("/users/:id", s.RequirePermission(authz.PermUsersDelete), s.DeactivateUser)

	v1.GET("/subscription", s.RequirePermission(authz.PermSubscriptionView), s.GetSubscription)
	v1.POST("/subscription/upgrade", s.RequirePermission(authz.PermSubscriptionManage), s.UpgradeSubscription)
	v1.POST("/subscription/cancel", s.RequirePermission(authz.PermSubscriptionManage), s.CancelSubscription)
	v1.GET("/payments", s.RequirePermission(authz.PermSubscriptionView), s.ListPayments)

	v1.GET("/admin/tenants", s.RequirePermission(authz.PermTenantsView), s.ListTenants)
}

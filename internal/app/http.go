package app

import (
	"context"
	"net/http"

	"ditroboticstw/internal/auth"
	"ditroboticstw/internal/auth/handler"
	"ditroboticstw/internal/auth/principal"
	"ditroboticstw/internal/auth/provider"
	"ditroboticstw/internal/auth/provider/facebook"
	"ditroboticstw/internal/auth/resolver"
	"ditroboticstw/internal/blog"
	"ditroboticstw/internal/config"
	"ditroboticstw/internal/middleware"
	"ditroboticstw/internal/session"
	"ditroboticstw/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// deps are the externally backed pieces the router is built from.
type deps struct {
	cfg      config.Config
	provider provider.OAuthProvider
	sessions session.Store
	posts    blog.Store
}

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	facebookProvider, err := facebook.New(
		cfg.FacebookAppID,
		cfg.FacebookAppSecret,
		cfg.CallbackURL(),
	)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	router, err := newRouter(deps{
		cfg:      cfg,
		provider: facebookProvider,
		sessions: infra.Sessions,
		posts:    blog.NewSQLStore(infra.DB),
	})
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, infra.Close, nil
}

func newRouter(d deps) (*gin.Engine, error) {
	cfg := d.cfg

	// ----------------------------
	// Dependencies
	// ----------------------------

	staffIDs := cfg.StaffIDs
	if len(staffIDs) == 0 {
		staffIDs = resolver.DefaultStaff
	}
	principals := principal.NewManager(resolver.NewStaffList(staffIDs))

	// one loader for session users and blog authors
	users := auth.NewUserLoader(cfg.Organization)

	sessions := session.NewManager(
		d.sessions,
		session.NewCookieCodec(cfg.SecretKey),
		cfg.SessionTTL,
		session.CookieOptions{Secure: cfg.SecureCookies()},
	)

	authMiddleware := middleware.NewAuthMiddleware(sessions, principals, users)
	authHandler := handler.NewHandler(d.provider, sessions, principals, cfg.SecureCookies())
	loginLimiter := middleware.NewRateLimiter(rate.Limit(cfg.LoginRateLimit), cfg.LoginRateBurst)

	templates, err := web.NewTemplates(cfg.Organization, blog.Templates())
	if err != nil {
		return nil, err
	}

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())
	router.SetHTMLTemplate(templates)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------
	// Site Routes (session attached)
	// ----------------------------

	site := router.Group("/", middleware.Gin(authMiddleware.LoadSession))

	authHandler.RegisterRoutes(site, loginLimiter.Middleware())
	site.GET("/profile", middleware.Gin(authMiddleware.RequireSession), authHandler.Profile)

	web.NewHandler().RegisterRoutes(site)
	blog.NewHandler(d.posts, users).RegisterRoutes(site.Group("/blog"))

	return router, nil
}

package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/contest-backend/internal/config"
	"github.com/shinyyama/contest-backend/internal/handler"
	appmw "github.com/shinyyama/contest-backend/internal/middleware"
	"github.com/shinyyama/contest-backend/internal/repository"
	"github.com/shinyyama/contest-backend/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e     *echo.Echo
	sha   string
	build string
}

func New(db *gorm.DB, cfg *config.Config, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if strings.HasSuffix(u.Hostname(), "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	userRepo := repository.NewUserRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	xpRepo := repository.NewXPRepository(db)
	contestRepo := repository.NewContestRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	ledgerSvc := service.NewLedgerService(userRepo)
	notifySvc := service.NewNotificationService(notificationRepo)
	xpSvc := service.NewXPService(db, xpRepo, userRepo, ledgerSvc, notifySvc, cfg.StorageRetries)
	reactionSvc := service.NewReactionService(db, reactionRepo, contestRepo, ledgerSvc, xpSvc, cfg.ReactionCost, cfg.StorageRetries)
	settlementSvc := service.NewSettlementService(db, contestRepo, reactionRepo, ledgerSvc, xpSvc, notifySvc, cfg.StorageRetries)
	withdrawalSvc := service.NewWithdrawalService(db, withdrawalRepo, ledgerSvc, notifySvc, cfg.MinWithdrawal, cfg.StorageRetries)

	reactionHandler := handler.NewReactionHandler(reactionSvc)
	xpHandler := handler.NewXPHandler(xpSvc, ledgerSvc)
	contestHandler := handler.NewContestHandler(settlementSvc)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalSvc)
	notificationHandler := handler.NewNotificationHandler(notifySvc)

	authMw, err := appmw.NewAuthMiddleware(context.Background())
	if err != nil {
		e.Logger.Fatalf("failed to init firebase auth: %v", err)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	api.GET("/contests/:id/winners", contestHandler.Winners)

	authed := api.Group("", authMw.RequireAuth)
	authed.POST("/entries/:id/reactions", reactionHandler.Toggle)
	authed.DELETE("/entries/:id/reactions", reactionHandler.Remove)
	authed.POST("/xp/daily-checkin", xpHandler.DailyCheckin)
	authed.GET("/me/progress", xpHandler.GetProgress)
	authed.GET("/me/balance", xpHandler.GetBalance)
	authed.POST("/withdrawals", withdrawalHandler.Request)
	authed.GET("/me/withdrawals", withdrawalHandler.ListMine)
	authed.GET("/me/notifications", notificationHandler.ListMine)
	authed.POST("/me/notifications/read", notificationHandler.MarkAllRead)

	admin := api.Group("/admin", authMw.RequireAuth, authMw.RequireAdmin)
	admin.POST("/contests/:id/finalize", contestHandler.Finalize)
	admin.POST("/withdrawals/:id/complete", withdrawalHandler.Complete)
	admin.POST("/withdrawals/:id/reject", withdrawalHandler.Reject)

	return &Server{e: e, sha: sha, build: buildTime}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiftlog/timeclock-backend-go/internal/config"
	appHTTP "github.com/shiftlog/timeclock-backend-go/internal/handler/http"
	"github.com/shiftlog/timeclock-backend-go/internal/pkg/cron"
	"github.com/shiftlog/timeclock-backend-go/internal/pkg/database"
	"github.com/shiftlog/timeclock-backend-go/internal/pkg/jwt"
	"github.com/shiftlog/timeclock-backend-go/internal/repository/postgresql"
	adminService "github.com/shiftlog/timeclock-backend-go/internal/service/admin"
	auditService "github.com/shiftlog/timeclock-backend-go/internal/service/audit"
	authService "github.com/shiftlog/timeclock-backend-go/internal/service/auth"
	reportService "github.com/shiftlog/timeclock-backend-go/internal/service/report"
	timeclockService "github.com/shiftlog/timeclock-backend-go/internal/service/timeclock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	if err := database.RunMigrations(context.Background(), dsn); err != nil {
		fmt.Println("Error running migrations:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	clockLogRepo := postgresql.NewClockLogRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	txManager := postgresql.NewTxManager(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	recorder := auditService.NewRecorder(auditRepo)

	clockSvc := timeclockService.NewClockService(txManager, clockLogRepo, userRepo, recorder)
	authSvc := authService.NewAuthService(userRepo, jwtService, recorder)
	adminSvc := adminService.NewAdminService(userRepo, recorder)
	reportSvc := reportService.NewReportService(clockLogRepo, auditRepo, userRepo, recorder)

	authHandler := appHTTP.NewAuthHandler(authSvc, clockSvc)
	adminHandler := appHTTP.NewAdminHandler(adminSvc, clockSvc, reportSvc)

	router := appHTTP.NewRouter(cfg, jwtService, authHandler, adminHandler)

	scheduler := cron.NewScheduler()
	if cfg.Purge.Enabled {
		timeclockJobs := cron.NewTimeclockJobs(clockSvc, auditRepo)
		timeclockJobs.RegisterJobs(scheduler, cfg.Purge.CheckInterval)
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Server starting on port %d\n", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down server...")
	if err := server.Shutdown(context.Background()); err != nil {
		fmt.Println("Server shutdown error:", err)
	}
}

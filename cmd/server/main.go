package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pdf-toolbox/internal/config"
	"pdf-toolbox/internal/domain"
	"pdf-toolbox/internal/handler"
	"pdf-toolbox/pkg/logger"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}
	// Wiring
	container := config.NewContainer()
	cfg := container.Config

	workspace, err := handler.NewWorkspace(cfg.GetWorkspaceDir())
	if err != nil {
		container.Logger.Error("Workspace unavailable", err, "dir", cfg.GetWorkspaceDir())
		os.Exit(1)
	}

	// Handlers
	httpLogger := logger.Component(container.Logger, "http")
	operationHandler := handler.NewOperationHandler(
		container.MergeService,
		container.SplitService,
		container.ConversionService,
		container.JobService,
		workspace,
		handler.OperationDefaults{DPI: cfg.GetDefaultDPI(), ImageFormat: cfg.GetDefaultImageFormat()},
		httpLogger,
	)
	securityHandler := handler.NewSecurityHandler(
		container.SecurityService,
		container.InfoService,
		container.JobService,
		workspace,
		httpLogger,
	)
	fileHandler := handler.NewFileHandler(workspace, cfg.GetMaxFileSize(), httpLogger)
	jobHandler := handler.NewJobHandler(container.JobService, workspace, httpLogger)

	routerOpts := handler.RouterOptions{AllowedOrigins: cfg.GetAllowedOrigins()}
	if cfg.GetRequireAuth() {
		if !container.SupabaseClient.Enabled() {
			container.Logger.Error("REQUIRE_AUTH is set but Supabase is not configured", domain.ErrSupabaseDisabled)
			os.Exit(1)
		}
		routerOpts.Auth = handler.NewAuthMiddleware(container.SupabaseClient, httpLogger).Middleware
	}

	// Router
	router := handler.NewRouter(operationHandler, securityHandler, fileHandler, jobHandler, routerOpts)

	// start server
	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr, "workspace", workspace.Root())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()
	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		container.Logger.Error("Server shutdown failed", err)
	}
	if err := container.JobService.Shutdown(ctx); err != nil {
		container.Logger.Warn("Background jobs still running at exit", "error", err)
	}

	container.Logger.Info("Server exited")
}

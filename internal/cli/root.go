package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"greenpulse/internal/api"
	"greenpulse/internal/auth"
	"greenpulse/internal/config"
	"greenpulse/internal/service"
	"greenpulse/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "greenpulse",
	Short: "A CRUD backend for tracking users and planted trees",
}

var configPath string

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GreenPulse API server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}

		db, err := storage.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Error opening database: %v", err)
		}

		users := service.NewUserService(db)
		trees := service.NewTreeService(db)
		tokens := auth.NewTokenService([]byte(cfg.SecretKey), cfg.TokenTTL())
		handler := api.NewHandler(users, trees, tokens, db)

		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: api.NewRouter(handler, cfg.AllowedOrigins),
		}

		// Setup context for graceful shutdown
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			fmt.Println("\nShutdown signal received, stopping server...")
			cancel()
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Shutdown error: %v", err)
			}
		}()

		log.Printf("GreenPulse API listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
		fmt.Println("Server stopped")
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to greenpulse.yaml")
	rootCmd.AddCommand(serveCmd)
}

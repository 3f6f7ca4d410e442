package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/trustgate/internal/config"
	"github.com/dropDatabas3/trustgate/internal/http/server"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
)

var version = "dev"

func main() {
	// .env opcional: en prod la config viene del entorno real.
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:     "trustgate",
		Short:   "Gateway de validación e identidad para el dashboard de seguridad",
		Version: version,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("TRUSTGATE_CONFIG"), "Ruta al config.yaml (env TRUSTGATE_CONFIG)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP del gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check-config",
		Short: "Valida la configuración sin levantar el servidor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(configPath); err != nil {
				return err
			}
			fmt.Println("config ok")
			return nil
		},
	}

	root.AddCommand(serveCmd)
	root.AddCommand(checkCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("cargando config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "trustgate",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()

	handler, cleanup, err := server.BuildHandler(cfg)
	if err != nil {
		return fmt.Errorf("armando handler: %w", err)
	}
	defer func() { _ = cleanup() }()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  config.MustDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.MustDuration(cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("gateway listening",
			logger.Component("server"),
			logger.String("addr", cfg.Server.Addr),
			logger.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.L().Info("shutting down", logger.Component("server"), logger.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.L().Info("gateway stopped", logger.Component("server"))
	return nil
}

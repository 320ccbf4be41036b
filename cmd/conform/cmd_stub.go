package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mughalk/csc301-a2/config"
	"github.com/mughalk/csc301-a2/internal/stub"
	"github.com/mughalk/csc301-a2/pkg/database"
	"github.com/mughalk/csc301-a2/pkg/logger"
)

var stubFlags struct {
	configPath string
	dbDir      string
	authSecret string
}

// conform stub — start local renditions of the three services and the
// gateway on the ports in config.json, for dry runs without a deployment.
// POST /shutdown on the gateway (or SIGINT/SIGTERM) stops everything.
var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Start local stub services and gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(stubFlags.configPath)
		if err != nil {
			return err
		}

		userEP, err := cfg.Service(config.SectionUser)
		if err != nil {
			return err
		}
		productEP, err := cfg.Service(config.SectionProduct)
		if err != nil {
			return err
		}
		orderEP, err := cfg.Service(config.SectionOrder)
		if err != nil {
			return err
		}
		gatewayEP, err := cfg.Service(config.SectionGateway)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(stubFlags.dbDir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}

		userDB, err := database.Open("sqlite", filepath.Join(stubFlags.dbDir, "users.db"))
		if err != nil {
			return err
		}
		productDB, err := database.Open("sqlite", filepath.Join(stubFlags.dbDir, "products.db"))
		if err != nil {
			return err
		}
		orderDB, err := database.Open("sqlite", filepath.Join(stubFlags.dbDir, "orders.db"))
		if err != nil {
			return err
		}

		userSvc, err := stub.NewUserService(userDB)
		if err != nil {
			return err
		}
		productSvc, err := stub.NewProductService(productDB)
		if err != nil {
			return err
		}
		orderSvc, err := stub.NewOrderService(orderDB, gatewayEP.Base())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		shutdownCtx, requestShutdown := context.WithCancel(ctx)
		defer requestShutdown()

		gw := stub.NewGateway(map[string][]string{
			"user":    addr(userEP),
			"product": addr(productEP),
			"order":   addr(orderEP),
		}, stubFlags.authSecret, requestShutdown)

		servers := []*http.Server{
			{Addr: listen(userEP), Handler: userSvc.Routes()},
			{Addr: listen(productEP), Handler: productSvc.Routes()},
			{Addr: listen(orderEP), Handler: orderSvc.Routes()},
			{Addr: listen(gatewayEP), Handler: gw.Routes()},
		}

		errs := make(chan error, len(servers))
		for _, srv := range servers {
			srv := srv
			go func() {
				logger.Info("stub listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errs <- err
				}
			}()
		}

		select {
		case err := <-errs:
			return err
		case <-shutdownCtx.Done():
		}

		logger.Info("shutting stubs down")
		graceCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			_ = srv.Shutdown(graceCtx)
		}
		return nil
	},
}

func addr(ep config.Endpoint) []string {
	return []string{fmt.Sprintf("%s:%d", ep.IP, ep.Port)}
}

func listen(ep config.Endpoint) string {
	return fmt.Sprintf("%s:%d", ep.IP, ep.Port)
}

func init() {
	fl := stubCmd.Flags()
	fl.StringVar(&stubFlags.configPath, "config", "config.json", "deployment record")
	fl.StringVar(&stubFlags.dbDir, "db-dir", "stubdata", "directory for the stub SQLite databases")
	fl.StringVar(&stubFlags.authSecret, "auth-secret", "", "HS256 secret the gateway verifies (empty disables auth)")
}

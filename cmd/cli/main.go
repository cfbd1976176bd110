package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/adminauth/internal/buildinfo"
	"github.com/dmitrijs2005/adminauth/internal/client/cli"
	"github.com/dmitrijs2005/adminauth/internal/client/client"
	"github.com/dmitrijs2005/adminauth/internal/client/config"
	"github.com/dmitrijs2005/adminauth/internal/client/credentials"
	"github.com/dmitrijs2005/adminauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/adminauth/internal/client/services"
	"github.com/dmitrijs2005/adminauth/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel, false)

	repo, err := metadata.Open(ctx, cfg.StoreOptions())
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer repo.Close()

	gateway := client.NewHTTPClient(cfg.GatewayBaseURL,
		client.WithTimeout(cfg.GatewayTimeout),
		client.WithLogger(logger),
	)

	store := credentials.New(repo)
	svc := services.NewAuthService(gateway, store,
		services.WithPolicy(cfg.LockoutPolicy()),
		services.WithPasswordPolicy(cfg.PasswordPolicy()),
		services.WithRole(cfg.Role),
		services.WithLogger(logger),
	)
	gateway.SetTokenSource(svc.Token)
	gateway.OnUnauthorized(svc.HandleSessionExpired)

	flow := services.NewOTPFlow(svc, store, nil, logger)

	app := cli.NewApp(svc, flow, os.Stdin, os.Stdout, logger)
	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}

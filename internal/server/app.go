// Package server wires the development gateway: it opens and migrates the
// account database, seeds the admin account and serves the REST API until
// the context is cancelled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/adminauth/internal/logging"
	"github.com/dmitrijs2005/adminauth/internal/server/config"
	"github.com/dmitrijs2005/adminauth/internal/server/httpapi"
	"github.com/dmitrijs2005/adminauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/adminauth/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
}

// NewApp opens the database named by c.DatabaseDSN and prepares the
// services. Reset codes are written to otpOut, since the gateway sends no
// email; nil means os.Stderr.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger, otpOut io.Writer) (*App, error) {
	if otpOut == nil {
		otpOut = os.Stderr
	}

	rm := repomanager.NewSQLiteRepositoryManager()
	db, err := repomanager.Open(ctx, rm, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := services.NewUserService(db, rm, c,
		services.WithLogger(logger),
		services.WithOTPSink(func(email, code string) {
			fmt.Fprintf(otpOut, "OTP for %s: %s\n", email, code)
		}),
	)

	if c.SeedAdminEmail != "" {
		if err := us.Seed(ctx, c.SeedAdminEmail, c.SeedAdminPassword, c.SeedAdminName); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		logger.Info(ctx, "admin account ready", "email", c.SeedAdminEmail)
	}

	return &App{config: c, logger: logger, db: db, userService: us}, nil
}

// Handler returns the REST API without starting a listener.
func (app *App) Handler() *httpapi.HTTPServer {
	return httpapi.NewHTTPServer(app.config.Addr, app.logger, app.userService)
}

// Run serves until ctx is cancelled and closes the database afterwards.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.Handler().Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}
	return nil
}

// Package repomanager vends the gateway repositories bound to a connection
// or transaction, and migrates the schema.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/adminauth/internal/dbx"
	"github.com/dmitrijs2005/adminauth/internal/server/repositories/otpcodes"
	"github.com/dmitrijs2005/adminauth/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/adminauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	OTPCodes(db dbx.DBTX) otpcodes.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
}

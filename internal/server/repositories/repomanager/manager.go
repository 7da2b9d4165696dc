package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/chatandpay/internal/dbx"
	"github.com/dmitrijs2005/chatandpay/internal/server/repositories/otp"
	"github.com/dmitrijs2005/chatandpay/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either a pool or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Otp(db dbx.DBTX) otp.Repository
}

package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bienesraices/internal/dbx"
	"github.com/dmitrijs2005/bienesraices/internal/server/repositories/messages"
	"github.com/dmitrijs2005/bienesraices/internal/server/repositories/properties"
	"github.com/dmitrijs2005/bienesraices/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Properties(db dbx.DBTX) properties.Repository
	Messages(db dbx.DBTX) messages.Repository
}

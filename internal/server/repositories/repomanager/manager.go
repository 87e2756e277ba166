// Package repomanager wires concrete repositories to a database handle so
// services can obtain them for either a *sql.DB or an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/premio/internal/dbx"
	"github.com/dmitrijs2005/premio/internal/server/repositories/predictions"
	"github.com/dmitrijs2005/premio/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Predictions(db dbx.DBTX) predictions.Repository
}

package postgre

import (
	"database/sql"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/recordstore"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
)

type implRepository struct {
	l        log.Logger
	db       *sql.DB
	entities map[string]entityTable
}

var _ recordstore.Store = &implRepository{}

// New returns a Store backed by the application's PostgreSQL schema.
func New(l log.Logger, db *sql.DB) recordstore.Store {
	return &implRepository{
		l:        l,
		db:       db,
		entities: defaultEntities,
	}
}

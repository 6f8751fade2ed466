package migrations

import (
	"reflect"
	"runtime"

	"github.com/mvierow/clubbot/cache"
	"github.com/mvierow/clubbot/helpers"
)

var migrations = []helpers.Callback{
	m0_create_club_indexes,
}

// Run executes all registered migrations
func Run() {
	log := cache.GetLogger().WithField("module", "migrations")
	log.Info("Running migrations...")

	for _, migration := range migrations {
		migrationName := runtime.FuncForPC(
			reflect.ValueOf(migration).Pointer(),
		).Name()

		log.Info("Running " + migrationName)
		migration()
	}

	log.Info("Migrations finished!")
}

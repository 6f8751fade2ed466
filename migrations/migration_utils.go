package migrations

import (
	"github.com/globalsign/mgo"
	"github.com/mvierow/clubbot/helpers"
	"github.com/mvierow/clubbot/models"
)

// EnsureUniqueIndex creates a unique index on the collection, a no-op
// when the index already exists
func EnsureUniqueIndex(collection models.MongoDbCollection, keys ...string) {
	err := helpers.MdbCollection(collection).EnsureIndex(mgo.Index{
		Key:        keys,
		Unique:     true,
		Background: true,
	})
	helpers.Relax(err)
}

// EnsureIndex creates a plain index on the collection
func EnsureIndex(collection models.MongoDbCollection, keys ...string) {
	err := helpers.MdbCollection(collection).EnsureIndex(mgo.Index{
		Key:        keys,
		Background: true,
	})
	helpers.Relax(err)
}

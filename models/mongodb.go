package models

// MongoDbCollection is the name of a collection in mongodb
type MongoDbCollection string

func (m MongoDbCollection) String() string {
	return string(m)
}

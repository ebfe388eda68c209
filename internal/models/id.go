package models

import "go.mongodb.org/mongo-driver/v2/bson"

// NewID returns a fresh ObjectID in hex form. Every entity id in the catalog,
// embedded reviews included, has this shape.
func NewID() string { return bson.NewObjectID().Hex() }

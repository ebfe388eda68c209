package mongodb

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	repo "github.com/baharkarakas/moviecatalog/internal/repository"
)

type Repositories struct {
	Users  repo.Users
	Genres repo.Genres
	Movies repo.Movies
}

func NewRepositories(d *mongo.Database) Repositories {
	return Repositories{
		Users:  &usersRepo{coll: d.Collection("users")},
		Genres: &genresRepo{coll: d.Collection("genres")},
		Movies: &moviesRepo{coll: d.Collection("movies")},
	}
}

// objectID parses a hex id; malformed ids cannot exist, so they read as not found.
func objectID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, repo.ErrNotFound
	}
	return id, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repo.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repo.ErrDuplicate
	default:
		return err
	}
}

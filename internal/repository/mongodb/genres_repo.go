package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/baharkarakas/moviecatalog/internal/models"
	repo "github.com/baharkarakas/moviecatalog/internal/repository"
)

type genresRepo struct{ coll *mongo.Collection }

type genreDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d genreDoc) model() models.Genre {
	return models.Genre{ID: d.ID.Hex(), Name: d.Name, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

func (r *genresRepo) Create(ctx context.Context, name string) (models.Genre, error) {
	now := time.Now().UTC()
	d := genreDoc{ID: bson.NewObjectID(), Name: name, CreatedAt: now, UpdatedAt: now}
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return models.Genre{}, mapErr(err)
	}
	return d.model(), nil
}

func (r *genresRepo) GetByID(ctx context.Context, id string) (models.Genre, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.Genre{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *genresRepo) GetByName(ctx context.Context, name string) (models.Genre, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *genresRepo) findOne(ctx context.Context, filter bson.M) (models.Genre, error) {
	var d genreDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return models.Genre{}, mapErr(err)
	}
	return d.model(), nil
}

func (r *genresRepo) List(ctx context.Context) ([]models.Genre, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []genreDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Genre, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *genresRepo) Update(ctx context.Context, g models.Genre) (models.Genre, error) {
	oid, err := objectID(g.ID)
	if err != nil {
		return models.Genre{}, err
	}
	var d genreDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"name": g.Name, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		return models.Genre{}, mapErr(err)
	}
	return d.model(), nil
}

func (r *genresRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/baharkarakas/moviecatalog/internal/models"
	repo "github.com/baharkarakas/moviecatalog/internal/repository"
)

type moviesRepo struct{ coll *mongo.Collection }

type reviewDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	User      bson.ObjectID `bson:"user"`
	Name      string        `bson:"name"`
	Rating    float64       `bson:"rating"`
	Comment   string        `bson:"comment"`
	CreatedAt time.Time     `bson:"createdAt"`
}

type movieDoc struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	Name       string        `bson:"name"`
	Image      string        `bson:"image"`
	Year       int           `bson:"year"`
	Genre      bson.ObjectID `bson:"genre"`
	Detail     string        `bson:"detail"`
	Cast       []string      `bson:"cast"`
	Reviews    []reviewDoc   `bson:"reviews"`
	NumReviews int           `bson:"numReviews"`
	AvgRating  float64       `bson:"avgrating"`
	CreatedAt  time.Time     `bson:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt"`
	Rev        int64         `bson:"rev"`
}

func (d movieDoc) model() *models.Movie {
	reviews := make([]models.Review, 0, len(d.Reviews))
	for _, r := range d.Reviews {
		reviews = append(reviews, models.Review{
			ID:        r.ID.Hex(),
			UserID:    r.User.Hex(),
			Name:      r.Name,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	c := models.Catalog{
		Name:   d.Name,
		Image:  d.Image,
		Year:   d.Year,
		Detail: d.Detail,
		Cast:   d.Cast,
	}
	if !d.Genre.IsZero() {
		c.Genre = d.Genre.Hex()
	}
	return models.RestoreMovie(d.ID.Hex(), c, reviews, d.CreatedAt, d.UpdatedAt, d.Rev)
}

// catalogDoc maps the genre reference; a blank genre on a legacy record stays
// blank.
func catalogDoc(c models.Catalog) (genre bson.ObjectID, cast []string, err error) {
	if c.Genre != "" {
		genre, err = bson.ObjectIDFromHex(c.Genre)
		if err != nil {
			return bson.NilObjectID, nil, fmt.Errorf("genre id %q: %w", c.Genre, err)
		}
	}
	cast = c.Cast
	if cast == nil {
		cast = []string{}
	}
	return genre, cast, nil
}

func reviewDocs(rs []models.Review) ([]reviewDoc, error) {
	out := make([]reviewDoc, 0, len(rs))
	for _, r := range rs {
		id, err := bson.ObjectIDFromHex(r.ID)
		if err != nil {
			return nil, fmt.Errorf("review id %q: %w", r.ID, err)
		}
		user, err := bson.ObjectIDFromHex(r.UserID)
		if err != nil {
			return nil, fmt.Errorf("review user %q: %w", r.UserID, err)
		}
		out = append(out, reviewDoc{
			ID:        id,
			User:      user,
			Name:      r.Name,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

func (r *moviesRepo) Create(ctx context.Context, m *models.Movie) error {
	oid, err := bson.ObjectIDFromHex(m.ID)
	if err != nil {
		return fmt.Errorf("movie id %q: %w", m.ID, err)
	}
	genre, cast, err := catalogDoc(m.Catalog)
	if err != nil {
		return err
	}
	reviews, err := reviewDocs(m.Reviews())
	if err != nil {
		return err
	}
	d := movieDoc{
		ID:         oid,
		Name:       m.Name,
		Image:      m.Image,
		Year:       m.Year,
		Genre:      genre,
		Detail:     m.Detail,
		Cast:       cast,
		Reviews:    reviews,
		NumReviews: m.NumReviews(),
		AvgRating:  m.AvgRating(),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		Rev:        m.Rev(),
	}
	_, err = r.coll.InsertOne(ctx, d)
	return mapErr(err)
}

func (r *moviesRepo) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d movieDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

func (r *moviesRepo) List(ctx context.Context) ([]*models.Movie, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return decodeMovies(ctx, cur)
}

func (r *moviesRepo) ListSorted(ctx context.Context, field repo.SortField, limit int) ([]*models.Movie, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: string(field), Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return decodeMovies(ctx, cur)
}

func (r *moviesRepo) Sample(ctx context.Context, size int) ([]*models.Movie, error) {
	pipeline := mongo.Pipeline{{{Key: "$sample", Value: bson.D{{Key: "size", Value: size}}}}}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	return decodeMovies(ctx, cur)
}

func decodeMovies(ctx context.Context, cur *mongo.Cursor) ([]*models.Movie, error) {
	var docs []movieDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*models.Movie, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *moviesRepo) UpdateCatalog(ctx context.Context, id string, c models.Catalog) (*models.Movie, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	genre, cast, err := catalogDoc(c)
	if err != nil {
		return nil, err
	}
	set := bson.M{
		"name":      c.Name,
		"image":     c.Image,
		"year":      c.Year,
		"genre":     genre,
		"detail":    c.Detail,
		"cast":      cast,
		"updatedAt": time.Now().UTC(),
	}

	var d movieDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

// SaveReviews is a compare-and-set on rev: two writers that loaded the same
// revision cannot both land.
func (r *moviesRepo) SaveReviews(ctx context.Context, m *models.Movie) error {
	oid, err := objectID(m.ID)
	if err != nil {
		return err
	}
	reviews, err := reviewDocs(m.Reviews())
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid, "rev": m.Rev()}
	if m.Rev() == 0 {
		// documents written before revisions existed have no rev field
		filter["rev"] = bson.M{"$in": bson.A{int64(0), nil}}
	}
	now := time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, filter,
		bson.M{
			"$set": bson.M{
				"reviews":    reviews,
				"numReviews": m.NumReviews(),
				"avgrating":  m.AvgRating(),
				"updatedAt":  now,
			},
			"$inc": bson.M{"rev": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		if n == 0 {
			return repo.ErrNotFound
		}
		return repo.ErrStaleWrite
	}
	m.MarkSaved(now)
	return nil
}

func (r *moviesRepo) Delete(ctx context.Context, id string) error {
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

package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campsite/internal/models"
)

var (
	// ErrCampgroundNotFound signals a campground id that matched nothing.
	ErrCampgroundNotFound = errors.New("store: campground not found")
	// ErrCommentNotFound signals a comment id that matched nothing.
	ErrCommentNotFound = errors.New("store: comment not found")
)

// MongoStore handles campground and comment CRUD in MongoDB.
type MongoStore struct {
	campgrounds *mongo.Collection
	comments    *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		campgrounds: db.Collection("campgrounds"),
		comments:    db.Collection("comments"),
	}
}

var regexMeta = regexp.MustCompile(`[-[\]{}()*+?.,\\^$|#\s]`)

// EscapeRegex backslash-escapes regex metacharacters so a user-supplied
// search term is matched literally.
func EscapeRegex(text string) string {
	return regexMeta.ReplaceAllString(text, `\$0`)
}

func (s *MongoStore) InsertCampground(ctx context.Context, cg *models.Campground) (string, error) {
	cg.CreatedAt = time.Now()
	res, err := s.campgrounds.InsertOne(ctx, cg)
	if err != nil {
		return "", fmt.Errorf("mongo insert campground: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	cg.ID = oid
	return oid.Hex(), nil
}

func (s *MongoStore) AllCampgrounds(ctx context.Context) ([]models.Campground, error) {
	return s.findCampgrounds(ctx, bson.M{})
}

// SearchCampgrounds matches names containing the query as a literal,
// case-insensitive substring.
func (s *MongoStore) SearchCampgrounds(ctx context.Context, query string) ([]models.Campground, error) {
	filter := bson.M{"name": primitive.Regex{Pattern: EscapeRegex(query), Options: "i"}}
	return s.findCampgrounds(ctx, filter)
}

func (s *MongoStore) CampgroundsByOwner(ctx context.Context, ownerID string) ([]models.Campground, error) {
	return s.findCampgrounds(ctx, bson.M{"owner.id": ownerID})
}

func (s *MongoStore) findCampgrounds(ctx context.Context, filter bson.M) ([]models.Campground, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.campgrounds.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Campground
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) GetCampground(ctx context.Context, id string) (*models.Campground, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCampgroundNotFound
	}
	var cg models.Campground
	if err := s.campgrounds.FindOne(ctx, bson.M{"_id": oid}).Decode(&cg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCampgroundNotFound
		}
		return nil, err
	}
	return &cg, nil
}

// SaveCampground replaces the stored document with the in-memory record.
func (s *MongoStore) SaveCampground(ctx context.Context, cg *models.Campground) error {
	_, err := s.campgrounds.ReplaceOne(ctx, bson.M{"_id": cg.ID}, cg)
	if err != nil {
		return fmt.Errorf("mongo save campground: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteCampground(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCampgroundNotFound
	}
	_, err = s.campgrounds.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

// PushComment appends a comment reference onto the campground's list.
func (s *MongoStore) PushComment(ctx context.Context, campgroundID string, commentID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(campgroundID)
	if err != nil {
		return ErrCampgroundNotFound
	}
	_, err = s.campgrounds.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$push": bson.M{"comments": commentID}})
	return err
}

func (s *MongoStore) InsertComment(ctx context.Context, c *models.Comment) (string, error) {
	c.CreatedAt = time.Now()
	res, err := s.comments.InsertOne(ctx, c)
	if err != nil {
		return "", fmt.Errorf("mongo insert comment: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	c.ID = oid
	return oid.Hex(), nil
}

func (s *MongoStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCommentNotFound
	}
	var c models.Comment
	if err := s.comments.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetComments resolves a campground's comment references. Dangling ids
// (comments deleted without retracting the reference) are skipped.
func (s *MongoStore) GetComments(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.comments.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Comment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateComment(ctx context.Context, id, text string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCommentNotFound
	}
	_, err = s.comments.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"text": text}})
	return err
}

// DeleteComment removes the comment document only. The parent campground's
// reference list is left alone; readers tolerate dangling ids.
func (s *MongoStore) DeleteComment(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCommentNotFound
	}
	_, err = s.comments.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

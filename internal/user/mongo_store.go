package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const mongoCollection = "users"

// emailCollation compares emails case-insensitively. Documents written by
// other services keep the email as the user typed it.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// mongoUser mirrors the document shape already used by the users
// collection: name, password, googleId and profilePicture.
type mongoUser struct {
	ID             bson.ObjectID `bson:"_id"`
	Name           string        `bson:"name"`
	Email          string        `bson:"email"`
	Password       *string       `bson:"password"`
	GoogleID       *string       `bson:"googleId,omitempty"`
	ProfilePicture string        `bson:"profilePicture"`
	CreatedAt      time.Time     `bson:"createdAt"`
}

func (u mongoUser) record() *Record {
	return &Record{
		ID:                u.ID.Hex(),
		Email:             u.Email,
		DisplayName:       u.Name,
		PasswordHash:      u.Password,
		ProviderSubjectID: u.GoogleID,
		AvatarURL:         u.ProfilePicture,
		CreatedAt:         u.CreatedAt,
	}
}

// MongoStore keeps users in a MongoDB collection with a case-insensitive
// unique index on email.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoStore ensures the unique email index on the users collection of
// database.
func NewMongoStore(ctx context.Context, database *mongo.Database) (*MongoStore, error) {
	coll := database.Collection(mongoCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique_ci").SetCollation(emailCollation),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure users email index: %w", err)
	}

	return &MongoStore{coll: coll, now: time.Now}, nil
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*Record, error) {
	var doc mongoUser
	err := s.coll.FindOne(ctx,
		bson.D{{Key: "email", Value: strings.ToLower(email)}},
		options.FindOne().SetCollation(emailCollation),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.record(), nil
}

func (s *MongoStore) Create(ctx context.Context, rec Record) (*Record, error) {
	doc := mongoUser{
		ID:             bson.NewObjectID(),
		Name:           rec.DisplayName,
		Email:          strings.ToLower(rec.Email),
		Password:       rec.PasswordHash,
		GoogleID:       rec.ProviderSubjectID,
		ProfilePicture: rec.AvatarURL,
		// BSON dates carry millisecond precision.
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return doc.record(), nil
}

var _ Store = (*MongoStore)(nil)

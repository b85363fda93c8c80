// Package mongostore implements auth.CredentialStore on MongoDB.
//
// Documents carry a version counter; Update replaces a document only when the
// version it read is still current and retries otherwise.
package mongostore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/fintrack/svc/auth"
)

const (
	DefaultCollection = "users"
	DefaultMaxRetries = 20
)

// ErrWriteConflict is returned when Update loses the version race too many times.
var ErrWriteConflict = errors.New("mongostore: too many concurrent updates")

type document struct {
	ID               string     `bson:"_id"`
	Email            string     `bson:"email"`
	EmailKey         string     `bson:"email_key"`
	Name             string     `bson:"name"`
	Image            string     `bson:"image"`
	PasswordHash     []byte     `bson:"password_hash"`
	TwoFactorSecret  string     `bson:"two_factor_secret,omitempty"`
	TwoFactorToken   string     `bson:"two_factor_token,omitempty"`
	TwoFactorExpiry  *time.Time `bson:"two_factor_expiry,omitempty"`
	TwoFactorEnabled bool       `bson:"is_two_factor_enabled"`
	Version          int64      `bson:"version"`
	CreatedAt        time.Time  `bson:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at"`
}

type Store struct {
	coll       *mongo.Collection
	maxRetries int
	now        func() time.Time
}

type Option func(*Store)

// WithMaxRetries bounds optimistic retries in Update.
func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// New returns a store over the users collection of db and ensures the
// unique email index exists.
func New(ctx context.Context, db *mongo.Database, opts ...Option) (*Store, error) {
	return NewWithCollection(ctx, db.Collection(DefaultCollection), opts...)
}

// NewWithCollection is New for an explicit collection.
func NewWithCollection(ctx context.Context, coll *mongo.Collection, opts ...Option) (*Store, error) {
	s := &Store{coll: coll, maxRetries: DefaultMaxRetries, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_key", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "email_key", Value: emailKey(email)}})
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (s *Store) Create(ctx context.Context, account *auth.Account) error {
	doc := toDocument(account)
	now := s.now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}
	doc.Version = max(doc.Version, 1)

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, fn func(*auth.Account) error) (*auth.Account, error) {
	for range s.maxRetries {
		current, err := s.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		next := current.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		next.ID = current.ID
		next.Version = current.Version + 1
		next.UpdatedAt = s.now().UTC()

		res, err := s.coll.ReplaceOne(ctx,
			bson.D{{Key: "_id", Value: id.String()}, {Key: "version", Value: current.Version}},
			toDocument(next),
		)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, auth.ErrEmailTaken
			}
			return nil, err
		}
		if res.MatchedCount == 1 {
			return next, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return nil, ErrWriteConflict
}

func (s *Store) findOne(ctx context.Context, filter bson.D) (*auth.Account, error) {
	var doc document
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return doc.account()
}

func emailKey(email string) string {
	return strings.ToLower(email)
}

func toDocument(a *auth.Account) document {
	return document{
		ID:               a.ID.String(),
		Email:            a.Email,
		EmailKey:         emailKey(a.Email),
		Name:             a.Name,
		Image:            a.Image,
		PasswordHash:     a.PasswordHash,
		TwoFactorSecret:  a.TwoFactorSecret,
		TwoFactorToken:   a.TwoFactorToken,
		TwoFactorExpiry:  a.TwoFactorExpiry,
		TwoFactorEnabled: a.TwoFactorEnabled,
		Version:          a.Version,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (d document) account() (*auth.Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	acc := &auth.Account{
		ID:               id,
		Email:            d.Email,
		Name:             d.Name,
		Image:            d.Image,
		PasswordHash:     d.PasswordHash,
		TwoFactorSecret:  d.TwoFactorSecret,
		TwoFactorToken:   d.TwoFactorToken,
		TwoFactorEnabled: d.TwoFactorEnabled,
		Version:          d.Version,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
	if d.TwoFactorExpiry != nil {
		expiry := d.TwoFactorExpiry.UTC()
		acc.TwoFactorExpiry = &expiry
	}
	return acc, nil
}

var _ auth.CredentialStore = (*Store)(nil)

package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/infrastructure/db"
	"github.com/GSMS-B/ProjectQR/internal/processing/codes"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RecordsRepository struct {
	coll *mongo.Collection
}

type recordDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Code             string             `bson:"code"`
	DestinationURL   string             `bson:"destinationUrl"`
	OwnerID          string             `bson:"ownerId,omitempty"`
	Title            string             `bson:"title,omitempty"`
	Active           bool               `bson:"active"`
	ShowPreview      bool               `bson:"showPreview"`
	AnalyticsEnabled bool               `bson:"analyticsEnabled"`
	Color            string             `bson:"color,omitempty"`
	Background       string             `bson:"background,omitempty"`
	TotalScans       int64              `bson:"totalScans,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
	ExpiresAt        *time.Time         `bson:"expiresAt,omitempty"`
}

func NewRecordsRepository(m *db.Mongo) (*RecordsRepository, error) {
	repo := &RecordsRepository{coll: m.Collection("records")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_code"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *RecordsRepository) Insert(ctx context.Context, record *codes.Record) error {
	doc := recordDoc{
		Code:             record.Code,
		DestinationURL:   record.DestinationURL,
		OwnerID:          record.OwnerID,
		Title:            record.Title,
		Active:           record.Active,
		ShowPreview:      record.ShowPreview,
		AnalyticsEnabled: record.AnalyticsEnabled,
		Color:            record.Color,
		Background:       record.Background,
		CreatedAt:        record.CreatedAt.UTC(),
		UpdatedAt:        record.UpdatedAt.UTC(),
		ExpiresAt:        record.ExpiresAt,
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if err == nil {
		return nil
	}

	if mongo.IsDuplicateKeyError(err) {
		return codes.ErrCodeTaken
	}

	return err
}

func (r *RecordsRepository) FindByCode(ctx context.Context, code string) (*codes.Record, error) {
	var doc recordDoc
	err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if err == nil {
		return mapRecordDoc(doc), nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, codes.ErrNotFound
	}

	return nil, err
}

// Update applies a partial edit in a single atomic document update, so
// readers only ever observe the prior or the fully edited state.
func (r *RecordsRepository) Update(ctx context.Context, code string, fields codes.EditFields, at time.Time) (*codes.Record, error) {
	set := bson.M{"updatedAt": at.UTC()}
	unset := bson.M{}

	if fields.DestinationURL != nil {
		set["destinationUrl"] = *fields.DestinationURL
	}
	if fields.Title != nil {
		set["title"] = *fields.Title
	}
	if fields.ShowPreview != nil {
		set["showPreview"] = *fields.ShowPreview
	}
	if fields.AnalyticsEnabled != nil {
		set["analyticsEnabled"] = *fields.AnalyticsEnabled
	}
	if fields.Color != nil {
		set["color"] = *fields.Color
	}
	if fields.Background != nil {
		set["background"] = *fields.Background
	}
	if fields.ClearExpiration {
		unset["expiresAt"] = ""
	} else if fields.ExpiresAt != nil {
		set["expiresAt"] = fields.ExpiresAt.UTC()
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var doc recordDoc
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"code": code},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return mapRecordDoc(doc), nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, codes.ErrNotFound
	}

	return nil, err
}

func (r *RecordsRepository) Deactivate(ctx context.Context, code string, at time.Time) error {
	res, err := r.coll.UpdateOne(
		ctx,
		bson.M{"code": code},
		bson.M{"$set": bson.M{"active": false, "updatedAt": at.UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return codes.ErrNotFound
	}
	return nil
}

// IncScanCount bumps the running scan total kept on the record itself.
func (r *RecordsRepository) IncScanCount(ctx context.Context, code string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"code": code},
		bson.M{"$inc": bson.M{"totalScans": 1}},
	)
	return err
}

func mapRecordDoc(doc recordDoc) *codes.Record {
	return &codes.Record{
		Code:             doc.Code,
		DestinationURL:   doc.DestinationURL,
		OwnerID:          doc.OwnerID,
		Title:            doc.Title,
		Active:           doc.Active,
		ShowPreview:      doc.ShowPreview,
		AnalyticsEnabled: doc.AnalyticsEnabled,
		Color:            doc.Color,
		Background:       doc.Background,
		TotalScans:       doc.TotalScans,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
		ExpiresAt:        doc.ExpiresAt,
	}
}

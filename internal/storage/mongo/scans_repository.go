package mongo

import (
	"context"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/infrastructure/db"
	"github.com/GSMS-B/ProjectQR/internal/processing/scans"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ScansRepository struct {
	coll *mongo.Collection
}

type scanDoc struct {
	EventID     string    `bson:"eventId"`
	Code        string    `bson:"code"`
	At          time.Time `bson:"at"`
	IP          string    `bson:"ip,omitempty"`
	Country     string    `bson:"country,omitempty"`
	CountryCode string    `bson:"countryCode,omitempty"`
	City        string    `bson:"city,omitempty"`
	DeviceClass string    `bson:"deviceClass,omitempty"`
	OS          string    `bson:"os,omitempty"`
	Browser     string    `bson:"browser,omitempty"`
	UserAgent   string    `bson:"userAgent,omitempty"`
	Referrer    string    `bson:"referrer,omitempty"`
}

func NewScansRepository(m *db.Mongo) (*ScansRepository, error) {
	repo := &ScansRepository{coll: m.Collection("scans")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}, {Key: "at", Value: -1}},
			Options: options.Index().SetName("code_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_event_id"),
		},
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// Append inserts one immutable scan event. The unique event id keeps
// redelivered kafka messages idempotent.
func (r *ScansRepository) Append(ctx context.Context, event *scans.Event) error {
	doc := scanDoc{
		EventID:     event.ID,
		Code:        event.Code,
		At:          event.At.UTC(),
		IP:          event.IP,
		Country:     event.Country,
		CountryCode: event.CountryCode,
		City:        event.City,
		DeviceClass: string(event.DeviceClass),
		OS:          event.OS,
		Browser:     event.Browser,
		UserAgent:   event.UserAgent,
		Referrer:    event.Referrer,
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *ScansRepository) ListByCodeSince(ctx context.Context, code string, since time.Time) ([]scans.Event, error) {
	cur, err := r.coll.Find(
		ctx,
		bson.M{
			"code": code,
			"at":   bson.M{"$gte": since.UTC()},
		},
		options.Find().SetSort(bson.D{{Key: "at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []scans.Event
	for cur.Next(ctx) {
		var doc scanDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, scans.Event{
			ID:          doc.EventID,
			Code:        doc.Code,
			At:          doc.At,
			IP:          doc.IP,
			Country:     doc.Country,
			CountryCode: doc.CountryCode,
			City:        doc.City,
			DeviceClass: scans.DeviceClass(doc.DeviceClass),
			OS:          doc.OS,
			Browser:     doc.Browser,
			UserAgent:   doc.UserAgent,
			Referrer:    doc.Referrer,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

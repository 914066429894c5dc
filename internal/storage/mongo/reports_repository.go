package mongo

import (
	"context"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/infrastructure/db"
	"github.com/GSMS-B/ProjectQR/internal/processing/reports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportsRepository struct {
	coll *mongo.Collection
}

type reportDoc struct {
	ReportID   string    `bson:"reportId"`
	Code       string    `bson:"code"`
	ReporterIP string    `bson:"reporterIp,omitempty"`
	Reason     string    `bson:"reason,omitempty"`
	Status     string    `bson:"status"`
	ReportedAt time.Time `bson:"reportedAt"`
}

func NewReportsRepository(m *db.Mongo) (*ReportsRepository, error) {
	repo := &ReportsRepository{coll: m.Collection("reports")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}, {Key: "reportedAt", Value: -1}},
			Options: options.Index().SetName("code_reported_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "reportId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_report_id"),
		},
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *ReportsRepository) Insert(ctx context.Context, report *reports.Report) error {
	doc := reportDoc{
		ReportID:   report.ID,
		Code:       report.Code,
		ReporterIP: report.ReporterIP,
		Reason:     report.Reason,
		Status:     string(report.Status),
		ReportedAt: report.ReportedAt.UTC(),
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *ReportsRepository) ListByCode(ctx context.Context, code string) ([]reports.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "reportedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"code": code}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []reportDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]reports.Report, 0, len(docs))
	for _, doc := range docs {
		result = append(result, reports.Report{
			ID:         doc.ReportID,
			Code:       doc.Code,
			ReporterIP: doc.ReporterIP,
			Reason:     doc.Reason,
			Status:     reports.Status(doc.Status),
			ReportedAt: doc.ReportedAt,
		})
	}
	return result, nil
}

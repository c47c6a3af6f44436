package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/victim-dao-api/models"
)

const receiptName = "receipts"

// ReceiptDatabase contains the methods to use with the receipts collection
type ReceiptDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Receipt, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Receipt, error)
	InsertOne(ctx context.Context, receipt models.Receipt) (InsertOneResultHelper, error)
	SetURL(ctx context.Context, id, userEmail, url string) (bool, error)
	Transition(ctx context.Context, id string, from []string, update bson.M) (bool, error)
	RevertVerification(ctx context.Context, id, status string) error
}

type receiptDatabase struct {
	db DatabaseHelper
}

// NewReceiptDatabase initializes a new instance of receipt database with the provided db connection
func NewReceiptDatabase(db DatabaseHelper) ReceiptDatabase {
	return &receiptDatabase{
		db: db,
	}
}

func (r *receiptDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	err := r.db.Collection(receiptName).FindOne(ctx, filter).Decode(&receipt)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (r *receiptDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Receipt, error) {
	var receipts []models.Receipt
	cursor, err := r.db.Collection(receiptName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&receipts)
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

func (r *receiptDatabase) InsertOne(ctx context.Context, receipt models.Receipt) (InsertOneResultHelper, error) {
	return r.db.Collection(receiptName).InsertOne(ctx, receipt)
}

// SetURL attaches an uploaded proof to a receipt owned by userEmail
func (r *receiptDatabase) SetURL(ctx context.Context, id, userEmail, url string) (bool, error) {
	res, err := r.db.Collection(receiptName).UpdateOne(ctx,
		bson.M{"_id": id, "userEmail": userEmail},
		bson.M{"$set": bson.M{"url": url}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// Transition applies update only while the receipt is still in one of the
// from statuses and has not been verified. It reports whether this call made
// the change, so side effects of a transition run at most once.
func (r *receiptDatabase) Transition(ctx context.Context, id string, from []string, update bson.M) (bool, error) {
	res, err := r.db.Collection(receiptName).UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": from}, "verified": false},
		bson.M{"$set": update},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// RevertVerification puts a verified receipt back into status so the
// verification can be retried
func (r *receiptDatabase) RevertVerification(ctx context.Context, id, status string) error {
	_, err := r.db.Collection(receiptName).UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ReceiptVerified, "verified": true},
		bson.M{
			"$set":   bson.M{"status": status, "verified": false},
			"$unset": bson.M{"verifiedAt": ""},
		},
	)
	return err
}

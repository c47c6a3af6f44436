package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/victim-dao-api/models"
)

const walletName = "wallets"

// WalletDatabase contains the methods to use with the wallets collection
type WalletDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Wallet, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Wallet, error)
	InsertOne(ctx context.Context, wallet models.Wallet) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, id string, set bson.M) (bool, error)
	DeleteOne(ctx context.Context, id string) (bool, error)
}

type walletDatabase struct {
	db DatabaseHelper
}

// NewWalletDatabase initializes a new instance of wallet database with the provided db connection
func NewWalletDatabase(db DatabaseHelper) WalletDatabase {
	return &walletDatabase{
		db: db,
	}
}

func (w *walletDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Wallet, error) {
	wallet := &models.Wallet{}
	err := w.db.Collection(walletName).FindOne(ctx, filter).Decode(&wallet)
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

func (w *walletDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Wallet, error) {
	var wallets []models.Wallet
	cursor, err := w.db.Collection(walletName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&wallets)
	if err != nil {
		return nil, err
	}
	return wallets, nil
}

func (w *walletDatabase) InsertOne(ctx context.Context, wallet models.Wallet) (InsertOneResultHelper, error) {
	return w.db.Collection(walletName).InsertOne(ctx, wallet)
}

func (w *walletDatabase) UpdateOne(ctx context.Context, id string, set bson.M) (bool, error) {
	res, err := w.db.Collection(walletName).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (w *walletDatabase) DeleteOne(ctx context.Context, id string) (bool, error) {
	res, err := w.db.Collection(walletName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

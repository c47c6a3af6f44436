package testhelpers

import (
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/victim-dao-api/databases/mocks"
)

// MockDB is a DatabaseHelper mock that hands out one CollectionHelper mock per
// collection name
type MockDB struct {
	*mocks.DatabaseHelper
	colls map[string]*mocks.CollectionHelper
}

// NewMockDB returns an empty MockDB
func NewMockDB() *MockDB {
	return &MockDB{
		DatabaseHelper: &mocks.DatabaseHelper{},
		colls:          map[string]*mocks.CollectionHelper{},
	}
}

// Coll returns the mock behind the named collection, registering it on first use
func (m *MockDB) Coll(name string) *mocks.CollectionHelper {
	if c, ok := m.colls[name]; ok {
		return c
	}
	c := &mocks.CollectionHelper{}
	m.colls[name] = c
	m.DatabaseHelper.On("Collection", name).Return(c)
	return c
}

// Decoded returns a SingleResultHelper that fills a **T decode target with val
func Decoded[T any](val T) *mocks.SingleResultHelper {
	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**T)
		**arg = val
	})
	return sr
}

// DecodeErr returns a SingleResultHelper whose Decode fails with err
func DecodeErr(err error) *mocks.SingleResultHelper {
	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(err)
	return sr
}

// NotFound is DecodeErr with the driver's no documents error
func NotFound() *mocks.SingleResultHelper {
	return DecodeErr(mongo.ErrNoDocuments)
}

// Cursor returns a CursorHelper that fills a *[]T decode target with vals
func Cursor[T any](vals []T) *mocks.CursorHelper {
	cr := &mocks.CursorHelper{}
	cr.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]T)
		*arg = vals
	})
	return cr
}

// Inserted returns an InsertOneResultHelper reporting id
func Inserted(id interface{}) *mocks.InsertOneResultHelper {
	ir := &mocks.InsertOneResultHelper{}
	ir.On("Decode").Return(id)
	return ir
}

// Updated builds an UpdateResult
func Updated(matched, modified int64) *mongo.UpdateResult {
	return &mongo.UpdateResult{MatchedCount: matched, ModifiedCount: modified}
}

// Deleted builds a DeleteResult
func Deleted(n int64) *mongo.DeleteResult {
	return &mongo.DeleteResult{DeletedCount: n}
}

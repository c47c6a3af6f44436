package databases

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPaginate struct {
	limit int64
	page  int64
}

func newMongoPaginate(limit, page int) *mongoPaginate {
	return &mongoPaginate{
		limit: int64(limit),
		page:  int64(page),
	}
}

func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	l := mp.limit
	skip := mp.page*mp.limit - mp.limit
	fOpt := options.FindOptions{Limit: &l, Skip: &skip}

	return &fOpt
}

// MaxPage is the furthest page Page will skip to
const MaxPage = 1000000

// Page returns find options for a 1-based page of the given size. Pages below
// one are treated as the first page and pages past MaxPage as MaxPage.
func Page(limit, page int) *options.FindOptions {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	return newMongoPaginate(limit, page).getPaginatedOpts()
}

// Newest sorts by the given time field, most recent first
func Newest(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}

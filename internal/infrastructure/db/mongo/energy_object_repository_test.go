package mongo

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

func TestKeywordFilter(t *testing.T) {
	if f := keywordFilter(""); len(f) != 0 {
		t.Fatalf("expected empty filter, got %v", f)
	}

	f := keywordFilter("a.b(")
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("expected $or over three fields, got %v", f)
	}
	for i, field := range []string{"name", "location", "type"} {
		re, ok := or[i].(bson.M)[field].(primitive.Regex)
		if !ok {
			t.Fatalf("expected regex on %s, got %v", field, or[i])
		}
		if re.Pattern != `a\.b\(` || re.Options != "i" {
			t.Fatalf("expected escaped case-insensitive pattern, got %+v", re)
		}
	}
}

func TestSortSpec(t *testing.T) {
	cases := []struct {
		q    domain.ObjectQuery
		want bson.D
	}{
		{
			q:    domain.ObjectQuery{SortField: domain.SortByID, Direction: domain.SortDesc},
			want: bson.D{{Key: "_id", Value: -1}},
		},
		{
			q:    domain.ObjectQuery{SortField: domain.SortByPower, Direction: domain.SortDesc},
			want: bson.D{{Key: "power", Value: -1}, {Key: "_id", Value: 1}},
		},
		{
			q:    domain.ObjectQuery{SortField: domain.SortByName, Direction: domain.SortAsc},
			want: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			q:    domain.ObjectQuery{SortField: "bogus", Direction: domain.SortAsc},
			want: bson.D{{Key: "_id", Value: 1}},
		},
	}
	for _, tc := range cases {
		if got := sortSpec(tc.q); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s %s: expected %v, got %v", tc.q.SortField, tc.q.Direction, tc.want, got)
		}
	}
}

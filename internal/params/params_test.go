package params

import (
	"net/url"
	"testing"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantPage   int
		wantOffset int
	}{
		{"", DefaultLimit, 1, 0},
		{"limit=30&page=2", 30, 2, 30},
		{"limit=0&page=0", DefaultLimit, 1, 0},
		{"limit=500", MaxLimit, 1, 0},
		{"limit=abc&page=-3", DefaultLimit, 1, 0},
	}

	for _, tc := range cases {
		q, _ := url.ParseQuery(tc.query)
		p := ParsePagination(q)
		if p.Limit != tc.wantLimit || p.Page != tc.wantPage || p.Offset != tc.wantOffset {
			t.Errorf("%q: got limit=%d page=%d offset=%d", tc.query, p.Limit, p.Page, p.Offset)
		}
	}
}

func TestComputeMeta(t *testing.T) {
	p := Pagination{Limit: 10, Page: 2}
	p.ComputeMeta(25)
	if p.TotalPages != 3 || !p.HasNext || !p.HasPrev || p.Total != 25 {
		t.Fatalf("unexpected meta %+v", p)
	}

	p = Pagination{Limit: 10, Page: 1}
	p.ComputeMeta(0)
	if p.TotalPages != 0 || p.HasNext || p.HasPrev {
		t.Fatalf("unexpected meta for empty result %+v", p)
	}
}

package items

import (
	"strings"
	"testing"
)

func int64Ptr(v int64) *int64 { return &v }

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name         string
		filter       Filter
		wantClauses  []string
		wantArgCount int
	}{
		{
			name:         "no filter",
			filter:       Filter{},
			wantClauses:  nil,
			wantArgCount: 0,
		},
		{
			name:         "search only",
			filter:       Filter{Search: "lamp"},
			wantClauses:  []string{"i.name ILIKE $1"},
			wantArgCount: 1,
		},
		{
			name:         "categories only",
			filter:       Filter{Categories: []string{"books", "electronics"}},
			wantClauses:  []string{"i.category = ANY($1)"},
			wantArgCount: 1,
		},
		{
			name:         "price range",
			filter:       Filter{MinPrice: int64Ptr(10), MaxPrice: int64Ptr(500)},
			wantClauses:  []string{"i.price >= $1", "i.price <= $2"},
			wantArgCount: 2,
		},
		{
			name: "all filters",
			filter: Filter{
				Search:     "desk",
				Categories: []string{"furniture"},
				MinPrice:   int64Ptr(100),
				MaxPrice:   int64Ptr(1000),
			},
			wantClauses: []string{
				"i.name ILIKE $1",
				"i.category = ANY($2)",
				"i.price >= $3",
				"i.price <= $4",
			},
			wantArgCount: 4,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query, args := buildListQuery(tc.filter)

			if len(args) != tc.wantArgCount {
				t.Errorf("got %d args, want %d", len(args), tc.wantArgCount)
			}
			for _, clause := range tc.wantClauses {
				if !strings.Contains(query, clause) {
					t.Errorf("query missing clause %q:\n%s", clause, query)
				}
			}
			if len(tc.wantClauses) == 0 && strings.Contains(query, "WHERE") {
				t.Errorf("empty filter produced a WHERE clause:\n%s", query)
			}
			if !strings.Contains(query, "ORDER BY i.created_at DESC") {
				t.Errorf("query missing newest-first ordering:\n%s", query)
			}
		})
	}
}

func TestBuildListQuerySearchIsWildcarded(t *testing.T) {
	_, args := buildListQuery(Filter{Search: "lamp"})
	if len(args) != 1 {
		t.Fatalf("got %d args, want 1", len(args))
	}
	if args[0] != "%lamp%" {
		t.Errorf("search arg = %v, want %%lamp%%", args[0])
	}
}

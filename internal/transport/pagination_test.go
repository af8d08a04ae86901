package transport

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"defaults", "", 1, DefaultPageSize},
		{"explicit", "page=3&pageSize=50", 3, 50},
		{"page size clamped", "pageSize=1000", 1, MaxPageSize},
		{"non-positive values", "page=-4&pageSize=0", 1, DefaultPageSize},
		{"garbage", "page=abc&pageSize=x", 1, DefaultPageSize},
		{"huge page clamped", "page=922337203685477581&pageSize=20", MaxPage, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePagination(httptest.NewRequest("GET", "/api/expenses?"+tt.query, nil))
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
			assert.GreaterOrEqual(t, p.Offset(), 0)
		})
	}
}

func TestOffsetAtMaxPageDoesNotOverflow(t *testing.T) {
	p := Pagination{Page: MaxPage, PageSize: MaxPageSize}
	assert.Greater(t, p.Offset(), 0)
}

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2}, 41, Pagination{Page: 2, PageSize: 20})
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(41), page.Total)
	assert.Equal(t, 2, page.Page)
}

package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParseSortSpec(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []string
	}{
		{
			name: "empty spec falls back to newest first",
			spec: "",
			want: []string{"tasks.created_at DESC"},
		},
		{
			name: "single ascending field",
			spec: "priority",
			want: []string{"tasks.priority ASC"},
		},
		{
			name: "leading dash flips direction",
			spec: "-dueDate",
			want: []string{"tasks.due_date DESC"},
		},
		{
			name: "multiple fields keep order",
			spec: "-createdAt,title",
			want: []string{"tasks.created_at DESC", "tasks.title ASC"},
		},
		{
			name: "snake case aliases work",
			spec: "due_date",
			want: []string{"tasks.due_date ASC"},
		},
		{
			name: "unknown fields are dropped",
			spec: "priority,password_hash",
			want: []string{"tasks.priority ASC"},
		},
		{
			name: "only unknown fields falls back to default",
			spec: "password_hash;DROP TABLE tasks",
			want: []string{"tasks.created_at DESC"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSortSpec(tt.spec))
		})
	}
}

func TestParseFieldSelection(t *testing.T) {
	t.Run("empty selects everything", func(t *testing.T) {
		assert.Nil(t, ParseFieldSelection(""))
	})

	t.Run("unknown fields only selects everything", func(t *testing.T) {
		assert.Nil(t, ParseFieldSelection("nope,nada"))
	})

	t.Run("required columns are always included", func(t *testing.T) {
		columns := ParseFieldSelection("title,status")
		assert.ElementsMatch(t, []string{"title", "status", "id", "creator_id", "client_id"}, columns)
	})

	t.Run("camel case aliases map to columns", func(t *testing.T) {
		columns := ParseFieldSelection("dueDate")
		assert.ElementsMatch(t, []string{"due_date", "id", "creator_id", "client_id"}, columns)
	})
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", query: "", wantPage: 1, wantLimit: 10, wantOffset: 0},
		{name: "explicit values", query: "page=3&limit=25", wantPage: 3, wantLimit: 25, wantOffset: 50},
		{name: "zero page clamps to one", query: "page=0", wantPage: 1, wantLimit: 10, wantOffset: 0},
		{name: "oversized limit falls back", query: "limit=1000", wantPage: 1, wantLimit: 10, wantOffset: 0},
		{name: "garbage falls back", query: "page=x&limit=y", wantPage: 1, wantLimit: 10, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/api/tasks?"+tt.query, nil)

			params := GetPaginationParams(c)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantOffset, params.Offset)
		})
	}
}

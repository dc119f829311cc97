package helper

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, query string) Paging {
	t.Helper()
	var got Paging
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = ResolvePaging(c, 20, 100)
		return nil
	})
	_, err := app.Test(httptest.NewRequest("GET", "/"+query, nil))
	require.NoError(t, err)
	return got
}

func TestResolvePaging(t *testing.T) {
	assert.Equal(t, Paging{Page: 1, PerPage: 20, Offset: 0, Limit: 20}, resolve(t, ""))
	assert.Equal(t, Paging{Page: 3, PerPage: 10, Offset: 20, Limit: 10}, resolve(t, "?page=3&per_page=10"))
	assert.Equal(t, Paging{Page: 2, PerPage: 5, Offset: 5, Limit: 5}, resolve(t, "?page=2&limit=5"))
	assert.Equal(t, 100, resolve(t, "?per_page=1000").PerPage)
	assert.Equal(t, 1, resolve(t, "?page=-4").Page)
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(41, Paging{Page: 2, PerPage: 20}, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := BuildPagination(0, Paging{Page: 1, PerPage: 20}, 0)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

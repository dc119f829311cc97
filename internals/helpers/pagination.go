package helper

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
	Count      int   `json:"count"`
}

// Paging is the resolved window. Limit always equals PerPage.
type Paging struct {
	Page    int
	PerPage int
	Offset  int
	Limit   int
}

func queryInt(c *fiber.Ctx, keys ...string) int {
	for _, k := range keys {
		if n, err := strconv.Atoi(c.Query(k)); err == nil {
			return n
		}
	}
	return 0
}

// ResolvePaging reads ?page and ?per_page (or ?limit), clamped to [1, max].
func ResolvePaging(c *fiber.Ctx, defaultPerPage, maxPerPage int) Paging {
	page := max(queryInt(c, "page"), 1)
	per := queryInt(c, "per_page", "limit")
	if per <= 0 {
		per = defaultPerPage
	}
	if maxPerPage > 0 {
		per = min(per, maxPerPage)
	}
	return Paging{Page: page, PerPage: per, Offset: (page - 1) * per, Limit: per}
}

func BuildPagination(total int64, p Paging, count int) Pagination {
	per := p.PerPage
	if per <= 0 {
		per = 20
	}
	page := max(p.Page, 1)
	pages := max(int((total+int64(per)-1)/int64(per)), 1)
	return Pagination{
		Page:       page,
		PerPage:    per,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
		HasPrev:    page > 1,
		Count:      count,
	}
}

package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"storefront-service/internal/store"

	"github.com/gin-gonic/gin"
)

// Page is the envelope of every list response.
type Page struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

type pageRequest struct {
	number int
	size   int
}

func (p pageRequest) offset() int {
	return (p.number - 1) * p.size
}

// listQuery reads search, ordering, page and page_size. A page that is not a
// positive integer is rejected, as is one whose offset cannot be addressed;
// a bad page_size falls back to the default.
func (h *Handler) listQuery(c *gin.Context) (store.ListQuery, pageRequest, error) {
	pr := pageRequest{number: 1, size: h.defaultPageSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return store.ListQuery{}, pr, fmt.Errorf("page must be a positive integer, got %q", raw)
		}
		pr.number = n
	}

	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pr.size = n
		}
	}
	if pr.size > h.maxPageSize {
		pr.size = h.maxPageSize
	}
	if pr.number-1 > math.MaxInt32/pr.size {
		return store.ListQuery{}, pr, errInvalidPage
	}

	q := store.ListQuery{
		Search: c.Query("search"),
		Limit:  pr.size,
		Offset: pr.offset(),
	}
	if raw := c.Query("ordering"); raw != "" {
		q.Ordering = strings.Split(raw, ",")
	}
	return q, pr, nil
}

// paginate wraps results into a Page. A page beyond the last one is
// errInvalidPage; the first page of an empty result is fine.
func paginate(c *gin.Context, pr pageRequest, count int, results interface{}) (*Page, error) {
	lastPage := 1
	if count > 0 {
		lastPage = (count + pr.size - 1) / pr.size
	}
	if pr.number > lastPage {
		return nil, errInvalidPage
	}

	page := &Page{Count: count, Results: results}
	if pr.number < lastPage {
		next := pageURL(c, pr.number+1)
		page.Next = &next
	}
	if pr.number > 1 {
		prev := pageURL(c, pr.number-1)
		page.Previous = &prev
	}
	return page, nil
}

// pageURL rebuilds the request URL pointing at page n. Page 1 drops the
// parameter entirely.
func pageURL(c *gin.Context, n int) string {
	u := url.URL{
		Scheme: requestScheme(c),
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}

	values := c.Request.URL.Query()
	if n <= 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = values.Encode()
	return u.String()
}

func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

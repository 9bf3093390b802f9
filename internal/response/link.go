package response

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// SetLinkHeader emits RFC 8288 prev/next pagination links for a list
// endpoint, preserving the request's other query parameters.
func SetLinkHeader(c *gin.Context, page, limit int, hasNext bool) {
	var links []string
	if page > 1 {
		links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, pageURL(c, page-1, limit)))
	}
	if hasNext {
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, pageURL(c, page+1, limit)))
	}
	if len(links) > 0 {
		c.Header("Link", strings.Join(links, ", "))
	}
}

func pageURL(c *gin.Context, page, limit int) string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String()
}

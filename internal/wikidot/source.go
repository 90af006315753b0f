package wikidot

import (
	"context"
	"net/http"

	"github.com/olgasafonova/wikidot-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
	"github.com/olgasafonova/wikidot-mcp-server/internal/token"
)

// FetchPageSource downloads a page's HTML. page is either a name resolved
// against the site root or an absolute URL. With norender the wiki returns
// the page chrome without rendering its content.
func (c *Client) FetchPageSource(ctx context.Context, page string, norender bool) (string, error) {
	if page == "" {
		return "", apierrors.NewValidationError("page", "", "page is required")
	}
	u := pageURL(c.cfg.BaseURL, page, norender)

	return call(ctx, c, "source", u, func(ctx context.Context) (string, error) {
		resp, err := c.Do(ctx, base.Request{
			Operation: "source",
			Method:    http.MethodGet,
			URL:       u,
			Header:    c.headers(token.Generate()),
		})
		if err != nil {
			return "", err
		}
		return string(resp.Body), nil
	})
}

package wikidot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/olgasafonova/wikidot-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
	"github.com/olgasafonova/wikidot-mcp-server/metrics"
)

// throttleMessage is how the mirror says it is being hit too often
const throttleMessage = "You're making requests too often!"

// Queries against the mirror, all keyed by canonical page URL.
const (
	pageIDQuery = `query pageIdQuery($url: URL!) {
  page(url: $url) {
    url
    wikidotInfo {
      wikidotId
    }
  }
}`

	tagsQuery = `query tagQuery($url: URL!) {
  page(url: $url) {
    url
    wikidotInfo {
      tags
    }
  }
}`

	existsQuery = `query urlQuery($url: URL!) {
  page(url: $url) {
    url
    wikidotInfo {
      title
    }
  }
}`
)

// GraphQLCall posts a query to the mirror and returns its data member. An
// error list fails the attempt with the first message. A throttling reply
// additionally sleeps ThrottleDelay before the failure reaches the retry
// engine, so the next attempt waits for both.
func (c *Client) GraphQLCall(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apierrors.NewValidationError("query", "", "query is required")
	}
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, apierrors.Permanent(fmt.Errorf("failed to encode graphql request: %w", err))
	}

	target, _ := variables["url"].(string)
	return call(ctx, c, "graphql", target, func(ctx context.Context) (json.RawMessage, error) {
		resp, err := c.Do(ctx, base.Request{
			Operation: "graphql",
			Method:    http.MethodPost,
			URL:       c.cfg.GraphQLURL,
			Header:    http.Header{"Content-Type": {jsonContentType}},
			Body:      body,
		})
		if err != nil {
			return nil, err
		}

		var out graphQLResponse
		if err := json.Unmarshal(resp.Body, &out); err != nil {
			return nil, decodeError("graphql", err)
		}
		if len(out.Errors) > 0 {
			return nil, c.remoteError(ctx, out.Errors[0].Message)
		}
		return out.Data, nil
	})
}

func (c *Client) remoteError(ctx context.Context, message string) error {
	rerr := &apierrors.RemoteError{
		Message:   message,
		Throttled: strings.Contains(message, throttleMessage),
	}
	if !rerr.Throttled {
		metrics.UpstreamErrors.WithLabelValues("graphql", "remote").Inc()
		return rerr
	}

	metrics.UpstreamErrors.WithLabelValues("graphql", "throttled").Inc()
	metrics.ThrottleWaits.Inc()
	c.Logger.Warn("graphql mirror is throttling, backing off", "delay", c.cfg.ThrottleDelay)
	if err := c.sleep(ctx, c.cfg.ThrottleDelay); err != nil {
		return apierrors.Permanent(fmt.Errorf("throttle wait aborted: %w", errors.Join(err, rerr)))
	}
	return rerr
}

// queryPage runs a page(url) query for site/page and decodes the result
func (c *Client) queryPage(ctx context.Context, query, site, page string) (*pageQueryData, error) {
	data, err := c.GraphQLCall(ctx, query, map[string]any{"url": canonicalURL(site, page)})
	if err != nil {
		return nil, err
	}
	var out pageQueryData
	if len(data) == 0 || string(data) == "null" {
		return &out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &apierrors.DecodeError{Operation: "graphql", Err: err}
	}
	return &out, nil
}

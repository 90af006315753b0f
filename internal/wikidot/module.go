package wikidot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/olgasafonova/wikidot-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
	"github.com/olgasafonova/wikidot-mcp-server/internal/token"
	"github.com/olgasafonova/wikidot-mcp-server/metrics"
)

// ModuleCall posts a form to ajax-module-connector.php and decodes the
// envelope. A status other than "ok" is not treated as a failure here;
// callers inspect ModuleResponse.Status.
func (c *Client) ModuleCall(ctx context.Context, moduleName string, params url.Values) (*ModuleResponse, error) {
	if moduleName == "" {
		return nil, apierrors.NewValidationError("module", "", "module name is required")
	}

	return call(ctx, c, "module", moduleName, func(ctx context.Context) (*ModuleResponse, error) {
		tok := token.Generate()
		resp, err := c.Do(ctx, base.Request{
			Operation: "module",
			Method:    http.MethodPost,
			URL:       c.cfg.BaseURL + ajaxPath,
			Header:    c.headers(tok),
			Body:      []byte(moduleForm(moduleName, tok, params).Encode()),
		})
		if err != nil {
			return nil, err
		}

		var out ModuleResponse
		if err := json.Unmarshal(resp.Body, &out); err != nil {
			return nil, decodeError("module", err)
		}
		return &out, nil
	})
}

// QuickModuleCall queries quickmodule.php.
//
// Deprecated: quickmodule.php answers 500 most of the time. Prefer the
// GraphQL-backed lookups such as PageExists.
func (c *Client) QuickModuleCall(ctx context.Context, module string, params url.Values) (*QuickModuleResponse, error) {
	if module == "" {
		return nil, apierrors.NewValidationError("module", "", "module name is required")
	}
	c.Logger.Warn("quickmodule.php is unreliable upstream, prefer GraphQL lookups", "module", module)

	return call(ctx, c, "quickmodule", module, func(ctx context.Context) (*QuickModuleResponse, error) {
		resp, err := c.Do(ctx, base.Request{
			Operation: "quickmodule",
			Method:    http.MethodGet,
			URL:       c.cfg.BaseURL + quickModulePath + "?" + quickModuleQuery(module, params).Encode(),
			Header:    c.headers(token.Generate()),
		})
		if err != nil {
			return nil, err
		}

		var out QuickModuleResponse
		if err := json.Unmarshal(resp.Body, &out); err != nil {
			return nil, decodeError("quickmodule", err)
		}
		return &out, nil
	})
}

func decodeError(operation string, err error) error {
	metrics.UpstreamErrors.WithLabelValues(operation, "decode").Inc()
	return &apierrors.DecodeError{Operation: operation, Err: err}
}

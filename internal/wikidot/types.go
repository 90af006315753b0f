package wikidot

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ModuleResponse is the JSON envelope returned by ajax-module-connector.php
type ModuleResponse struct {
	Status           string        `json:"status"`
	CurrentTimestamp int64         `json:"CURRENT_TIMESTAMP"`
	Body             string        `json:"body"`
	JSInclude        []string      `json:"jsInclude"`
	CSSInclude       []string      `json:"cssInclude"`
	CallbackIndex    CallbackIndex `json:"callbackIndex"`
	Message          string        `json:"message,omitempty"` // set when Status is not "ok"
}

// OK reports whether the module connector accepted the call
func (r *ModuleResponse) OK() bool {
	return r.Status == "ok"
}

// CallbackIndex is echoed back as either a JSON number or a string
type CallbackIndex string

// UnmarshalJSON accepts both 0 and "0"
func (ci *CallbackIndex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*ci = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*ci = CallbackIndex(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*ci = CallbackIndex(n.String())
	return nil
}

// Int returns the index as an integer, 0 when unset or malformed
func (ci CallbackIndex) Int() int {
	n, _ := strconv.Atoi(string(ci))
	return n
}

// QuickModuleResponse is returned by quickmodule.php
type QuickModuleResponse struct {
	Pages []QuickModulePage `json:"pages"`
}

// QuickModulePage is one page in a quick-module lookup
type QuickModulePage struct {
	UnixName string `json:"unix_name"`
	Title    string `json:"title"`
}

// graphQLRequest is the POST body sent to the mirror
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphQLResponse is the mirror's envelope
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// pageQueryData is the shape shared by every page(url) query
type pageQueryData struct {
	Page *struct {
		URL         string       `json:"url"`
		WikidotInfo *wikidotInfo `json:"wikidotInfo"`
	} `json:"page"`
}

// info returns the wikidotInfo block, nil when the mirror does not know the page
func (d *pageQueryData) info() *wikidotInfo {
	if d.Page == nil {
		return nil
	}
	return d.Page.WikidotInfo
}

type wikidotInfo struct {
	WikidotID *int     `json:"wikidotId"`
	Title     *string  `json:"title"`
	Tags      []string `json:"tags"`
}

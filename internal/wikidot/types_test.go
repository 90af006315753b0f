package wikidot

import (
	"encoding/json"
	"testing"
)

func TestCallbackIndex_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  CallbackIndex
		n     int
	}{
		{`{"callbackIndex":0}`, "0", 0},
		{`{"callbackIndex":"3"}`, "3", 3},
		{`{"callbackIndex":null}`, "", 0},
		{`{}`, "", 0},
	}

	for _, tt := range tests {
		var resp ModuleResponse
		if err := json.Unmarshal([]byte(tt.input), &resp); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", tt.input, err)
		}
		if resp.CallbackIndex != tt.want {
			t.Errorf("Unmarshal(%s) callbackIndex = %q, want %q", tt.input, resp.CallbackIndex, tt.want)
		}
		if resp.CallbackIndex.Int() != tt.n {
			t.Errorf("Int() = %d, want %d", resp.CallbackIndex.Int(), tt.n)
		}
	}
}

func TestCallbackIndex_RejectsObjects(t *testing.T) {
	var resp ModuleResponse
	if err := json.Unmarshal([]byte(`{"callbackIndex":{}}`), &resp); err == nil {
		t.Error("expected error for object callbackIndex")
	}
}

func TestPageQueryData_Info(t *testing.T) {
	var empty pageQueryData
	if empty.info() != nil {
		t.Error("nil page should have no info")
	}

	var data pageQueryData
	if err := json.Unmarshal([]byte(`{"page":{"url":"u","wikidotInfo":{"wikidotId":3,"title":"T","tags":["a"]}}}`), &data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	info := data.info()
	if info == nil || *info.WikidotID != 3 || *info.Title != "T" || len(info.Tags) != 1 {
		t.Errorf("unexpected info: %+v", info)
	}
}

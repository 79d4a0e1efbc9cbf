package cache

import (
	"encoding/json"
	"testing"
)

func TestUnwrapBareResource(t *testing.T) {
	raw := []byte(`{"id":"v1","title":"morning run"}`)

	inner, rewrap, err := Unwrap(raw)
	if err != nil {
		t.Fatalf("Unwrap failed: %v", err)
	}
	if string(inner) != string(raw) {
		t.Errorf("expected bare resource back, got %s", inner)
	}

	out, err := rewrap([]byte(`{"id":"v1","title":"evening run"}`))
	if err != nil {
		t.Fatalf("rewrap failed: %v", err)
	}
	if string(out) != `{"id":"v1","title":"evening run"}` {
		t.Errorf("bare rewrap should be identity, got %s", out)
	}
}

func TestUnwrapEnveloped(t *testing.T) {
	raw := []byte(`{"success":true,"data":{"id":"v1","likes":3},"meta":{"ts":9}}`)

	inner, rewrap, err := Unwrap(raw)
	if err != nil {
		t.Fatalf("Unwrap failed: %v", err)
	}

	var v struct {
		ID    string `json:"id"`
		Likes int    `json:"likes"`
	}
	if err := json.Unmarshal(inner, &v); err != nil {
		t.Fatalf("failed to decode inner payload: %v", err)
	}
	if v.Likes != 3 {
		t.Errorf("expected likes 3, got %d", v.Likes)
	}

	out, err := rewrap([]byte(`{"id":"v1","likes":4}`))
	if err != nil {
		t.Fatalf("rewrap failed: %v", err)
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(out, &outer); err != nil {
		t.Fatalf("rewrapped entry is not valid JSON: %v", err)
	}
	if _, ok := outer["success"]; !ok {
		t.Error("rewrap dropped the success field")
	}
	if _, ok := outer["meta"]; !ok {
		t.Error("rewrap dropped sibling envelope fields")
	}
	if string(outer["data"]) != `{"id":"v1","likes":4}` {
		t.Errorf("unexpected data payload: %s", outer["data"])
	}
}

func TestUnwrapDoublyNested(t *testing.T) {
	raw := []byte(`{"success":true,"data":{"data":{"id":"v1","likes":1},"page":2}}`)

	inner, rewrap, err := Unwrap(raw)
	if err != nil {
		t.Fatalf("Unwrap failed: %v", err)
	}
	if string(inner) != `{"id":"v1","likes":1}` {
		t.Errorf("expected innermost payload, got %s", inner)
	}

	out, err := rewrap([]byte(`{"id":"v1","likes":2}`))
	if err != nil {
		t.Fatalf("rewrap failed: %v", err)
	}

	var outer struct {
		Success bool `json:"success"`
		Data    struct {
			Data struct {
				Likes int `json:"likes"`
			} `json:"data"`
			Page int `json:"page"`
		} `json:"data"`
	}
	if err := json.Unmarshal(out, &outer); err != nil {
		t.Fatalf("rewrapped entry is not valid JSON: %v", err)
	}
	if outer.Data.Data.Likes != 2 {
		t.Errorf("expected likes 2 after rewrap, got %d", outer.Data.Data.Likes)
	}
	if outer.Data.Page != 2 {
		t.Errorf("rewrap dropped the intermediate page field, got %d", outer.Data.Page)
	}
}

func TestUnwrapInnerObjectWithID(t *testing.T) {
	// An inner object that carries its own id is the resource itself even
	// if it happens to have a "data" field.
	raw := []byte(`{"success":true,"data":{"id":"v1","data":"payload"}}`)

	inner, _, err := Unwrap(raw)
	if err != nil {
		t.Fatalf("Unwrap failed: %v", err)
	}

	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(inner, &v); err != nil {
		t.Fatalf("failed to decode inner payload: %v", err)
	}
	if v.ID != "v1" {
		t.Errorf("expected the singly-nested resource, got %s", inner)
	}
}

func TestUnwrapArray(t *testing.T) {
	raw := []byte(`[{"id":"v1"},{"id":"v2"}]`)

	inner, _, err := Unwrap(raw)
	if err != nil {
		t.Fatalf("Unwrap failed: %v", err)
	}
	if string(inner) != string(raw) {
		t.Errorf("arrays should unwrap to themselves, got %s", inner)
	}
}

func TestUnwrapRejectsGarbage(t *testing.T) {
	if _, _, err := Unwrap([]byte("")); err == nil {
		t.Error("expected error for empty entry")
	}
	if _, _, err := Unwrap([]byte(`{"broken`)); err == nil {
		t.Error("expected error for malformed JSON object")
	}
}

func TestDecodeResource(t *testing.T) {
	type vlog struct {
		ID    string `json:"id"`
		Likes int    `json:"likes"`
	}

	v, err := DecodeResource[vlog]([]byte(`{"success":true,"data":{"id":"v1","likes":7}}`))
	if err != nil {
		t.Fatalf("DecodeResource failed: %v", err)
	}
	if v.ID != "v1" || v.Likes != 7 {
		t.Errorf("unexpected resource: %+v", v)
	}
}

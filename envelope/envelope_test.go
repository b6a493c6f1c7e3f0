package envelope

import (
	"encoding/json"
	"errors"
	"testing"
)

func makeEvent(t *testing.T, message interface{}) []byte {
	t.Helper()

	raw, err := json.Marshal(message)
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}
	event, err := json.Marshal(map[string]interface{}{
		"Records": []map[string]interface{}{
			{"Sns": map[string]interface{}{"Message": string(raw)}},
		},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return event
}

func TestParseValidEnvelope(t *testing.T) {
	event := makeEvent(t, map[string]interface{}{
		"token": "tok-123",
		"data": map[string]interface{}{
			"options": []map[string]interface{}{
				{"value": "现在几点了？"},
			},
		},
	})

	req, err := Parse(event)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if req.Token != "tok-123" {
		t.Fatalf("unexpected token %q", req.Token)
	}
	if req.Prompt != "现在几点了？" {
		t.Fatalf("unexpected prompt %q", req.Prompt)
	}
}

func TestParseMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		event   []byte
		wantErr error
	}{
		{
			name:    "no records",
			event:   []byte(`{"Records": []}`),
			wantErr: ErrNoMessage,
		},
		{
			name:    "message not json",
			event:   []byte(`{"Records":[{"Sns":{"Message":"not-json{"}}]}`),
			wantErr: ErrInvalidJSON,
		},
		{
			name: "missing token",
			event: makeEvent(t, map[string]interface{}{
				"data": map[string]interface{}{
					"options": []map[string]interface{}{{"value": "hi"}},
				},
			}),
			wantErr: ErrMissingToken,
		},
		{
			name: "no options",
			event: makeEvent(t, map[string]interface{}{
				"token": "tok",
				"data":  map[string]interface{}{"options": []interface{}{}},
			}),
			wantErr: ErrNoOptions,
		},
		{
			name: "missing prompt value",
			event: makeEvent(t, map[string]interface{}{
				"token": "tok",
				"data": map[string]interface{}{
					"options": []map[string]interface{}{{"name": "question"}},
				},
			}),
			wantErr: ErrMissingPrompt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.event)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseKeepsTokenOnMissingPrompt(t *testing.T) {
	event := makeEvent(t, map[string]interface{}{
		"token": "tok-456",
		"data":  map[string]interface{}{"options": []interface{}{}},
	})

	req, err := Parse(event)
	if !errors.Is(err, ErrNoOptions) {
		t.Fatalf("expected ErrNoOptions, got %v", err)
	}
	if req == nil || req.Token != "tok-456" {
		t.Fatalf("expected partial request with token, got %+v", req)
	}
}

func TestParseInvalidEventJSON(t *testing.T) {
	if _, err := Parse([]byte("{{{")); !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("expected invalid JSON error, got %v", err)
	}
}

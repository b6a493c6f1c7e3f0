package tools

import (
	"context"
	"encoding/json"
	"testing"
)

func TestGenerateHashSHA256(t *testing.T) {
	tool := NewHashTool()

	got, err := tool.Execute(context.Background(), map[string]interface{}{"text": "hello"})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	var result struct {
		Algorithm      string `json:"algorithm"`
		Hash           string `json:"hash"`
		OriginalLength int    `json:"original_length"`
	}
	if err := json.Unmarshal([]byte(got), &result); err != nil {
		t.Fatalf("invalid result JSON: %v", err)
	}

	if result.Algorithm != "sha256" {
		t.Fatalf("expected default sha256, got %s", result.Algorithm)
	}
	if result.Hash != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("wrong sha256 for hello: %s", result.Hash)
	}
	if result.OriginalLength != 5 {
		t.Fatalf("wrong original length: %d", result.OriginalLength)
	}
}

func TestGenerateHashRejectsUnknownAlgorithm(t *testing.T) {
	tool := NewHashTool()

	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"text":      "hello",
		"algorithm": "crc32",
	})
	if err == nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
}

func TestJSONFormatter(t *testing.T) {
	tool := NewJSONFormatterTool()

	got, err := tool.Execute(context.Background(), map[string]interface{}{
		"json_string": `{"b":1,"a":{"y":2,"x":3}}`,
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := "{\n  \"a\": {\n    \"x\": 3,\n    \"y\": 2\n  },\n  \"b\": 1\n}"
	if got != want {
		t.Fatalf("unexpected formatting:\ngot:  %q\nwant: %q", got, want)
	}

	if _, err := tool.Execute(context.Background(), map[string]interface{}{"json_string": "{bad"}); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestTextAnalyzer(t *testing.T) {
	tool := NewTextAnalyzerTool()

	got, err := tool.Execute(context.Background(), map[string]interface{}{
		"text": "Hello World 123\nこんにちは カタカナ 漢字",
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	var stats textStats
	if err := json.Unmarshal([]byte(got), &stats); err != nil {
		t.Fatalf("invalid result JSON: %v", err)
	}

	if stats.LineCount != 2 {
		t.Fatalf("expected 2 lines, got %d", stats.LineCount)
	}
	if stats.WordCount != 6 {
		t.Fatalf("expected 6 words, got %d", stats.WordCount)
	}
	if stats.Uppercase != 2 || stats.Digits != 3 {
		t.Fatalf("unexpected class counts: %+v", stats)
	}
	if stats.Hiragana != 5 {
		t.Fatalf("expected 5 hiragana, got %d", stats.Hiragana)
	}
	if stats.Katakana != 4 {
		t.Fatalf("expected 4 katakana, got %d", stats.Katakana)
	}
	if stats.Kanji != 2 {
		t.Fatalf("expected 2 kanji, got %d", stats.Kanji)
	}
}

func TestRegistryExecuteValidatesRequired(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(NewHashTool()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := registry.Execute(context.Background(), "generate_hash", map[string]interface{}{}); err == nil {
		t.Fatalf("expected validation error for missing text")
	}

	if _, err := registry.Execute(context.Background(), "nope", map[string]interface{}{}); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(NewHashTool()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := registry.Register(NewHashTool()); err == nil {
		t.Fatalf("expected error registering duplicate tool")
	}
	if registry.Count() != 1 {
		t.Fatalf("expected one tool, got %d", registry.Count())
	}
}

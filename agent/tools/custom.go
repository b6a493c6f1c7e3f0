package tools

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"strings"
	"unicode"
)

// NewHashTool 创建哈希生成工具
func NewHashTool() Tool {
	return NewBaseTool(
		"generate_hash",
		"生成文本的哈希值，支持 md5、sha1、sha256、sha512",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "要哈希的文本",
				},
				"algorithm": map[string]interface{}{
					"type":        "string",
					"description": "哈希算法，默认 sha256",
					"enum":        []interface{}{"md5", "sha1", "sha256", "sha512"},
				},
			},
			"required": []interface{}{"text"},
		},
		func(ctx context.Context, params map[string]interface{}) (string, error) {
			text, ok := params["text"].(string)
			if !ok {
				return "", fmt.Errorf("text parameter is required")
			}
			algorithm := stringParam(params, "algorithm", "sha256")

			var h hash.Hash
			switch algorithm {
			case "md5":
				h = md5.New()
			case "sha1":
				h = sha1.New()
			case "sha256":
				h = sha256.New()
			case "sha512":
				h = sha512.New()
			default:
				return "", fmt.Errorf("unsupported algorithm: %s", algorithm)
			}

			h.Write([]byte(text))
			result := map[string]interface{}{
				"algorithm":       algorithm,
				"hash":            hex.EncodeToString(h.Sum(nil)),
				"original_length": len(text),
			}

			data, err := json.Marshal(result)
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
	)
}

// NewJSONFormatterTool 创建 JSON 整形工具
func NewJSONFormatterTool() Tool {
	return NewBaseTool(
		"json_formatter",
		"整形 JSON 字符串，按键排序并缩进输出",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"json_string": map[string]interface{}{
					"type":        "string",
					"description": "要整形的 JSON 字符串",
				},
				"indent": map[string]interface{}{
					"type":        "integer",
					"description": "缩进空格数，默认 2",
				},
			},
			"required": []interface{}{"json_string"},
		},
		func(ctx context.Context, params map[string]interface{}) (string, error) {
			raw, ok := params["json_string"].(string)
			if !ok {
				return "", fmt.Errorf("json_string parameter is required")
			}
			indent := intParam(params, "indent", 2)
			if indent < 0 || indent > 8 {
				indent = 2
			}

			var data interface{}
			if err := json.Unmarshal([]byte(raw), &data); err != nil {
				return "", fmt.Errorf("invalid JSON: %w", err)
			}

			// encoding/json 对 map 键排序输出
			formatted, err := json.MarshalIndent(data, "", strings.Repeat(" ", indent))
			if err != nil {
				return "", err
			}
			return string(formatted), nil
		},
	)
}

// NewTextAnalyzerTool 创建文本分析工具
func NewTextAnalyzerTool() Tool {
	return NewBaseTool(
		"text_analyzer",
		"统计文本的字符数、单词数、行数和字符类别分布",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "要分析的文本",
				},
			},
			"required": []interface{}{"text"},
		},
		func(ctx context.Context, params map[string]interface{}) (string, error) {
			text, ok := params["text"].(string)
			if !ok {
				return "", fmt.Errorf("text parameter is required")
			}

			data, err := json.Marshal(analyzeText(text))
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
	)
}

// textStats 文本统计结果
type textStats struct {
	CharCount     int     `json:"char_count"`
	WordCount     int     `json:"word_count"`
	LineCount     int     `json:"line_count"`
	Uppercase     int     `json:"uppercase"`
	Lowercase     int     `json:"lowercase"`
	Digits        int     `json:"digits"`
	Spaces        int     `json:"spaces"`
	Hiragana      int     `json:"hiragana"`
	Katakana      int     `json:"katakana"`
	Kanji         int     `json:"kanji"`
	AvgWordLength float64 `json:"avg_word_length"`
}

func analyzeText(text string) textStats {
	stats := textStats{}

	runes := []rune(text)
	stats.CharCount = len(runes)
	if text != "" {
		stats.LineCount = strings.Count(text, "\n") + 1
	}
	stats.WordCount = len(strings.Fields(text))

	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			stats.Uppercase++
		case unicode.IsLower(r):
			stats.Lowercase++
		case unicode.IsDigit(r):
			stats.Digits++
		case unicode.IsSpace(r):
			stats.Spaces++
		}

		switch {
		case r >= 0x3040 && r <= 0x309F:
			stats.Hiragana++
		case r >= 0x30A0 && r <= 0x30FF:
			stats.Katakana++
		case r >= 0x4E00 && r <= 0x9FFF:
			stats.Kanji++
		}
	}

	if stats.WordCount > 0 {
		stats.AvgWordLength = float64(stats.CharCount) / float64(stats.WordCount)
	}

	return stats
}

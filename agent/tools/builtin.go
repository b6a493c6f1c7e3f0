package tools

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const maxHTTPResponseSize = 64 * 1024

// NewCalculatorTool 创建计算器工具
// 支持 + - * / % ^ 和括号的四则运算表达式。
func NewCalculatorTool() Tool {
	return NewBaseTool(
		"calculator",
		"计算数学表达式，支持加减乘除、取模、幂运算和括号，例如 (25 * 4) + 2^10",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"expression": map[string]interface{}{
					"type":        "string",
					"description": "要计算的数学表达式",
				},
			},
			"required": []interface{}{"expression"},
		},
		func(ctx context.Context, params map[string]interface{}) (string, error) {
			expr, ok := params["expression"].(string)
			if !ok || strings.TrimSpace(expr) == "" {
				return "", fmt.Errorf("expression parameter is required")
			}

			result, err := evalExpression(expr)
			if err != nil {
				return "", fmt.Errorf("failed to evaluate %q: %w", expr, err)
			}

			// 整数结果不带小数点输出
			if result == math.Trunc(result) && math.Abs(result) < 1e15 {
				return strconv.FormatInt(int64(result), 10), nil
			}
			return strconv.FormatFloat(result, 'g', -1, 64), nil
		},
	)
}

// NewCurrentTimeTool 创建当前时间工具
func NewCurrentTimeTool() Tool {
	return NewBaseTool(
		"current_time",
		"获取当前日期和时间，可指定 IANA 时区名称，默认 UTC",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"timezone": map[string]interface{}{
					"type":        "string",
					"description": "IANA 时区名称，例如 Asia/Tokyo",
				},
			},
		},
		func(ctx context.Context, params map[string]interface{}) (string, error) {
			loc := time.UTC
			if tz := stringParam(params, "timezone", ""); tz != "" {
				parsed, err := time.LoadLocation(tz)
				if err != nil {
					return "", fmt.Errorf("unknown timezone %q: %w", tz, err)
				}
				loc = parsed
			}
			return time.Now().In(loc).Format(time.RFC3339), nil
		},
	)
}

// NewHTTPRequestTool 创建 HTTP 请求工具
func NewHTTPRequestTool(timeout time.Duration) Tool {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	return NewBaseTool(
		"http_request",
		"发送 HTTP 请求并返回响应正文，支持 GET 和 POST",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "请求地址，必须是 http 或 https",
				},
				"method": map[string]interface{}{
					"type":        "string",
					"description": "请求方法，默认 GET",
				},
				"body": map[string]interface{}{
					"type":        "string",
					"description": "POST 请求的正文",
				},
			},
			"required": []interface{}{"url"},
		},
		func(ctx context.Context, params map[string]interface{}) (string, error) {
			url, ok := params["url"].(string)
			if !ok || url == "" {
				return "", fmt.Errorf("url parameter is required")
			}
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				return "", fmt.Errorf("only http and https URLs are allowed")
			}

			method := strings.ToUpper(stringParam(params, "method", http.MethodGet))
			if method != http.MethodGet && method != http.MethodPost {
				return "", fmt.Errorf("unsupported method %q", method)
			}

			var bodyReader io.Reader
			if body := stringParam(params, "body", ""); body != "" {
				bodyReader = strings.NewReader(body)
			}

			req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
			if err != nil {
				return "", fmt.Errorf("failed to create request: %w", err)
			}

			resp, err := client.Do(req)
			if err != nil {
				return "", fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(io.LimitReader(resp.Body, maxHTTPResponseSize))
			if err != nil {
				return "", fmt.Errorf("failed to read response: %w", err)
			}

			return fmt.Sprintf("HTTP %d\n%s", resp.StatusCode, string(data)), nil
		},
	)
}

// evalExpression 递归下降解析并求值
func evalExpression(input string) (float64, error) {
	p := &exprParser{input: []rune(input)}
	result, err := p.parseAddSub()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return result, nil
}

type exprParser struct {
	input []rune
	pos   int
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}

func (p *exprParser) peek() rune {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) parseAddSub() (float64, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseMulDiv()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseMulDiv()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseMulDiv() (float64, error) {
	left, err := p.parsePower()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case '%':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	if p.peek() == '^' {
		p.pos++
		// 幂运算右结合
		exp, err := p.parsePower()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *exprParser) parseUnary() (float64, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	case '+':
		p.pos++
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	if p.input[p.pos] == '(' {
		p.pos++
		v, err := p.parseAddSub()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.input) && (unicode.IsDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("expected number at position %d", p.pos)
	}

	v, err := strconv.ParseFloat(string(p.input[start:p.pos]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", string(p.input[start:p.pos]))
	}
	return v, nil
}

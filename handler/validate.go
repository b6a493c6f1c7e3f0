package handler

import (
	"fmt"
	"regexp"
	"strings"
)

// 禁止出现在 prompt 中的注入载荷
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script[\s>]`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:text/html`),
}

// ValidatePrompt 校验用户 prompt
func ValidatePrompt(prompt string, maxLength int) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	if maxLength > 0 && len(prompt) > maxLength {
		return fmt.Errorf("prompt too long: %d characters (maximum %d)", len(prompt), maxLength)
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(prompt) {
			return fmt.Errorf("prompt contains disallowed content")
		}
	}

	return nil
}

// 错误文本里可能泄露的凭证形态
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`arn:aws[a-zA-Z0-9:/_\-]*`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)(api[_-]?key|token|secret)\s*[=:]\s*\S+`),
	regexp.MustCompile(`\b[A-Za-z0-9/+]{40}\b`),
}

// SanitizeError 把错误转成可以对外展示的文本
// 凭证形态的子串一律替换为 [REDACTED]。
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, pattern := range secretPatterns {
		msg = pattern.ReplaceAllString(msg, "[REDACTED]")
	}
	return msg
}

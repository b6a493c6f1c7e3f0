package envelope

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Request 从通知信封中提取出的中继请求
type Request struct {
	Token  string
	Prompt string
}

// 解析错误，缺字段和坏 JSON 区分开，handler 据此决定回报通道
var (
	ErrNoMessage     = errors.New("no notification message in event")
	ErrInvalidJSON   = errors.New("notification message is not valid JSON")
	ErrMissingToken  = errors.New("token not found in message")
	ErrNoOptions     = errors.New("no options provided in message")
	ErrMissingPrompt = errors.New("prompt not found in message")
)

// Parse 解析 SNS 风格的事件信封
// 事件结构为 Records[0].Sns.Message，Message 本身是一段 JSON 字符串，
// 携带 interaction token 和应用命令的第一个 option 值作为 prompt。
func Parse(event []byte) (*Request, error) {
	if !gjson.ValidBytes(event) {
		return nil, fmt.Errorf("%w: event is not valid JSON", ErrInvalidJSON)
	}

	message := gjson.GetBytes(event, "Records.0.Sns.Message")
	if !message.Exists() || message.String() == "" {
		return nil, ErrNoMessage
	}

	raw := message.String()
	if !gjson.Valid(raw) {
		return nil, ErrInvalidJSON
	}

	token := gjson.Get(raw, "token").String()
	if token == "" {
		return nil, ErrMissingToken
	}

	// token 之后的缺字段错误仍带回部分请求，便于向源头回报
	options := gjson.Get(raw, "data.options")
	if !options.Exists() || len(options.Array()) == 0 {
		return &Request{Token: token}, ErrNoOptions
	}

	prompt := gjson.Get(raw, "data.options.0.value").String()
	if prompt == "" {
		return &Request{Token: token}, ErrMissingPrompt
	}

	return &Request{Token: token, Prompt: prompt}, nil
}

package relay

import "context"

// DeliveryOutcome 单次投递的结果，仅用于日志
type DeliveryOutcome struct {
	StatusCode int
	Body       string
}

// DeliverySink 远端投递接口
// 实现方负责自己的格式包装和长度截断，超长内容不允许拒绝投递。
type DeliverySink interface {
	// Deliver 投递一段文本
	Deliver(ctx context.Context, content string) (*DeliveryOutcome, error)
}

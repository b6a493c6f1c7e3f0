package relay

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smallnest/relayclaw/internal/logger"
	"go.uber.org/zap"
)

const (
	defaultDeliverTimeout = 5 * time.Second
	defaultCloseTimeout   = 2 * time.Second
)

// StreamWriter 流式中继写入器
// 把生产者逐字符写入的文本按行和字节上限切块，由单个后台 worker
// 按 FIFO 顺序投递到 DeliverySink。一次 agent 调用对应一个实例，
// 用完即弃，不可复用。
//
// 实现 io.Writer / io.StringWriter，直接作为 agent 的输出 sink 注入。
type StreamWriter struct {
	sink      DeliverySink
	minLines  int
	maxBuffer int

	mu      sync.Mutex
	lineBuf []string
	current strings.Builder
	total   strings.Builder
	queue   []string
	closed  bool

	// pending 对每个入队的 chunk 计数，投递尝试完成（无论成败）后 Done。
	pending    sync.WaitGroup
	notify     chan struct{}
	stopCh     chan struct{}
	workerDone chan struct{}

	deliverTimeout time.Duration
	closeTimeout   time.Duration

	sessionID string
}

// NewStreamWriter 创建流式中继写入器并启动后台投递 worker
// minLines 为触发软刷新的最小完整行数，maxBufferSize 为触发硬刷新的
// 缓冲字节上限。参数由调用方保证合理，异常取值只会退化不会出错。
func NewStreamWriter(sink DeliverySink, minLines, maxBufferSize int) *StreamWriter {
	w := &StreamWriter{
		sink:           sink,
		minLines:       minLines,
		maxBuffer:      maxBufferSize,
		notify:         make(chan struct{}, 1),
		stopCh:         make(chan struct{}),
		workerDone:     make(chan struct{}),
		deliverTimeout: defaultDeliverTimeout,
		closeTimeout:   defaultCloseTimeout,
		sessionID:      uuid.New().String(),
	}

	logger.Info("Stream writer started",
		zap.String("session_id", w.sessionID),
		zap.Int("min_lines", minLines),
		zap.Int("max_buffer_size", maxBufferSize))

	go w.dispatchWorker()

	return w
}

// Write 实现 io.Writer
// 按 rune 扫描，换行符完成当前行并检查软刷新；整段处理完后检查
// 硬刷新。只入队，从不在调用方 goroutine 里做网络投递。
func (w *StreamWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s := string(p)

	w.mu.Lock()
	w.total.WriteString(s)

	for _, r := range s {
		if r == '\n' {
			// 连续换行产生的空行不进入行缓冲，但每个换行都触发软刷新检查
			if w.current.Len() > 0 {
				w.lineBuf = append(w.lineBuf, w.current.String())
				w.current.Reset()
			}
			w.softFlushLocked()
		} else {
			w.current.WriteRune(r)
		}
	}

	size := w.current.Len()
	for _, line := range w.lineBuf {
		size += len(line)
	}
	if size >= w.maxBuffer {
		w.hardFlushLocked()
	}
	w.mu.Unlock()

	return len(p), nil
}

// WriteString 实现 io.StringWriter
func (w *StreamWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// softFlushLocked 行数达到阈值时把完整行合并入队
func (w *StreamWriter) softFlushLocked() {
	if len(w.lineBuf) < w.minLines {
		return
	}

	content := strings.Join(w.lineBuf, "\n")
	w.lineBuf = nil

	if strings.TrimSpace(content) != "" {
		w.enqueueLocked(content)
	}
}

// hardFlushLocked 缓冲超限时连同未完成的行一起合并入队
func (w *StreamWriter) hardFlushLocked() {
	lines := w.lineBuf
	w.lineBuf = nil
	if w.current.Len() > 0 {
		lines = append(lines, w.current.String())
		w.current.Reset()
	}

	if len(lines) == 0 {
		return
	}

	content := strings.Join(lines, "\n")
	if strings.TrimSpace(content) != "" {
		w.enqueueLocked(content)
	}
}

func (w *StreamWriter) enqueueLocked(content string) {
	w.queue = append(w.queue, content)
	w.pending.Add(1)

	logger.Debug("Chunk enqueued",
		zap.String("session_id", w.sessionID),
		zap.Int("chunk_length", len(content)),
		zap.Int("queue_length", len(w.queue)))

	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *StreamWriter) dequeue() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.queue) == 0 {
		return "", false
	}
	content := w.queue[0]
	w.queue = w.queue[1:]
	return content, true
}

// dispatchWorker 后台投递 worker，严格按入队顺序逐个投递
func (w *StreamWriter) dispatchWorker() {
	defer close(w.workerDone)

	for {
		if content, ok := w.dequeue(); ok {
			w.deliver(content)
			w.pending.Done()
			continue
		}

		select {
		case <-w.notify:
		case <-w.stopCh:
			// 收到停止信号后清空残余队列再退出
			for {
				content, ok := w.dequeue()
				if !ok {
					return
				}
				w.deliver(content)
				w.pending.Done()
			}
		}
	}
}

// deliver 投递单个 chunk，失败只记日志，从不向生产者传播
func (w *StreamWriter) deliver(content string) {
	ctx, cancel := context.WithTimeout(context.Background(), w.deliverTimeout)
	defer cancel()

	outcome, err := w.sink.Deliver(ctx, content)
	if err != nil {
		logger.Warn("Chunk delivery failed",
			zap.String("session_id", w.sessionID),
			zap.Error(err))
		return
	}

	if outcome != nil && outcome.StatusCode != 204 {
		logger.Warn("Unexpected delivery status",
			zap.String("session_id", w.sessionID),
			zap.Int("status_code", outcome.StatusCode),
			zap.String("body", outcome.Body))
		return
	}

	logger.Debug("Chunk delivered",
		zap.String("session_id", w.sessionID),
		zap.Int("chunk_length", len(content)))
}

// FlushRemaining 把缓冲里剩余的完整行和未完成行作为最后一个 chunk
// 入队，然后阻塞到队列排空（所有投递已尝试，成功与否不论）。
// 缓冲为空时调用是无害的。
func (w *StreamWriter) FlushRemaining() {
	w.mu.Lock()
	w.hardFlushLocked()
	w.mu.Unlock()

	w.pending.Wait()
}

// Close 关闭写入器
// 先 FlushRemaining，再通知 worker 退出并限时等待。重复调用安全。
// 调用方应 defer 本方法，保证生产者中途出错时缓冲内容仍被投递。
func (w *StreamWriter) Close() error {
	w.FlushRemaining()

	w.mu.Lock()
	alreadyClosed := w.closed
	if !w.closed {
		w.closed = true
		close(w.stopCh)
	}
	w.mu.Unlock()

	if alreadyClosed {
		return nil
	}

	select {
	case <-w.workerDone:
	case <-time.After(w.closeTimeout):
		logger.Warn("Dispatch worker did not exit in time",
			zap.String("session_id", w.sessionID))
	}

	logger.Info("Stream writer closed",
		zap.String("session_id", w.sessionID),
		zap.Int("total_length", w.totalLen()))

	return nil
}

func (w *StreamWriter) totalLen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total.Len()
}

// FullContent 返回迄今写入的全部原始文本
// 与实际投递内容无关：被丢弃的纯空白 chunk 和被截断的部分都包含在内。
func (w *StreamWriter) FullContent() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total.String()
}

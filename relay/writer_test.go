package relay

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type captureSink struct {
	mu     sync.Mutex
	chunks []string
	status int
	err    error
	delay  time.Duration
}

func newCaptureSink() *captureSink {
	return &captureSink{status: 204}
}

func (s *captureSink) Deliver(ctx context.Context, content string) (*DeliveryOutcome, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	s.chunks = append(s.chunks, content)
	return &DeliveryOutcome{StatusCode: s.status}, nil
}

func (s *captureSink) Chunks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.chunks...)
}

func waitForChunks(t *testing.T, sink *captureSink, count int) []string {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		chunks := sink.Chunks()
		if len(chunks) >= count {
			return chunks
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d chunks, got %d: %v", count, len(sink.Chunks()), sink.Chunks())
	return nil
}

func TestFullContentMatchesWrites(t *testing.T) {
	sink := newCaptureSink()
	w := NewStreamWriter(sink, 1, 1500)
	defer w.Close()

	parts := []string{"hello ", "world\n", "", "partial line", " tail\nmore"}
	var want strings.Builder
	for _, p := range parts {
		n, err := w.WriteString(p)
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if n != len(p) {
			t.Fatalf("expected write to accept %d bytes, got %d", len(p), n)
		}
		want.WriteString(p)
	}

	if got := w.FullContent(); got != want.String() {
		t.Fatalf("full content mismatch: got %q want %q", got, want.String())
	}
}

func TestMinLinesOneFlushesEveryLine(t *testing.T) {
	sink := newCaptureSink()
	w := NewStreamWriter(sink, 1, 1500)
	defer w.Close()

	if _, err := w.WriteString("a\nb\nc\n"); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	chunks := waitForChunks(t, sink, 3)
	want := []string{"a", "b", "c"}
	for i, c := range want {
		if chunks[i] != c {
			t.Fatalf("chunk %d: got %q want %q", i, chunks[i], c)
		}
	}
}

func TestFlushRemainingForcesIncompleteBatch(t *testing.T) {
	sink := newCaptureSink()
	w := NewStreamWriter(sink, 3, 1500)
	defer w.Close()

	if _, err := w.WriteString("a\nb\n"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	w.FlushRemaining()

	chunks := sink.Chunks()
	if len(chunks) != 1 || chunks[0] != "a\nb" {
		t.Fatalf("expected single chunk \"a\\nb\", got %v", chunks)
	}
}

func TestHardFlushOnOversizedLine(t *testing.T) {
	sink := newCaptureSink()
	w := NewStreamWriter(sink, 1, 10)
	defer w.Close()

	line := "abcdefghijklmno" // 15 chars, no newline
	if _, err := w.WriteString(line); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	// 不调用 FlushRemaining，硬刷新必须已在 Write 内入队
	chunks := waitForChunks(t, sink, 1)
	if chunks[0] != line {
		t.Fatalf("expected hard flush chunk %q, got %q", line, chunks[0])
	}
}

func TestWhitespaceOnlyChunksSuppressed(t *testing.T) {
	sink := newCaptureSink()
	w := NewStreamWriter(sink, 1, 1500)
	defer w.Close()

	if _, err := w.WriteString("   \n\t\nreal\n"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	w.FlushRemaining()

	chunks := sink.Chunks()
	if len(chunks) != 1 || chunks[0] != "real" {
		t.Fatalf("expected only the non-whitespace chunk, got %v", chunks)
	}

	if got := w.FullContent(); got != "   \n\t\nreal\n" {
		t.Fatalf("whitespace must still be accumulated, got %q", got)
	}
}

func TestChunksDeliveredInWriteOrder(t *testing.T) {
	sink := newCaptureSink()
	w := NewStreamWriter(sink, 1, 100000)
	defer w.Close()

	const n = 50
	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintf(w, "line-%03d\n", i); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	w.FlushRemaining()

	chunks := sink.Chunks()
	if len(chunks) != n {
		t.Fatalf("expected %d chunks, got %d", n, len(chunks))
	}
	for i, c := range chunks {
		if want := fmt.Sprintf("line-%03d", i); c != want {
			t.Fatalf("chunk %d out of order: got %q want %q", i, c, want)
		}
	}
}

func TestDeliveryFailureDoesNotPropagate(t *testing.T) {
	sink := newCaptureSink()
	sink.err = fmt.Errorf("network down")
	w := NewStreamWriter(sink, 1, 1500)

	if _, err := w.WriteString("doomed\n"); err != nil {
		t.Fatalf("write must not surface delivery errors: %v", err)
	}

	done := make(chan struct{})
	go func() {
		w.FlushRemaining()
		if err := w.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("flush/close hung on failed deliveries")
	}

	if got := w.FullContent(); got != "doomed\n" {
		t.Fatalf("content must remain recoverable, got %q", got)
	}
}

func TestCloseTwiceIsSafe(t *testing.T) {
	sink := newCaptureSink()
	w := NewStreamWriter(sink, 1, 1500)

	if _, err := w.WriteString("bye\n"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	chunks := sink.Chunks()
	if len(chunks) != 1 || chunks[0] != "bye" {
		t.Fatalf("expected single chunk, got %v", chunks)
	}
}

func TestCloseDrainsPartialLine(t *testing.T) {
	sink := newCaptureSink()
	w := NewStreamWriter(sink, 5, 1500)

	if _, err := w.WriteString("no trailing newline"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	chunks := sink.Chunks()
	if len(chunks) != 1 || chunks[0] != "no trailing newline" {
		t.Fatalf("expected partial line drained on close, got %v", chunks)
	}
}

func TestConcurrentReadDuringWrites(t *testing.T) {
	sink := newCaptureSink()
	sink.delay = 2 * time.Millisecond
	w := NewStreamWriter(sink, 1, 1500)
	defer w.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_, _ = fmt.Fprintf(w, "tick %d\n", i)
		}
		close(done)
	}()

	// FullContent 在写入进行中也必须返回一致的快照
	for i := 0; i < 20; i++ {
		_ = w.FullContent()
		time.Sleep(time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("producer blocked by slow sink")
	}
}

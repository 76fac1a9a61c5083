package runner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// DefaultInputBufferSize is the number of lines buffered between the reader and the loop.
const DefaultInputBufferSize = 64

type inputResult struct {
	text string
	err  error
}

// linePump moves lines from a reader (or FeedInput) to a channel so Input can
// select on the context while a read is blocked.
type linePump struct {
	ch        chan inputResult
	startOnce sync.Once
}

func newLinePump() *linePump {
	return &linePump{ch: make(chan inputResult, DefaultInputBufferSize)}
}

// start reads r line by line in the background. It stops after the first error;
// io.EOF is forwarded to the consumer.
func (p *linePump) start(r io.Reader) {
	p.startOnce.Do(func() {
		go func() {
			reader := bufio.NewReader(r)
			for {
				text, err := reader.ReadString('\n')
				if text != "" {
					p.ch <- inputResult{text: text}
				}
				if err != nil {
					p.ch <- inputResult{err: err}
					return
				}
			}
		}()
	})
}

func (p *linePump) feed(text string, err error) {
	p.ch <- inputResult{text: text, err: err}
}

func (p *linePump) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-p.ch:
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.text), nil
	}
}

package process

import (
	"bytes"
	"io"
	"sync"
)

// prefixWriter writes whole lines to out, each one starting with prefix.
// Writers sharing mu never interleave within a line.
type prefixWriter struct {
	out    io.Writer
	mu     *sync.Mutex
	prefix []byte
	buf    bytes.Buffer
}

func newPrefixWriter(out io.Writer, mu *sync.Mutex, prefix string) *prefixWriter {
	return &prefixWriter{out: out, mu: mu, prefix: []byte(prefix)}
}

func (w *prefixWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		line, ok := w.nextLine()
		if !ok {
			return len(p), nil
		}
		if err := w.emit(line); err != nil {
			return len(p), err
		}
	}
}

func (w *prefixWriter) nextLine() ([]byte, bool) {
	i := bytes.IndexByte(w.buf.Bytes(), '\n')
	if i < 0 {
		return nil, false
	}
	line := make([]byte, i+1)
	copy(line, w.buf.Next(i+1))
	return line, true
}

func (w *prefixWriter) emit(line []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(w.prefix); err != nil {
		return err
	}
	_, err := w.out.Write(line)
	return err
}

// Flush writes a trailing partial line, if any.
func (w *prefixWriter) Flush() {
	if w.buf.Len() == 0 {
		return
	}
	rest := append(w.buf.Bytes(), '\n')
	w.buf.Reset()
	_ = w.emit(rest)
}

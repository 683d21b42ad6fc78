package tsv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultChunkSize is how many bytes are pulled from the source per read.
const DefaultChunkSize = 10000

// Line is one record handed to the consumer. The reader blocks until Done is called.
type Line struct {
	Text   string
	Number int
	ack    chan struct{}
}

// Done releases the reader to look for the next line. Extra calls are no-ops.
func (l Line) Done() {
	select {
	case l.ack <- struct{}{}:
	default:
	}
}

// Result is sent once, after the line channel has been closed.
type Result struct {
	Lines int
	Err   error
}

// LineReader splits a byte stream into lines using a bounded chunk buffer.
// Separators ("\n", or "\r\n") are stripped, blank lines are skipped and a
// trailing line without a separator is still emitted.
type LineReader struct {
	src       io.Reader
	closer    io.Closer
	chunkSize int
}

func NewLineReader(r io.Reader, chunkSize int) *LineReader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &LineReader{src: r, chunkSize: chunkSize}
}

// OpenLineReader opens path for reading. The file is closed when the stream ends.
func OpenLineReader(path string, chunkSize int) (*LineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &FileAccessError{Path: path, Err: err}
	}
	if info.IsDir() {
		f.Close()
		return nil, &FileAccessError{Path: path, Err: errors.New("is a directory")}
	}

	r := NewLineReader(f, chunkSize)
	r.closer = f
	return r, nil
}

// Stream starts reading in a goroutine. Consumers must range over the line
// channel, call Done on every line, then receive the Result.
func (r *LineReader) Stream(ctx context.Context) (<-chan Line, <-chan Result) {
	lines := make(chan Line)
	result := make(chan Result, 1)

	go func() {
		defer close(result)

		count, err := r.run(ctx, lines)
		close(lines)

		if r.closer != nil {
			if cerr := r.closer.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close source: %w", cerr)
			}
		}
		result <- Result{Lines: count, Err: err}
	}()

	return lines, result
}

func (r *LineReader) run(ctx context.Context, out chan<- Line) (int, error) {
	chunk := make([]byte, r.chunkSize)
	var pending []byte
	emitted, lineNo := 0, 0

	emit := func(raw []byte) error {
		lineNo++
		raw = bytes.TrimSuffix(raw, []byte{'\r'})
		if len(raw) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := Line{Text: string(raw), Number: lineNo, ack: make(chan struct{}, 1)}
		select {
		case out <- line:
			emitted++
		case <-ctx.Done():
			return ctx.Err()
		}

		select {
		case <-line.ack:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return emitted, err
		}

		n, readErr := r.src.Read(chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)

			start := 0
			for {
				i := bytes.IndexByte(pending[start:], '\n')
				if i < 0 {
					break
				}
				if err := emit(pending[start : start+i]); err != nil {
					return emitted, err
				}
				start += i + 1
			}
			pending = append(pending[:0], pending[start:]...)
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return emitted, fmt.Errorf("read chunk: %w", readErr)
		}
	}

	if len(pending) > 0 {
		if err := emit(pending); err != nil {
			return emitted, err
		}
	}

	return emitted, nil
}

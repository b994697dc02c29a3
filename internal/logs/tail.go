package logs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// TailOptions selects which log lines Tail returns.
type TailOptions struct {
	// Limit caps the number of lines returned. Zero or less returns every
	// matching line.
	Limit int
	// Contains keeps only lines holding this substring, such as a submission ID.
	Contains string
}

// Tail returns the last matching lines of the log file at path in file order.
// A missing file yields no lines.
func Tail(path string, opts TailOptions) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("log path %q is a directory", path)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var ring ringBuffer
	ring.limit = opts.Limit
	for scanner.Scan() {
		line := scanner.Text()
		if opts.Contains != "" && !strings.Contains(line, opts.Contains) {
			continue
		}
		ring.push(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	return ring.lines(), nil
}

type ringBuffer struct {
	limit int
	buf   []string
	next  int
	full  bool
}

func (r *ringBuffer) push(line string) {
	if r.limit <= 0 {
		r.buf = append(r.buf, line)
		return
	}
	if len(r.buf) < r.limit {
		r.buf = append(r.buf, line)
		return
	}
	r.buf[r.next] = line
	r.next = (r.next + 1) % r.limit
	r.full = true
}

func (r *ringBuffer) lines() []string {
	if !r.full {
		return r.buf
	}
	out := make([]string, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

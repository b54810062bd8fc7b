package runnerjson

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ProcessFunc receives each decoded event in stream order.
type ProcessFunc func(Event)

// ParseStream decodes every event from r.
// Returns the events, the number of malformed lines skipped, and any error.
func ParseStream(r io.Reader) ([]Event, int, error) {
	scanner := bufio.NewScanner(r)
	// Allow long failure messages
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var events []Event
	var malformed int
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil || ev.Action == "" {
			malformed++
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, malformed, fmt.Errorf("scanning runner output: %w", err)
	}
	return events, malformed, nil
}

// ParseBytes is a convenience for parsing from a byte slice.
func ParseBytes(data []byte) ([]Event, int, error) {
	return ParseStream(bytes.NewReader(data))
}

// scanResult carries a scanned line or terminal error from the scanner goroutine.
type scanResult struct {
	line []byte
	err  error
}

// Stream decodes events line by line and calls fn for each one.
// Stops on EOF or when ctx is cancelled. Returns the number of malformed lines
// skipped and any error.
//
// On cancel, Stream closes r if it implements io.Closer to unblock the
// scanner goroutine; otherwise the caller must close the underlying reader.
func Stream(ctx context.Context, r io.Reader, fn ProcessFunc) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := make(chan scanResult)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			// Copy bytes; the scanner reuses its buffer.
			cp := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- scanResult{line: cp}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- scanResult{err: err}:
			case <-ctx.Done():
			}
		}
	}()

	var malformed int
	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			return malformed, ctx.Err()
		case res, ok := <-lines:
			if !ok {
				// The scanner may stop on a reader closed by cancellation.
				return malformed, ctx.Err()
			}
			if res.err != nil {
				return malformed, fmt.Errorf("scanning runner output: %w", res.err)
			}
			line := bytes.TrimSpace(res.line)
			if len(line) == 0 {
				continue
			}
			var ev Event
			if err := json.Unmarshal(line, &ev); err != nil || ev.Action == "" {
				malformed++
				continue
			}
			fn(ev)
		}
	}
}

package runnerjson

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed event.schema.json
var eventSchemaJSON []byte

var (
	eventSchema *jsonschema.Schema
	compileOnce sync.Once
	compileErr  error
)

func compileSchema() error {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(eventSchemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal event schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("event.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add event schema resource: %w", err)
			return
		}
		eventSchema, err = compiler.Compile("event.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile event schema: %w", err)
		}
	})
	return compileErr
}

// Validate checks one event line against the event schema.
func Validate(line []byte) error {
	if err := compileSchema(); err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(line, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := eventSchema.Validate(v); err != nil {
		return fmt.Errorf("event validation failed: %w", err)
	}
	return nil
}

// LineError ties a validation failure to its 1-based line number.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *LineError) Unwrap() error { return e.Err }

// ValidateStream validates every non-blank line of r and returns one
// LineError per invalid line.
func ValidateStream(r io.Reader) ([]*LineError, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var problems []*LineError
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := Validate(line); err != nil {
			problems = append(problems, &LineError{Line: n, Err: err})
		}
	}
	if err := scanner.Err(); err != nil {
		return problems, fmt.Errorf("scanning runner output: %w", err)
	}
	return problems, nil
}

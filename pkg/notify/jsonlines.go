package notify

import (
	"encoding/json"
	"io"
	"time"
)

// jsonNotification is the NDJSON wire form written by JSONLines.
type jsonNotification struct {
	Time   time.Time `json:"time"`
	Verb   Verb      `json:"verb"`
	ID     string    `json:"id"`
	Name   string    `json:"name,omitempty"`
	Parent string    `json:"parent,omitempty"`
	Cause  string    `json:"cause,omitempty"`
}

// JSONLines writes one JSON object per notification. The first write error
// is kept and every later call becomes a no-op; check Err after the run.
type JSONLines struct {
	enc *json.Encoder
	now func() time.Time
	err error
}

// NewJSONLines returns a sink writing NDJSON to w.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{enc: json.NewEncoder(w), now: time.Now}
}

// Err returns the first write error, if any.
func (j *JSONLines) Err() error { return j.err }

func (j *JSONLines) Start(d Description)  { j.write(VerbStart, d, nil) }
func (j *JSONLines) Finish(d Description) { j.write(VerbFinish, d, nil) }
func (j *JSONLines) Ignore(d Description) { j.write(VerbIgnore, d, nil) }

func (j *JSONLines) Fail(d Description, cause error) { j.write(VerbFail, d, cause) }

func (j *JSONLines) write(verb Verb, d Description, cause error) {
	if j.err != nil {
		return
	}
	n := jsonNotification{Time: j.now().UTC(), Verb: verb, ID: d.ID, Name: d.Name, Parent: d.Parent}
	if cause != nil {
		n.Cause = cause.Error()
	}
	j.err = j.enc.Encode(n)
}

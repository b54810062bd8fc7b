package notify

// Notification is one recorded sink call.
type Notification struct {
	Verb        Verb
	Description Description
	Cause       error
}

// Recorder is an in-memory Sink that keeps calls in arrival order.
type Recorder struct {
	Calls []Notification
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Start(d Description) {
	r.Calls = append(r.Calls, Notification{Verb: VerbStart, Description: d})
}

func (r *Recorder) Finish(d Description) {
	r.Calls = append(r.Calls, Notification{Verb: VerbFinish, Description: d})
}

func (r *Recorder) Fail(d Description, cause error) {
	r.Calls = append(r.Calls, Notification{Verb: VerbFail, Description: d, Cause: cause})
}

func (r *Recorder) Ignore(d Description) {
	r.Calls = append(r.Calls, Notification{Verb: VerbIgnore, Description: d})
}

// Count returns how many calls with verb targeted the description id.
// An empty id matches every description.
func (r *Recorder) Count(verb Verb, id string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Verb == verb && (id == "" || c.Description.ID == id) {
			n++
		}
	}
	return n
}

// For returns the calls against one description, in order.
func (r *Recorder) For(id string) []Notification {
	var out []Notification
	for _, c := range r.Calls {
		if c.Description.ID == id {
			out = append(out, c)
		}
	}
	return out
}

// Verbs returns the verbs against one description, in order.
func (r *Recorder) Verbs(id string) []Verb {
	var out []Verb
	for _, c := range r.For(id) {
		out = append(out, c.Verb)
	}
	return out
}

// Reset drops all recorded calls.
func (r *Recorder) Reset() { r.Calls = r.Calls[:0] }

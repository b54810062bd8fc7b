package pattern

// TestTable holds one scenario's steps, or a collapsed list of scenarios.
type TestTable struct {
	Label   string          `json:"label"`
	Status  string          `json:"status"`            // worst status across the table
	Details string          `json:"details,omitempty"` // scenario-level failure cause, if any
	Results []TestTableItem `json:"results"`
}

// TestTableItem is a single step or scenario row.
type TestTableItem struct {
	Name    string `json:"name"`
	Status  string `json:"status"`            // fail, ignore, pass, open
	Trace   string `json:"trace,omitempty"`   // verbs received, e.g. "start fail finish"
	Details string `json:"details,omitempty"` // failure cause
}

func (t *TestTable) Type() PatternType { return PatternTypeTestTable }

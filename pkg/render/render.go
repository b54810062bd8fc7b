// Package render provides output renderers for stepnotify's report patterns.
package render

import "github.com/dkoosis/stepnotify/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

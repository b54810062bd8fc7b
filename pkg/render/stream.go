package render

import "github.com/dkoosis/stepnotify/pkg/stream"

// StreamStyle colors live stream lines with the theme.
func StreamStyle(theme Theme) stream.StyleFunc {
	return func(kind stream.LineKind, text string) string {
		switch kind {
		case stream.KindFail:
			return theme.Error.Render(text)
		case stream.KindIgnore:
			return theme.Warning.Render(text)
		case stream.KindFinish, stream.KindPass:
			return theme.Success.Render(text)
		case stream.KindStart:
			return theme.Primary.Render(text)
		case stream.KindOutput, stream.KindSeparator:
			return theme.Muted.Render(text)
		default:
			return text
		}
	}
}

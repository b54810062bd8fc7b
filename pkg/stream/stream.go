package stream

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dkoosis/stepnotify/pkg/engine"
	"github.com/dkoosis/stepnotify/pkg/notify"
	"github.com/dkoosis/stepnotify/pkg/runnerjson"
)

// LineKind identifies the type of output line for styling.
type LineKind int

const (
	KindStart LineKind = iota
	KindFinish
	KindFail
	KindIgnore
	KindOutput
	KindSeparator
	KindPass
)

// StyleFunc formats a line with colors/symbols.
// If nil, no styling is applied.
type StyleFunc func(kind LineKind, text string) string

// openNode is a description that has been started and not yet finished.
type openNode struct {
	desc  notify.Description
	since time.Time
}

// Live is a notify.Sink that prints one history line per notification and
// keeps a footer listing the descriptions still open.
type Live struct {
	tw    *termWriter
	style StyleFunc
	now   func() time.Time

	open  []openNode
	order []string

	started  int
	finished int
	failed   int
	ignored  int
	begin    time.Time
}

// NewLive returns a live sink writing to out.
func NewLive(out io.Writer, width, height int, style StyleFunc) *Live {
	l := &Live{
		tw:    newTermWriter(out, width, height),
		style: style,
		now:   time.Now,
	}
	l.begin = l.now()
	return l
}

// styleLine applies the style function if set, otherwise returns text unchanged.
func (l *Live) styleLine(kind LineKind, text string) string {
	if l.style != nil {
		return l.style(kind, text)
	}
	return text
}

func (l *Live) Start(d notify.Description) {
	l.started++
	l.open = append(l.open, openNode{desc: d, since: l.now()})
	l.print(KindStart, "▸", d)
	l.redrawFooter()
}

func (l *Live) Finish(d notify.Description) {
	l.finished++
	elapsed := l.close(d.ID)
	line := fmt.Sprintf("  · %-48s %5.2fs", d.String(), elapsed)
	l.tw.EraseFooter()
	l.tw.PrintLine(l.styleLine(KindFinish, line))
	l.redrawFooter()
}

func (l *Live) Fail(d notify.Description, cause error) {
	l.failed++
	l.print(KindFail, "✗", d)
	if cause != nil {
		for _, ln := range strings.Split(strings.TrimRight(cause.Error(), "\n"), "\n") {
			l.tw.PrintLine(l.styleLine(KindOutput, "      "+ln))
		}
	}
	l.redrawFooter()
}

func (l *Live) Ignore(d notify.Description) {
	l.ignored++
	l.close(d.ID)
	l.print(KindIgnore, "○", d)
	l.redrawFooter()
}

// Failed reports whether any fail notification was seen.
func (l *Live) Failed() bool { return l.failed > 0 }

// Note prints a free-form diagnostic line above the footer.
func (l *Live) Note(text string) {
	l.tw.EraseFooter()
	l.tw.PrintLine(l.styleLine(KindOutput, "  "+text))
	l.redrawFooter()
}

func (l *Live) print(kind LineKind, symbol string, d notify.Description) {
	l.tw.EraseFooter()
	l.tw.PrintLine(l.styleLine(kind, fmt.Sprintf("  %s %s", symbol, d.String())))
}

// close drops id from the open set and returns how long it was open.
func (l *Live) close(id string) float64 {
	for i, n := range l.open {
		if n.desc.ID == id {
			l.open = append(l.open[:i], l.open[i+1:]...)
			return l.now().Sub(n.since).Seconds()
		}
	}
	return 0
}

// redrawFooter rebuilds the open-descriptions footer.
func (l *Live) redrawFooter() {
	if len(l.open) == 0 {
		return
	}

	lines := []string{"  ─── running " + strings.Repeat("─", 36)}
	now := l.now()
	for _, n := range l.open {
		lines = append(lines, fmt.Sprintf("  %-40s %5.1fs", n.desc.String(), now.Sub(n.since).Seconds()))
	}
	l.tw.DrawFooter(lines)
}

// Close erases the footer and prints the final summary line.
func (l *Live) Close() {
	l.tw.EraseFooter()
	l.tw.PrintLine(l.styleLine(KindSeparator, "  "+strings.Repeat("─", 45)))

	elapsed := l.now().Sub(l.begin).Seconds()
	if l.failed > 0 {
		summary := fmt.Sprintf("  FAIL (%.1fs) %d failed, %d finished, %d ignored",
			elapsed, l.failed, l.finished, l.ignored)
		l.tw.PrintLine(l.styleLine(KindFail, summary))
		return
	}
	summary := fmt.Sprintf("  PASS (%.1fs) %d finished, %d ignored", elapsed, l.finished, l.ignored)
	l.tw.PrintLine(l.styleLine(KindPass, summary))
}

// Options configures Run.
type Options struct {
	Width, Height int
	Style         StyleFunc
	Policy        engine.Policy
	Logger        *zap.Logger
	// Also receives every notification, after the live display.
	Also notify.Sink
}

// Run reads runner events from r, drives them through the engine and
// renders the notifications live to out.
// Returns exit code: 0=no failures, 1=failures, 2=error, 130=cancelled.
func Run(ctx context.Context, r io.Reader, out io.Writer, opts Options) int {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	live := NewLive(out, opts.Width, opts.Height, opts.Style)

	var sink notify.Sink = live
	if opts.Also != nil {
		sink = notify.Tee{live, opts.Also}
	}
	driver := runnerjson.NewDriver(engine.New(opts.Policy, engine.WithLogger(log)), sink)

	protocolErrs := 0
	malformed, err := runnerjson.Stream(ctx, r, func(e runnerjson.Event) {
		if herr := driver.Handle(e); herr != nil {
			protocolErrs++
			log.Warn("event rejected", zap.Error(herr))
			live.Note("! " + herr.Error())
		}
	})
	if cerr := driver.Close(); cerr != nil {
		protocolErrs++
		log.Warn("stream ended early", zap.Error(cerr))
		live.Note("! " + cerr.Error())
	}
	if malformed > 0 {
		log.Warn("malformed lines skipped", zap.Int("count", malformed))
	}
	live.Close()

	if err != nil {
		if ctx.Err() != nil {
			return 130
		}
		log.Error("reading runner output", zap.Error(err))
		return 2
	}
	if live.Failed() {
		return 1
	}
	if protocolErrs > 0 {
		return 2
	}
	return 0
}

package main

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/exp/slog"
)

const (
	colorDefault = "\x1b[0m"
	colorRed     = "\x1b[1;31m"
	colorGreen   = "\x1b[1;32m"
	colorYellow  = "\x1b[1;33m"
	colorBlue    = "\x1b[1;34m"
)

var _ slog.Handler = (*ConsoleHandler)(nil)

// ConsoleHandler writes logs intended to be read by a human watching a
// deployment. The component and step attributes are folded into the message
// prefix instead of being printed as key=value pairs.
type ConsoleHandler struct {
	level     slog.Level
	nocolor   bool
	flatattrs string
	component string
	step      string
}

func NewConsoleHandler() *ConsoleHandler {
	return &ConsoleHandler{}
}

func (ch *ConsoleHandler) WithLevel(level slog.Level) *ConsoleHandler {
	ch.level = level
	return ch
}

func (ch *ConsoleHandler) WithoutColor() *ConsoleHandler {
	ch.nocolor = true
	return ch
}

func (ch *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= ch.level
}

func (ch *ConsoleHandler) Handle(r slog.Record) error {
	prefix := "???"
	switch r.Level {
	case slog.LevelError:
		prefix = "error"
	case slog.LevelWarn:
		prefix = "warn"
	case slog.LevelInfo:
		prefix = "info"
	case slog.LevelDebug:
		prefix = "debug"
	default:
		prefix = fmt.Sprintf("%02d", r.Level)
	}

	if !ch.nocolor {
		if r.Level >= slog.LevelError {
			prefix = fmt.Sprintf("%s%-5s%s", colorRed, prefix, colorDefault)
		} else if r.Level >= slog.LevelWarn {
			prefix = fmt.Sprintf("%s%-5s%s", colorYellow, prefix, colorDefault)
		} else if r.Level >= slog.LevelInfo {
			prefix = fmt.Sprintf("%s%-5s%s", colorGreen, prefix, colorDefault)
		}
	} else {
		prefix = fmt.Sprintf("%-5s", prefix)
	}

	component := ch.component
	step := ch.step

	var b strings.Builder
	r.Attrs(func(a slog.Attr) {
		if a.Key == "component" {
			component = a.Value.String()
			return
		}
		if a.Key == "step" {
			step = a.Value.String()
			return
		}
		b.WriteString(" ")
		if !ch.nocolor {
			b.WriteString(colorBlue)
		}
		b.WriteString(a.Key)
		if !ch.nocolor {
			b.WriteString(colorDefault)
		}
		b.WriteString("=")
		b.WriteString(quote(a.Value.String()))
	})

	msg := r.Message
	if step != "" {
		msg = step + ": " + msg
	}
	if component != "" {
		msg = component + ": " + msg
	}

	fmt.Printf("%s | %15s | %-40s %s\n", prefix, r.Time.Format("15:04:05.000000"), msg, b.String())

	return nil
}

func (ch *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	ch2 := &ConsoleHandler{
		nocolor:   ch.nocolor,
		level:     ch.level,
		component: ch.component,
		step:      ch.step,
	}

	b := new(strings.Builder)
	b.WriteString(ch.flatattrs)
	for _, a := range attrs {
		if a.Key == "component" {
			ch2.component = a.Value.String()
			continue
		}
		if a.Key == "step" {
			ch2.step = a.Value.String()
			continue
		}
		b.WriteString(" ")
		if !ch.nocolor {
			b.WriteString(colorYellow)
		}
		b.WriteString(a.Key)
		if !ch.nocolor {
			b.WriteString(colorDefault)
		}
		b.WriteString("=")
		b.WriteString(quote(a.Value.String()))
	}

	ch2.flatattrs = b.String()

	return ch2
}

func (ch *ConsoleHandler) WithGroup(name string) slog.Handler {
	return ch
}

func quote(s string) string {
	if strings.ContainsAny(s, " ") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

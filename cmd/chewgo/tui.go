package main

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jmfiaschi/chewgo/internal/config"
	"github.com/jmfiaschi/chewgo/internal/logging"
)

// runWithTUI renders a read-only step monitor while the pipeline runs,
// adapted from the teacher's cmd/ide/gui.go layout (a steps tree plus an
// execution log panel in a tview.Flex) but dropping the IDE's editing and
// stepping controls: this view only ever observes a run in progress.
func runWithTUI(ctx context.Context, path string, sets []string, baseLog logging.Logger) error {
	cfg, err := config.Load(path, sets...)
	if err != nil {
		return err
	}

	app := tview.NewApplication()

	root := tview.NewTreeNode(path).SetSelectable(false)
	tree := tview.NewTreeView().SetRoot(root)
	tree.SetBorder(true).SetTitle("Steps")
	for _, s := range cfg.Steps {
		label := fmt.Sprintf("%s (%s)", s.Name, s.Type)
		root.AddChild(tview.NewTreeNode(label).SetSelectable(false))
	}
	root.SetExpanded(true)

	execLog := tview.NewTextView()
	execLog.SetDynamicColors(true)
	execLog.SetScrollable(true)
	execLog.SetBorder(true)
	execLog.SetTitle("Execution Log")

	layout := tview.NewFlex().
		AddItem(tree, 40, 1, false).
		AddItem(execLog, 0, 2, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC || event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})
	app.SetRoot(layout, true)

	tuiLog := newTUILogger(app, execLog, baseLog)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		p, err := config.Build(runCtx, cfg, tuiLog)
		if err != nil {
			tuiLog.Error("build failed: %s", err)
			return
		}
		if err := p.Run(runCtx); err != nil {
			tuiLog.Error("run failed: %s", err)
			return
		}
		tuiLog.Info("pipeline finished")
	}()

	return app.Run()
}

// tuiLogger fans every message out to the execLog panel (via
// QueueUpdateDraw, since tview widgets aren't safe to touch from other
// goroutines) and to the process's real logger, so a --tui run still
// leaves a structured log trail.
type tuiLogger struct {
	app    *tview.Application
	view   *tview.TextView
	fields string
	under  logging.Logger
}

func newTUILogger(app *tview.Application, view *tview.TextView, under logging.Logger) *tuiLogger {
	return &tuiLogger{app: app, view: view, under: under}
}

func (l *tuiLogger) print(level, msg string, args []any) {
	text := fmt.Sprintf(msg, args...)
	if len(args) == 0 {
		text = msg
	}
	line := fmt.Sprintf("[%s]%s[-] %s%s\n", levelColor(level), level, l.fields, text)
	l.app.QueueUpdateDraw(func() {
		fmt.Fprint(l.view, line)
	})
}

func levelColor(level string) string {
	switch level {
	case "ERROR":
		return "red"
	case "WARN":
		return "yellow"
	case "DEBUG":
		return "gray"
	default:
		return "white"
	}
}

func (l *tuiLogger) Debug(msg string, args ...any) {
	l.under.Debug(msg, args...)
	l.print("DEBUG", msg, args)
}

func (l *tuiLogger) Info(msg string, args ...any) {
	l.under.Info(msg, args...)
	l.print("INFO", msg, args)
}

func (l *tuiLogger) Warning(msg string, args ...any) {
	l.under.Warning(msg, args...)
	l.print("WARN", msg, args)
}

func (l *tuiLogger) Error(msg string, args ...any) {
	l.under.Error(msg, args...)
	l.print("ERROR", msg, args)
}

func (l *tuiLogger) With(key string, value any) logging.Logger {
	return &tuiLogger{
		app:    l.app,
		view:   l.view,
		under:  l.under.With(key, value),
		fields: fmt.Sprintf("%s%s=%v ", l.fields, key, value),
	}
}

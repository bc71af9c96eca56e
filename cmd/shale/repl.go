package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/logger"
	"github.com/shale-sh/shale/observability"
	"github.com/shale-sh/shale/pipeline"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/version"
)

const (
	promptMain = "> "
	promptCont = "::: "
)

// runREPL drives the interactive session: read a submission (reading
// continuation lines while the parse stays incomplete), evaluate it
// against the shared stack, render, repeat. Bindings and definitions
// persist across lines.
func (h *host) runREPL(ctx context.Context) error {
	fmt.Fprintf(h.stdout, "shale %s — Ctrl+C cancels the running line, Ctrl+D exits.\n", version.GetShortVersion())

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(h.completeLine)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer h.writeHistory(ln, histPath)

	// Ctrl-C during evaluation interrupts the running pipelines; at the
	// prompt liner reports it as ErrPromptAborted instead.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		for range interrupts {
			h.signals.Interrupt()
		}
	}()

	lineNo := 0
	for {
		lineNo++
		src, block, err := h.readSubmission(ln, lineNo)
		if err != nil {
			if stderrors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if _, isShell := errors.As(err); isShell {
				ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
				h.renderError(err)
				continue
			}
			if stderrors.Is(err, io.EOF) {
				fmt.Fprintln(h.stdout)
				return nil
			}
			return err
		}
		if block == nil {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		h.evalLine(ctx, lineNo, block)
	}
}

// readSubmission accumulates prompt lines until the parser stops
// reporting incomplete input. io.EOF means the session is over;
// liner.ErrPromptAborted means the user dropped the pending input with
// Ctrl-C; any other error is a parse failure in the returned source. A
// nil block with nil error is a blank submission.
func (h *host) readSubmission(ln *liner.State, lineNo int) (string, *eval.Block, error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		input, err := ln.Prompt(prompt)
		if err != nil {
			return "", nil, err
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(input)
		src := b.String()
		if strings.TrimSpace(src) == "" {
			return src, nil, nil
		}

		anchor := source.NamedSourceAnchor(fmt.Sprintf("<repl-%d>", lineNo), source.NewText(src))
		block, perr := parseSource(h.es, src, anchor)
		if perr == nil {
			return src, block, nil
		}
		if stderrors.Is(perr, errIncomplete) {
			continue
		}
		return src, nil, perr
	}
}

// evalLine runs one parsed submission under a traced line span.
func (h *host) evalLine(ctx context.Context, lineNo int, block *eval.Block) {
	lc := observability.NewLineContext(h.es.SessionID().String(), lineNo, h.metrics)
	ctx = observability.WithLineContext(ctx, lc)
	ctx, span := lc.StartSpanForLine(ctx, observability.SpanReplLine)

	h.signals.Reset()
	data, err := eval.New(h.es, h.signals).EvalBlock(ctx, h.stack, block, pipeline.Empty())
	var values int64
	if err == nil {
		values, err = h.renderData(data)
	}
	if err != nil {
		h.renderError(err)
		lc.EndLine(ctx, span, "error", values, err)
		return
	}
	lc.EndLine(ctx, span, "ok", values, nil)
	h.log.Debug("line done", logger.DurationFields("repl.line", time.Since(lc.StartTime)))
}

// completeLine completes the trailing word against registered command
// names. liner replaces the whole line, so matches keep the prefix.
func (h *host) completeLine(line string) []string {
	i := strings.LastIndexAny(line, " |;([{")
	head, word := "", line
	if i >= 0 {
		head, word = line[:i+1], line[i+1:]
	}
	var out []string
	for _, name := range h.es.CommandNames() {
		if strings.HasPrefix(name, word) {
			out = append(out, head+name)
		}
	}
	return out
}

// historyPath returns where REPL history persists, or "" when no home
// directory is available.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".shale_history")
}

func (h *host) writeHistory(ln *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		h.log.WithError(err).Warn("cannot persist history", logger.Fields("path", path))
		return
	}
	defer f.Close()
	_, _ = ln.WriteHistory(f)
}

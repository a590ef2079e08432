// Package pipeline drives a source program through every phase:
// lex, parse, analyse and, when all of those are clean, interpret.
package pipeline

import (
	"log/slog"

	"github.com/google/uuid"

	"minipas/pkg/compiler"
	"minipas/pkg/interp"
)

// Stage is the last phase a run reached.
type Stage int

const (
	StageLex Stage = iota
	StageParse
	StageAnalyze
	StageRun
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageAnalyze:
		return "analyze"
	case StageRun:
		return "run"
	}
	return "unknown"
}

type Options struct {
	ParserLimits compiler.Limits
	Interp       interp.Options
	CheckOnly    bool // stop after semantic analysis
	Logger       *slog.Logger
}

// Report is everything one run produced.
type Report struct {
	RunID       string
	Stage       Stage
	Program     *compiler.Program // nil after lexical errors; may be partial after syntax errors
	Symbols     *compiler.SymbolTable
	Diagnostics compiler.Diagnostics
	State       interp.State
	Summary     string
	Err         error // runtime error, nil unless Stage is StageRun
}

// OK reports whether the run finished without diagnostics or runtime error.
func (r *Report) OK() bool {
	return len(r.Diagnostics) == 0 && r.Err == nil
}

// Run lexes src and continues with RunTokens.
func Run(src string, opts Options) *Report {
	return RunTokens(compiler.Lex(src), src, opts)
}

// RunTokens runs every phase after lexing. src is used for diagnostic
// snippets only and may be empty.
func RunTokens(tokens []compiler.Token, src string, opts Options) *Report {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	rep := &Report{RunID: uuid.NewString(), Stage: StageLex}
	log = log.With("run_id", rep.RunID)

	prog, diags, syms := compiler.ParseTokens(tokens, src, opts.ParserLimits)
	rep.Program, rep.Symbols = prog, syms
	if len(diags) > 0 {
		if diags[0].Kind != compiler.LexicalError {
			rep.Stage = StageParse
		}
		rep.Diagnostics = diags
		log.Debug("stopped with diagnostics", "stage", rep.Stage.String(), "count", len(diags))
		return rep
	}
	rep.Stage = StageParse
	if prog == nil {
		return rep
	}

	rep.Stage = StageAnalyze
	rep.Diagnostics = compiler.Analyze(prog, syms)
	if len(rep.Diagnostics) > 0 {
		rep.Diagnostics.FillSource(src)
		log.Debug("stopped with diagnostics", "stage", rep.Stage.String(), "count", len(rep.Diagnostics))
		return rep
	}
	if opts.CheckOnly {
		return rep
	}

	rep.Stage = StageRun
	iopts := opts.Interp
	if iopts.Logger == nil {
		iopts.Logger = log
	}
	rep.State, rep.Err = interp.New(syms, iopts).Run(prog)
	rep.Summary = interp.Summary(rep.State, rep.Err)
	if rep.Err != nil {
		log.Debug("runtime error", "err", rep.Err)
	} else {
		log.Debug("run complete", "program", prog.Name, "variables", len(rep.State))
	}
	return rep
}

// Package ql is the embedding surface of the Quill scripting engine. A host
// makes a Service, registers the functions its scripts may call, and runs
// source through it.
package ql

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/quill-lang/quill/ast"
	"github.com/quill-lang/quill/dialect"
	"github.com/quill-lang/quill/evaluator"
	"github.com/quill-lang/quill/object"
	"github.com/quill-lang/quill/optimizer"
	"github.com/quill-lang/quill/parser"
	"github.com/quill-lang/quill/registry"
	"github.com/quill-lang/quill/signature"
)

const cacheSize = 128

// A Service is one configured instance of the engine: a dialect, a function
// registry, and a cache of compiled programs. Compiling and evaluating are
// safe to interleave; one evaluation runs on one goroutine at a time, but
// separate evaluations of the same compiled program can run concurrently,
// each on its own scope, because evaluation never writes to the tree.
type Service struct {
	dcfg      dialect.Config
	reg       *registry.Registry
	cache     *lru.Cache[string, *ast.Program]
	logger    zerolog.Logger
	interrupt func() bool
	optimize  bool
}

func NewService(dcfg dialect.Config) *Service {
	cache, _ := lru.New[string, *ast.Program](cacheSize)
	return &Service{
		dcfg:     dcfg,
		reg:      registry.New(),
		cache:    cache,
		logger:   zerolog.Nop(),
		optimize: true,
	}
}

// NewServiceFromYAML configures the dialect from YAML, for hosts that keep
// their script dialect in a config file.
func NewServiceFromYAML(data []byte) (*Service, error) {
	dcfg, err := dialect.FromYAML(data)
	if err != nil {
		return nil, err
	}
	return NewService(dcfg), nil
}

// SetLogger turns on debug logging of the pipeline stages. The default
// logger discards everything.
func (s *Service) SetLogger(logger zerolog.Logger) {
	s.logger = logger
}

// SetInterrupt installs a hook polled during every evaluation this Service
// starts. When it returns true, the running script stops with an
// ExecutionInterrupted error.
func (s *Service) SetInterrupt(fn func() bool) {
	s.interrupt = fn
}

// SetOptimize switches the optimizer pass on or off. It is on by default.
func (s *Service) SetOptimize(on bool) {
	s.optimize = on
	s.cache.Purge()
}

// RegisterFunction makes a native function callable from scripts. Several
// overloads may share a name if their signatures differ; registering with
// the signature of an existing overload replaces it.
func (s *Service) RegisterFunction(name string, sig signature.Signature, fn registry.Native) {
	s.reg.Add(registry.Function{Name: name, Sig: sig, Native: fn})
}

// NewScope gives an empty scope for a run. Seed it with Set and ToObject,
// and read results back with Get and FromObject.
func (s *Service) NewScope() *object.Scope {
	return object.NewScope()
}

// Compile tokenizes, parses, and optionally optimizes a script. The error,
// when not nil, is a *CompileError. Compiled programs are cached: compiling
// the same source again is a lookup.
func (s *Service) Compile(sourceName, code string) (*ast.Program, error) {
	key := sourceName + "\x00" + code
	if program, ok := s.cache.Get(key); ok {
		s.logger.Debug().Str("source", sourceName).Msg("compile cache hit")
		return program, nil
	}

	p := parser.NewWithDialect(sourceName, code, s.dcfg)
	program := p.ParseProgram()
	if len(p.Errors) > 0 {
		s.logger.Debug().Str("source", sourceName).Int("errors", len(p.Errors)).Msg("compilation failed")
		return nil, &CompileError{Errors: p.Errors}
	}

	if s.optimize {
		program = optimizer.Optimize(program, s.dcfg)
	}

	s.cache.Add(key, program)
	s.logger.Debug().Str("source", sourceName).Int("statements", len(program.Statements)).
		Bool("optimized", s.optimize).Msg("compiled")
	return program, nil
}

// Evaluate runs a compiled program against a scope. The result is the value
// of the program's last statement, or of the 'return' that ended it. The
// error, when not nil, is a *RuntimeError. Functions the script defines with
// 'fn' live for this evaluation only.
func (s *Service) Evaluate(program *ast.Program, scope *object.Scope) (object.Object, error) {
	ev := evaluator.New(s.reg.Clone(), s.dcfg)
	if s.interrupt != nil {
		ev.SetInterrupt(s.interrupt)
	}
	result := ev.Eval(program, scope)
	if err, ok := result.(*object.Error); ok {
		s.logger.Debug().Str("error", err.ErrorId).Msg("evaluation failed")
		return nil, &RuntimeError{Err: err}
	}
	return result, nil
}

// Run compiles and evaluates in one step, on a fresh scope.
func (s *Service) Run(sourceName, code string) (object.Object, error) {
	program, err := s.Compile(sourceName, code)
	if err != nil {
		return nil, err
	}
	return s.Evaluate(program, s.NewScope())
}

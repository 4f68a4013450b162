package filter

import (
	"context"

	"github.com/s0up4200/elnk/elnk"
)

// Filter defines the basic interface for link filters
type Filter interface {
	// Evaluate checks if a link matches the filter criteria
	Evaluate(link elnk.Link) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Match is Evaluate with the evaluation error reported
	Match(link elnk.Link) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// Evaluator evaluates filters against links
type Evaluator interface {
	// Evaluate returns the links matching filter, in input order
	Evaluate(ctx context.Context, filter CompiledFilter, links []elnk.Link) ([]elnk.Link, error)
}

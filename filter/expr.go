package filter

import (
	"maps"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/elnk/elnk"
)

// DefaultCacheSize is the number of compiled expressions kept by NewManager
const DefaultCacheSize = 100

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	extra      map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.customFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		customFuncs: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.helperFuncs = createHelperFunctions()
	maps.Copy(c.helperFuncs, c.customFuncs)

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	customFuncs map[string]any
	cache       *lruCache[CompiledFilter]
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Link fields are only known at run time
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		extra:      c.customFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate reports whether link matches. Links the expression fails on do not match.
func (f *exprFilter) Evaluate(link elnk.Link) bool {
	ok, err := f.Match(link)
	return err == nil && ok
}

// Match evaluates the filter against a link
func (f *exprFilter) Match(link elnk.Link) (bool, error) {
	env := createRuntimeEnvironment(link)
	maps.Copy(env, f.extra)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, LinkID: link.ID, Err: err}
	}

	// AsBool guarantees the result type
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 32)
	addHelperFunctions(funcs)
	addLinkHelpers(funcs, elnk.Link{})
	return funcs
}

// addHelperFunctions adds all link-independent helper functions to env
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	env["now"] = time.Now
}

// addLinkHelpers adds the helpers bound to one link
func addLinkHelpers(env map[string]any, link elnk.Link) {
	target := link.Target()
	host := destinationHost(target)

	env["hasDomain"] = func(domain string) bool {
		domain = strings.ToLower(strings.TrimPrefix(domain, "www."))
		h := strings.TrimPrefix(host, "www.")
		return h == domain || strings.HasSuffix(h, "."+domain)
	}
	env["aliasMatches"] = func(pattern string) bool {
		ok, err := path.Match(pattern, link.Alias)
		return err == nil && ok
	}
	env["hasQuery"] = func(key string) bool {
		u, err := url.Parse(target)
		return err == nil && u.Query().Has(key)
	}
	env["isCustomDomain"] = func() bool {
		return !link.DomainID.IsZero()
	}
	env["olderThan"] = func(days int) bool {
		return !link.CreatedAt.IsZero() && link.CreatedAt.Before(time.Now().AddDate(0, 0, -days))
	}
}

// createRuntimeEnvironment creates the runtime environment for filter evaluation
func createRuntimeEnvironment(link elnk.Link) map[string]any {
	env := make(map[string]any, 40)

	addHelperFunctions(env)
	addLinkHelpers(env, link)

	env["Link"] = link

	// Direct link properties for convenience
	env["ID"] = link.ID.String()
	env["Alias"] = link.Alias
	env["Destination"] = link.Target()
	env["Host"] = destinationHost(link.Target())
	env["Type"] = link.Type
	env["Title"] = link.Title
	env["Description"] = link.Description
	env["Clicks"] = int(link.Clicks)
	env["DomainID"] = link.DomainID.String()
	env["ProjectID"] = link.ProjectID.String()
	env["CreatedAt"] = link.CreatedAt.Time
	env["UpdatedAt"] = link.UpdatedAt.Time

	return env
}

func destinationHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

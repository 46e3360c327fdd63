// Package manifest compiles contract manifests: the CUE declarations of a
// contract's callable surface that ship next to each compiled-module
// binding. The harness checks them against the live dispatch tables before a
// scenario runs, so a manifest that drifted from its module fails loudly
// instead of driving calls the module cannot answer.
package manifest

import (
	_ "embed"
	"fmt"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource []byte

// Circuit is one declared circuit of a contract.
type Circuit struct {
	Name   string
	Pure   bool
	Args   []string // value kinds, in call order
	Result string
}

// Constructor declares the deployment argument kinds.
type Constructor struct {
	Args []string
}

// Manifest is the compiled declaration of one contract's surface.
type Manifest struct {
	Contract    string
	Constructor Constructor
	Circuits    []Circuit
}

// Circuit returns the declaration for name.
func (m *Manifest) Circuit(name string) (Circuit, bool) {
	for _, c := range m.Circuits {
		if c.Name == name {
			return c, true
		}
	}
	return Circuit{}, false
}

// PureNames returns the declared pure circuit names in sorted order.
func (m *Manifest) PureNames() []string {
	return m.names(true)
}

// ImpureNames returns the declared impure circuit names in sorted order.
func (m *Manifest) ImpureNames() []string {
	return m.names(false)
}

func (m *Manifest) names(pure bool) []string {
	var names []string
	for _, c := range m.Circuits {
		if c.Pure == pure {
			names = append(names, c.Name)
		}
	}
	slices.Sort(names)
	return names
}

// CompileBytes parses CUE manifest source, checks it against the embedded
// schema, and extracts the declaration.
func CompileBytes(src []byte, filename string) (*Manifest, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	def := schema.LookupPath(cue.ParsePath("#Manifest"))

	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(unified)
}

// Compile extracts a Manifest from a CUE value that already satisfies the
// schema.
func Compile(v cue.Value) (*Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Manifest{}

	contract, err := v.LookupPath(cue.ParsePath("contract")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	m.Contract = contract

	ctorArgs := v.LookupPath(cue.ParsePath("constructor.args"))
	if ctorArgs.Exists() {
		kinds, err := kindList(ctorArgs)
		if err != nil {
			return nil, err
		}
		m.Constructor.Args = kinds
	}

	circuitsVal := v.LookupPath(cue.ParsePath("circuits"))
	if !circuitsVal.Exists() {
		return nil, &CompileError{
			Field:   "circuits",
			Message: "circuits are required",
			Pos:     v.Pos(),
		}
	}
	iter, err := circuitsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	seen := make(map[string]bool)
	for iter.Next() {
		c, err := compileCircuit(iter.Value())
		if err != nil {
			return nil, err
		}
		if seen[c.Name] {
			return nil, &CompileError{
				Field:   "circuits",
				Message: fmt.Sprintf("duplicate circuit %q", c.Name),
				Pos:     iter.Value().Pos(),
			}
		}
		seen[c.Name] = true
		m.Circuits = append(m.Circuits, c)
	}
	if len(m.Circuits) == 0 {
		return nil, &CompileError{
			Field:   "circuits",
			Message: "at least one circuit is required",
			Pos:     v.Pos(),
		}
	}

	return m, nil
}

func compileCircuit(v cue.Value) (Circuit, error) {
	var c Circuit

	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return c, formatCUEError(err)
	}
	c.Name = name

	pureVal := v.LookupPath(cue.ParsePath("pure"))
	if d, ok := pureVal.Default(); ok {
		pureVal = d
	}
	pure, err := pureVal.Bool()
	if err != nil {
		return c, formatCUEError(err)
	}
	c.Pure = pure

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		c.Args, err = kindList(argsVal)
		if err != nil {
			return c, err
		}
	}

	result, err := v.LookupPath(cue.ParsePath("result")).String()
	if err != nil {
		return c, formatCUEError(err)
	}
	c.Result = result

	return c, nil
}

func kindList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var kinds []string
	for iter.Next() {
		kind, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// CompileError reports a manifest compilation problem with its source
// position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}

// Package ctable builds and queries the data-constructor table: for each
// declared data type, the map from constructor name to the scheme of its
// constructor function (args... -> DataType params...).
package ctable

import (
	"fmt"

	"github.com/ziontype/zinfer/internal/ast"
	zerrors "github.com/ziontype/zinfer/internal/errors"
	"github.com/ziontype/zinfer/internal/ident"
	"github.com/ziontype/zinfer/internal/types"
)

// CtorInfo is one constructor's shape: its owning type, its declared
// argument types (in the type's own parameters), and its position among
// siblings (used by the pattern-match compiler's Ctors lattice node to
// know when a set of constructor tags is "all of them").
type CtorInfo struct {
	Name      string
	TypeName  string
	ArgTypes  []types.Type
	Index     int
	Arity     int
	TypeDecl  *ast.TypeDecl
}

// Table maps a constructor name directly to its CtorInfo, and a type name
// to the ordered list of its constructors' names (the sibling set the
// exhaustiveness checker needs).
type Table struct {
	ctors     map[string]*CtorInfo
	siblings  map[string][]string // type name -> ordered ctor names
}

// New builds an empty table.
func New() *Table {
	return &Table{
		ctors:    make(map[string]*CtorInfo),
		siblings: make(map[string][]string),
	}
}

// AddTypeDecl registers every constructor declared by decl. resolve
// resolves an ast type-expression (opaque in the ast package) into a
// *types.Type; the caller supplies it since ast cannot import types.
func (t *Table) AddTypeDecl(decl *ast.TypeDecl, resolve func(interface{}) types.Type) error {
	typeName := ident.Normalize(decl.ID.Name)
	var names []string
	for i, ctor := range decl.Ctors {
		name := ident.Normalize(ctor.Name.Name)
		if _, exists := t.ctors[name]; exists {
			return zerrors.Wrap(zerrors.New(zerrors.SCP002, ctor.Name.Loc,
				fmt.Sprintf("duplicate data constructor: %s", ctor.Name.Name)))
		}
		argTypes := make([]types.Type, len(ctor.Args))
		for j, a := range ctor.Args {
			argTypes[j] = resolve(a)
		}
		t.ctors[name] = &CtorInfo{
			Name:     name,
			TypeName: typeName,
			ArgTypes: argTypes,
			Index:    i,
			Arity:    len(argTypes),
			TypeDecl: decl,
		}
		names = append(names, name)
	}
	t.siblings[typeName] = names
	return nil
}

// Lookup returns the CtorInfo for a constructor name.
func (t *Table) Lookup(name string) (*CtorInfo, bool) {
	info, ok := t.ctors[ident.Normalize(name)]
	return info, ok
}

// Siblings returns every constructor name declared by the same data type
// as name, in declaration order, or nil if name is unknown.
func (t *Table) Siblings(name string) []string {
	info, ok := t.ctors[ident.Normalize(name)]
	if !ok {
		return nil
	}
	return t.siblings[info.TypeName]
}

// Names returns every registered constructor name, in no particular
// order - used by callers that want to print or inspect the whole
// table (e.g. a SHOW_ENV debug dump) rather than look up one name.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.ctors))
	for name := range t.ctors {
		names = append(names, name)
	}
	return names
}

// CtorsOfType returns every constructor name declared by typeName
// itself, in declaration order, or nil if typeName declares no
// constructors the table knows about. Unlike Siblings, which starts from
// a constructor name, this starts from the owning type's own name - the
// pattern-match exhaustiveness checker only ever has the scrutinee's
// type name on hand, never one of its constructors.
func (t *Table) CtorsOfType(typeName string) []string {
	return t.siblings[ident.Normalize(typeName)]
}

// ExtendEnv extends env with the curried function scheme of every
// constructor of arity greater than zero, so `Some` used as a bare Var
// (applied to its argument the same way any other function is) resolves
// through the ordinary environment lookup path rather than needing
// special-casing at every call site; nullary constructors are already
// handled directly by the constraint generator's own Ctors lookup and
// are left out here to avoid a redundant binding.
func (t *Table) ExtendEnv(env *types.Env) *types.Env {
	out := env
	for name, info := range t.ctors {
		if info.Arity == 0 {
			continue
		}
		scheme, _ := t.Scheme(name)
		out = out.Extend(name, scheme)
	}
	return out
}

// IsComplete reports whether covered contains every sibling constructor
// of head — the base case the pattern-match lattice's Ctors-equals-AllOf
// reduction relies on.
func (t *Table) IsComplete(head string, covered map[string]bool) bool {
	sibs := t.Siblings(head)
	if sibs == nil {
		return false
	}
	for _, s := range sibs {
		if !covered[s] {
			return false
		}
	}
	return true
}

// Scheme builds the scheme of the constructor function itself:
// arg1 -> arg2 -> ... -> TypeName(params...), quantified over the type's
// declared parameters.
func (t *Table) Scheme(ctorName string) (*types.Scheme, bool) {
	info, ok := t.ctors[ident.Normalize(ctorName)]
	if !ok {
		return nil, false
	}
	params := make([]types.Type, len(info.TypeDecl.Params))
	vars := make([]string, len(info.TypeDecl.Params))
	for i, p := range info.TypeDecl.Params {
		params[i] = &types.TyVar{Name: p.Name}
		vars[i] = p.Name
	}
	result := types.Type(&types.TyApp{Operator: info.TypeName, Args: params})
	if len(params) == 0 {
		result = &types.TyId{Name: info.TypeName}
	}
	fnType := result
	for i := len(info.ArgTypes) - 1; i >= 0; i-- {
		fnType = types.Arrow(info.ArgTypes[i], fnType)
	}
	return &types.Scheme{Vars: vars, Type: fnType}, true
}

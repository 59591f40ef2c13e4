package ast

import (
	"encoding/json"
	"fmt"
)

// Print produces a deterministic JSON representation of an AST node.
func Print(node Node) string {
	if node == nil {
		return "null"
	}
	data, err := json.MarshalIndent(simplify(node), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// Compact returns a compact single-line JSON representation.
func Compact(node Node) string {
	data, err := json.Marshal(simplify(node))
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

func simplify(node interface{}) interface{} {
	if node == nil {
		return nil
	}
	switch n := node.(type) {
	case *Module:
		m := map[string]interface{}{"type": "Module", "name": n.Name}
		if len(n.Decls) > 0 {
			decls := make([]interface{}, len(n.Decls))
			for i, d := range n.Decls {
				decls[i] = simplify(d)
			}
			m["decls"] = decls
		}
		return m

	case *Decl:
		return map[string]interface{}{"type": "Decl", "name": n.Name.Name, "value": simplify(n.Value)}

	case *Literal:
		return map[string]interface{}{"type": "Literal", "kind": litKindString(n.Kind), "value": n.Value}

	case *Var:
		return map[string]interface{}{"type": "Var", "name": n.ID.Name}

	case *Lambda:
		return map[string]interface{}{"type": "Lambda", "param": n.Param.Name, "body": simplify(n.Body)}

	case *Application:
		return map[string]interface{}{"type": "Application", "fn": simplify(n.Fn), "arg": simplify(n.Arg)}

	case *Let:
		return map[string]interface{}{"type": "Let", "name": n.Name.Name, "value": simplify(n.Value), "body": simplify(n.Body)}

	case *Fix:
		return map[string]interface{}{"type": "Fix", "name": n.Name.Name, "body": simplify(n.Body)}

	case *Conditional:
		return map[string]interface{}{"type": "Conditional", "cond": simplify(n.Cond), "then": simplify(n.Then), "else": simplify(n.Else)}

	case *Block:
		stmts := make([]interface{}, len(n.Statements))
		for i, s := range n.Statements {
			stmts[i] = simplify(s)
		}
		return map[string]interface{}{"type": "Block", "statements": stmts}

	case *While:
		return map[string]interface{}{"type": "While", "cond": simplify(n.Cond), "body": simplify(n.Body)}

	case *Break:
		return map[string]interface{}{"type": "Break"}

	case *Continue:
		return map[string]interface{}{"type": "Continue"}

	case *Return:
		m := map[string]interface{}{"type": "Return"}
		if n.Value != nil {
			m["value"] = simplify(n.Value)
		}
		return m

	case *Tuple:
		elems := make([]interface{}, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = simplify(e)
		}
		return map[string]interface{}{"type": "Tuple", "elements": elems}

	case *TupleDeref:
		return map[string]interface{}{"type": "TupleDeref", "tuple": simplify(n.Tuple), "index": n.Index}

	case *As:
		return map[string]interface{}{"type": "As", "value": simplify(n.Value), "force": n.Force}

	case *Match:
		arms := make([]interface{}, len(n.Arms))
		for i, a := range n.Arms {
			arms[i] = map[string]interface{}{"predicate": simplify(a.Predicate), "result": simplify(a.Result)}
		}
		return map[string]interface{}{"type": "Match", "scrutinee": simplify(n.Scrutinee), "arms": arms}

	case *Builtin:
		args := make([]interface{}, len(n.Args))
		for i, a := range n.Args {
			args[i] = simplify(a)
		}
		return map[string]interface{}{"type": "Builtin", "name": n.Name.Name, "args": args}

	case *Sizeof:
		return map[string]interface{}{"type": "Sizeof"}

	case *StaticPrint:
		return map[string]interface{}{"type": "StaticPrint", "expr": simplify(n.Expr)}

	case *Irrefutable:
		m := map[string]interface{}{"type": "Irrefutable"}
		if n.Name != nil {
			m["name"] = n.Name.Name
		}
		return m

	case *TuplePredicate:
		parts := make([]interface{}, len(n.Parts))
		for i, p := range n.Parts {
			parts[i] = simplify(p)
		}
		m := map[string]interface{}{"type": "TuplePredicate", "parts": parts}
		if n.Name != nil {
			m["name"] = n.Name.Name
		}
		return m

	case *CtorPredicate:
		parts := make([]interface{}, len(n.Parts))
		for i, p := range n.Parts {
			parts[i] = simplify(p)
		}
		m := map[string]interface{}{"type": "CtorPredicate", "ctor": n.Ctor.Name, "parts": parts}
		if n.Name != nil {
			m["name"] = n.Name.Name
		}
		return m

	case *LiteralPredicate:
		return map[string]interface{}{"type": "LiteralPredicate", "value": n.Value}

	default:
		return map[string]interface{}{"type": fmt.Sprintf("%T", node), "_note": "not handled by printer"}
	}
}

func litKindString(k LitKind) string {
	switch k {
	case IntLit:
		return "Int"
	case FloatLit:
		return "Float"
	case StringLit:
		return "String"
	case BoolLit:
		return "Bool"
	case UnitLit:
		return "Unit"
	default:
		return "Unknown"
	}
}

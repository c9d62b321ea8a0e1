package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// walkForFunctions recursively walks the AST and calls visit for every
// function call, outermost first.
func walkForFunctions(expr hclsyntax.Expression, visit func(*hclsyntax.FunctionCallExpr)) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		visit(e)
		for _, arg := range e.Args {
			walkForFunctions(arg, visit)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, visit)
		walkForFunctions(e.RHS, visit)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, visit)
		walkForFunctions(e.TrueResult, visit)
		walkForFunctions(e.FalseResult, visit)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, visit)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFunctions(part, visit)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(e.Wrapped, visit)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFunctions(item, visit)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkForFunctions(item.KeyExpr, visit)
			walkForFunctions(item.ValueExpr, visit)
		}
	case *hclsyntax.ObjectConsKeyExpr:
		walkForFunctions(e.Wrapped, visit)
	case *hclsyntax.ForExpr:
		walkForFunctions(e.CollExpr, visit)
		walkForFunctions(e.KeyExpr, visit)
		walkForFunctions(e.ValExpr, visit)
		walkForFunctions(e.CondExpr, visit)
	case *hclsyntax.IndexExpr:
		walkForFunctions(e.Collection, visit)
		walkForFunctions(e.Key, visit)
	case *hclsyntax.SplatExpr:
		walkForFunctions(e.Source, visit)
		walkForFunctions(e.Each, visit)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, visit)
	}
}

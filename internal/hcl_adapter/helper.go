package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional expression attributes with
// zero-width placeholder expressions, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// definedOrNil returns expr when it appears in the source, nil otherwise.
func definedOrNil(ctx context.Context, expr hcl.Expression, attrName string) hcl.Expression {
	if isExprDefined(ctx, expr, attrName) {
		return expr
	}
	return nil
}

// bodyRange returns the source range of a block body.
func bodyRange(body hcl.Body) hcl.Range {
	if body == nil {
		return hcl.Range{}
	}
	if b, ok := body.(*hclsyntax.Body); ok {
		return b.SrcRange
	}
	return body.MissingItemRange()
}

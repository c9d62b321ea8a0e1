// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pohcalc/internal/field"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter binds the raw expressions of the model to Go values.
type Converter interface {
	// FieldExpr turns a descriptor expression into a field.Expr evaluated
	// against session state. A nil or absent expression yields nil.
	// Calls to unknown functions are reported here, at load time.
	FieldExpr(expr hcl.Expression) (field.Expr, error)

	// CheckRefs reports field references, collected by FieldExpr, for which
	// exists returns false.
	CheckRefs(exists func(id string) bool) error
}

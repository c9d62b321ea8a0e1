package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Inputs    []*FieldBlock    `hcl:"input,block"`
	Outputs   []*FieldBlock    `hcl:"output,block"`
	Pages     []*PageBlock     `hcl:"page,block"`
	Aircraft  []*AircraftBlock `hcl:"aircraft,block"`
	Scenarios []*ScenarioBlock `hcl:"scenario,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

// --- Fields ---

// FieldBlock represents an `input` or `output` block. Pointer attributes
// are nil when omitted so that same/link targets can fill them in.
type FieldBlock struct {
	ID string `hcl:"id,label"`

	Kind    *string        `hcl:"kind,optional"`
	Format  *string        `hcl:"format,optional"`
	Min     hcl.Expression `hcl:"min,optional"`
	Max     hcl.Expression `hcl:"max,optional"`
	Default hcl.Expression `hcl:"default,optional"`

	Increment *float64 `hcl:"increment,optional"`
	MaxLen    *int     `hcl:"max_len,optional"`
	Upper     *bool    `hcl:"upper,optional"`
	Choices   []string `hcl:"choices,optional"`

	Invalid     *string           `hcl:"invalid,optional"`
	Color       *string           `hcl:"color,optional"`
	Background  *string           `hcl:"background,optional"`
	TableErrors map[string]string `hcl:"table_errors,optional"`
	OnChange    *string           `hcl:"on_change,optional"`

	Same       *string `hcl:"same,optional"`
	Link       *string `hcl:"link,optional"`
	Page       *string `hcl:"page,optional"`
	ErrorGroup *string `hcl:"error_group,optional"`
	Controller *string `hcl:"controller,optional"`

	Body hcl.Body `hcl:",body"`
}

// --- Pages ---

// PageBlock represents a `page` block and its ordered `compute` blocks.
type PageBlock struct {
	Name         string          `hcl:"name,label"`
	Title        *string         `hcl:"title,optional"`
	Parent       *string         `hcl:"parent,optional"`
	Computations []*ComputeBlock `hcl:"compute,block"`
}

// ComputeBlock binds a registered computation to its fields.
type ComputeBlock struct {
	Fn         string   `hcl:"fn"`
	Inputs     []string `hcl:"inputs,optional"`
	Outputs    []string `hcl:"outputs,optional"`
	Precedents []string `hcl:"precedents,optional"`
	Refreshes  []string `hcl:"refreshes,optional"`
}

// --- Aircraft ---

// AircraftBlock represents an `aircraft` block.
type AircraftBlock struct {
	ID        string             `hcl:"id,label"`
	Name      *string            `hcl:"name,optional"`
	Scalars   map[string]float64 `hcl:"scalars,optional"`
	Stations  []*StationBlock    `hcl:"station,block"`
	Envelopes []*EnvelopeBlock   `hcl:"envelope,block"`
	Tables    []*TableBlock      `hcl:"table,block"`
	Ext       map[string]string  `hcl:"ext,optional"`
}

// StationBlock is a loading station.
type StationBlock struct {
	Name string   `hcl:"name,label"`
	Min  *float64 `hcl:"min,optional"`
	Max  float64  `hcl:"max"`
	Arm  float64  `hcl:"arm"`
}

// EnvelopeBlock is a CG limit line given as [weight, station] pairs.
type EnvelopeBlock struct {
	Name   string      `hcl:"name,label"`
	Points [][]float64 `hcl:"points"`
}

// TableBlock is a POH table. Data is decoded separately because its depth
// depends on the number of parameters.
type TableBlock struct {
	ID         string         `hcl:"id,label"`
	Name       *string        `hcl:"name,optional"`
	Parameters []string       `hcl:"parameters"`
	Data       hcl.Expression `hcl:"data"`
}

// --- Scenarios ---

// ScenarioBlock is a regression scenario. Inputs and Expect are kept as raw
// expressions so the declared order of their keys survives.
type ScenarioBlock struct {
	Name        string         `hcl:"name,label"`
	Description *string        `hcl:"description,optional"`
	Aircraft    *string        `hcl:"aircraft,optional"`
	Inputs      hcl.Expression `hcl:"inputs,optional"`
	Page        *string        `hcl:"page,optional"`
	Expect      hcl.Expression `hcl:"expect"`
}

// deref returns the pointed-to value or the zero value.
func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pohcalc/internal/table"
)

// Model is the unified, format-agnostic representation of a calculator
// configuration. Slices keep declaration order across all files.
type Model struct {
	Fields    []*Field
	Pages     []*Page
	Aircraft  []*Aircraft
	Scenarios []*Scenario
}

// --- Fields ---

// Field is the format-agnostic representation of an `input` or `output`
// block. Empty strings and zero numbers mean "not set".
type Field struct {
	ID    string
	Input bool

	Kind   string
	Format string
	// Min, Max and Default are nil when absent.
	Min     hcl.Expression
	Max     hcl.Expression
	Default hcl.Expression

	Increment float64
	MaxLen    int
	Upper     bool
	Choices   []string

	Invalid     string
	Color       string
	Background  string
	TableErrors map[string]string
	OnChange    string

	Same       string
	Link       string
	Page       string
	ErrorGroup string
	Controller string

	Source hcl.Range
}

// --- Pages ---

// Page is the format-agnostic representation of a `page` block.
type Page struct {
	Name         string
	Title        string
	Parent       string
	Computations []*Compute
}

// Compute is one `compute` block of a page.
type Compute struct {
	Fn         string
	Inputs     []string
	Outputs    []string
	Precedents []string
	Refreshes  []string
}

// --- Aircraft ---

// Aircraft is the format-agnostic representation of an `aircraft` block.
type Aircraft struct {
	ID        string
	Name      string
	Scalars   map[string]float64
	Stations  []*Station
	Envelopes []*Envelope
	Tables    []*Table
	Ext       map[string]string
}

// Station is a loading station of an aircraft.
type Station struct {
	Name string
	Min  float64
	Max  float64
	Arm  float64
}

// Envelope is a CG limit line as (weight, station) points.
type Envelope struct {
	Name   string
	Points [][2]float64
}

// Table is a decoded POH table.
type Table struct {
	ID     string
	Name   string
	Params []string
	Root   []table.Entry
}

// --- Scenarios ---

// Scenario is a regression case: inputs applied in order, then a page (or
// every page) computed and the expectations checked.
type Scenario struct {
	Name        string
	Description string
	Aircraft    string
	Inputs      []Assignment
	Page        string
	Expect      []Assignment
}

// Assignment pairs a field id with a Go scalar (float64, string or bool).
type Assignment struct {
	ID    string
	Value any
}

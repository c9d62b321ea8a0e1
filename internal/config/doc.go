// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package config defines the format-agnostic configuration model of the
// calculator, along with the interfaces (Loader, Converter) for loading it
// from a concrete source.
//
// The model is the single source for the field catalog, the page program,
// the aircraft database and the regression scenarios. It still carries raw
// expressions for the dynamic descriptor attributes (min, max, default);
// the Converter returned by a Loader binds them to session state.
//
// Concrete implementations of the interfaces, such as for HCL, are provided
// in separate packages.
package config

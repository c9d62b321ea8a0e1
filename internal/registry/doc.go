// Package registry provides the central "glue" for the module system.
//
// The Registry stores the mappings between the string names used in the
// configuration (a page's `fn`, an input's `on_change`, functions called from
// `min`/`max`/`default` expressions) and the compiled Go functions that
// implement them. Modules add their functions through the Module interface.
//
// During application startup the registry is validated against the loaded
// configuration so that every name the configuration uses is bound, which
// turns a whole class of runtime errors into start-up errors.
package registry

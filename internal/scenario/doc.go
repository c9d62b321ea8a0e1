// Package scenario replays regression scenarios against fresh sessions.
//
// A scenario selects an aircraft, applies its inputs in declaration order
// through session.Set, computes one page (or every page) and compares the
// expected values with what the session holds. Numbers compare by value,
// booleans by value and strings against either a string value or the text
// an invalid output renders as ("POH", "Input", "-").
package scenario

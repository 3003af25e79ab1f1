// Package fault defines the closed set of fault types the API knows how to
// present to clients, and the classifier that maps any error onto a status
// code and response envelope.
//
// Faults are matched by type, in a fixed precedence order: cast failures,
// duplicate keys, validation failures, invalid and expired tokens, and
// operational AppErrors. Anything else is unexpected: it is reported as a
// generic 500 in production and must be logged in full by the caller.
package fault

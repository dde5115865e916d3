// Package filter holds the options that decide which log records reach which
// diagnostics provider, and the rule selection that applies them.
package filter

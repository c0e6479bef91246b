// Package batch runs one tool operation over several IDs and reports the
// per-ID outcome, so a single failure does not abort the rest.
package batch

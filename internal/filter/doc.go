// Package filter turns structured conditions into SQL WHERE predicates.
//
// A Condition names a column, a comparison Operator and a value. Conditions
// are combined with AND in the order given. Two renderings exist:
//
//   - BuildPredicate renders literal values inline. It is meant for display
//     and logging.
//   - Compile produces a parameterized Predicate with bound arguments and
//     quoted, validated column names. The store only executes compiled
//     predicates.
//
// IN and NOT IN take a non-empty list. Every other operator takes a scalar.
package filter

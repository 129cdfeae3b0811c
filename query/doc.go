// Package query builds dialect independent statement plans from typed
// field accessors.
//
// A plan holds the target table, an optional projection, a predicate tree,
// ordering, pagination and update assignments. The predicate tree is rooted
// at an empty AND group, which imposes no condition. Plans are rendered into
// SQL by package sqlgen.
package query

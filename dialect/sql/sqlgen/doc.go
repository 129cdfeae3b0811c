// Package sqlgen renders query plans into SQL statements with positional
// bind values.
//
// Every bound value is wrapped in a cast to the column type, so drivers do
// not infer parameter types from context:
//
//	g := sqlgen.New(dialect.Postgres)
//	stmt, err := g.Render(plan, sqlgen.Select)
//	// select * from users where age >= cast($1 as bigint) order by id desc fetch next 10 rows only
//
// Keywords are rendered in lower case. Identifiers are not quoted; table and
// column names are validated instead.
package sqlgen

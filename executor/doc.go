// Package executor runs rendered statements asynchronously and returns
// futures of their results.
//
//	exec, err := executor.Open(cfg)
//	if err != nil {
//		return err
//	}
//	defer exec.Close()
//
//	stmt, err := exec.Generator().Render(plan, sqlgen.Select)
//	if err != nil {
//		return err
//	}
//	users, err := executor.QueryAs[User](ctx, exec, stmt).Await(ctx)
//
// Driver failures are returned as *querykit.ExecutionError with the
// violated constraint, if any. Statements are never retried.
package executor

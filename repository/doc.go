// Package repository provides typed CRUD operations for entity structs.
//
//	repo, err := repository.New[User](exec)
//	if err != nil {
//		return err
//	}
//	if _, err := repo.Insert(ctx, &User{Name: "a8m", Age: 30}); err != nil {
//		return err
//	}
//	page, err := repo.Page(ctx, repo.Query().Ge(UserAge, 18).OrderByAsc(UserName), 1, 20)
//
// Operations identified by primary key reject nil and zero keys with
// querykit.ErrNilID. Batch operations run concurrently, bounded by the
// executor batch concurrency, and report a result for every item.
package repository

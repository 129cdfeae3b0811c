package repository

import (
	"context"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/dialect/sql/sqlgen"
	"github.com/syssam/querykit/query"
)

// Page is one page of records together with the total number of matching
// rows.
type Page[E any] struct {
	Records []*E
	// Total is the number of rows matching the query, ignoring pagination.
	Total int64
	// Number is the 1-based page number.
	Number int
	Size   int
	// Pages is the number of pages of the given size.
	Pages int
}

// HasNext reports whether a page follows this one.
func (p *Page[E]) HasNext() bool { return p.Number < p.Pages }

// Page returns page n (1-based) of the given size of the rows matching the
// builder. The count and the page query run concurrently.
func (r *Repository[E]) Page(ctx context.Context, b *query.Builder[E], n, size int) (*Page[E], error) {
	if n < 1 || size < 1 {
		return nil, querykit.NewValidationError("page", querykit.ErrInvalidPage)
	}
	p, err := r.planOf(b)
	if err != nil {
		return nil, err
	}
	counted := p.Clone()
	counted.Order, counted.Limit, counted.Offset = nil, nil, nil
	cstmt, err := r.render(counted, sqlgen.Count)
	if err != nil {
		return nil, err
	}
	paged := p.Clone()
	offset := (n - 1) * size
	paged.Limit, paged.Offset = &size, &offset
	count := r.exec.Count(ctx, cstmt)
	recs := r.find(ctx, paged)

	total, err := count.Await(ctx)
	if err != nil {
		return nil, err
	}
	records, err := recs.Await(ctx)
	if err != nil {
		return nil, err
	}
	pages := int((total + int64(size) - 1) / int64(size))
	return &Page[E]{
		Records: records,
		Total:   total,
		Number:  n,
		Size:    size,
		Pages:   pages,
	}, nil
}

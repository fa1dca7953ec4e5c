package collection

import "context"

// Repository is the CRUD and paged-read contract shared by every backend.
//
// Lookups and removals of a missing record return a nil pointer and a nil
// error. A nil item is rejected with ErrNilItem before any I/O. Errors caused
// by a cancelled or expired context wrap ctx.Err().
type Repository[T any] interface {
	ContainsID(ctx context.Context, id int) (bool, error)
	Contains(ctx context.Context, item *T) (bool, error)
	GetCount(ctx context.Context) (int, error)
	GetAll(ctx context.Context) ([]T, error)
	// Get returns at most count records after skipping skip of them. A
	// non-positive count yields an empty slice without touching the backend
	// and a negative skip is treated as zero.
	Get(ctx context.Context, skip, count int) ([]T, error)
	// GetPage always reports the true total, including when pageSize <= 0 or
	// the page lies past the end of the collection.
	GetPage(ctx context.Context, pageIndex, pageSize int) (Page[T], error)
	GetByID(ctx context.Context, id int) (*T, error)
	Add(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, item *T) (*T, error)
	Remove(ctx context.Context, item *T) (*T, error)
	RemoveByID(ctx context.Context, id int) (*T, error)
}

type EdgeReader[T any] interface {
	GetFirsts(ctx context.Context, count int) ([]T, error)
	GetLasts(ctx context.Context, count int) ([]T, error)
}

func Firsts[T any](ctx context.Context, repo Repository[T], count int) ([]T, error) {
	if edges, ok := repo.(EdgeReader[T]); ok {
		return edges.GetFirsts(ctx, count)
	}
	return repo.Get(ctx, 0, count)
}

func Lasts[T any](ctx context.Context, repo Repository[T], count int) ([]T, error) {
	if edges, ok := repo.(EdgeReader[T]); ok {
		return edges.GetLasts(ctx, count)
	}
	if count <= 0 {
		return []T{}, nil
	}

	total, err := repo.GetCount(ctx)
	if err != nil {
		return nil, err
	}
	skip := total - count
	if skip < 0 {
		skip = 0
	}
	return repo.Get(ctx, skip, count)
}

func ClampSkip(skip int) int {
	if skip < 0 {
		return 0
	}
	return skip
}

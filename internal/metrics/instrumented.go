package metrics

import (
	"context"
	"time"

	"weather-acquisition-go/internal/domain/collection"
)

// Instrumented decorates a repository with per-operation counters and
// latency histograms. Results and errors pass through untouched.
type Instrumented[T any] struct {
	next       collection.Repository[T]
	metrics    *Metrics
	collection string
}

func Instrument[T any](next collection.Repository[T], m *Metrics, collectionName string) *Instrumented[T] {
	return &Instrumented[T]{next: next, metrics: m, collection: collectionName}
}

func (i *Instrumented[T]) Unwrap() collection.Repository[T] {
	return i.next
}

func (i *Instrumented[T]) ContainsID(ctx context.Context, id int) (bool, error) {
	return measure(ctx, i, "contains_id", func() (bool, error) { return i.next.ContainsID(ctx, id) })
}

func (i *Instrumented[T]) Contains(ctx context.Context, item *T) (bool, error) {
	return measure(ctx, i, "contains", func() (bool, error) { return i.next.Contains(ctx, item) })
}

func (i *Instrumented[T]) GetCount(ctx context.Context) (int, error) {
	return measure(ctx, i, "get_count", func() (int, error) { return i.next.GetCount(ctx) })
}

func (i *Instrumented[T]) GetAll(ctx context.Context) ([]T, error) {
	return measure(ctx, i, "get_all", func() ([]T, error) { return i.next.GetAll(ctx) })
}

func (i *Instrumented[T]) Get(ctx context.Context, skip, count int) ([]T, error) {
	return measure(ctx, i, "get", func() ([]T, error) { return i.next.Get(ctx, skip, count) })
}

func (i *Instrumented[T]) GetFirsts(ctx context.Context, count int) ([]T, error) {
	return measure(ctx, i, "get_firsts", func() ([]T, error) { return collection.Firsts(ctx, i.next, count) })
}

func (i *Instrumented[T]) GetLasts(ctx context.Context, count int) ([]T, error) {
	return measure(ctx, i, "get_lasts", func() ([]T, error) { return collection.Lasts(ctx, i.next, count) })
}

func (i *Instrumented[T]) GetPage(ctx context.Context, pageIndex, pageSize int) (collection.Page[T], error) {
	return measure(ctx, i, "get_page", func() (collection.Page[T], error) { return i.next.GetPage(ctx, pageIndex, pageSize) })
}

func (i *Instrumented[T]) GetByID(ctx context.Context, id int) (*T, error) {
	return measure(ctx, i, "get_by_id", func() (*T, error) { return i.next.GetByID(ctx, id) })
}

func (i *Instrumented[T]) Add(ctx context.Context, item *T) (*T, error) {
	return measure(ctx, i, "add", func() (*T, error) { return i.next.Add(ctx, item) })
}

func (i *Instrumented[T]) Update(ctx context.Context, item *T) (*T, error) {
	return measure(ctx, i, "update", func() (*T, error) { return i.next.Update(ctx, item) })
}

func (i *Instrumented[T]) Remove(ctx context.Context, item *T) (*T, error) {
	return measure(ctx, i, "remove", func() (*T, error) { return i.next.Remove(ctx, item) })
}

func (i *Instrumented[T]) RemoveByID(ctx context.Context, id int) (*T, error) {
	return measure(ctx, i, "remove_by_id", func() (*T, error) { return i.next.RemoveByID(ctx, id) })
}

func measure[T, R any](ctx context.Context, i *Instrumented[T], operation string, call func() (R, error)) (R, error) {
	start := time.Now()
	result, err := call()
	i.metrics.RecordOperation(ctx, i.collection, operation, err, time.Since(start))
	return result, err
}

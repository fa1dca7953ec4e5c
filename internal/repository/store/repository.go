package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"weather-acquisition-go/internal/domain/collection"
	"gorm.io/gorm"
)

const idColumn = "id"

// Repository implements collection.Repository over a single gorm model. Every
// write is its own commit; nothing is batched across calls.
type Repository[T any, PT collection.Identity[T]] struct {
	db      *gorm.DB
	name    string
	tracker Tracker[T]
}

type options[T any] struct {
	name    string
	tracker Tracker[T]
}

type Option[T any] func(*options[T])

func WithTracker[T any](tracker Tracker[T]) Option[T] {
	return func(o *options[T]) {
		if tracker != nil {
			o.tracker = tracker
		}
	}
}

func WithName[T any](name string) Option[T] {
	return func(o *options[T]) {
		if name != "" {
			o.name = name
		}
	}
}

func New[T any, PT collection.Identity[T]](db *gorm.DB, opts ...Option[T]) *Repository[T, PT] {
	o := options[T]{
		name:    tableName[T](db),
		tracker: noopTracker[T]{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Repository[T, PT]{db: db, name: o.name, tracker: o.tracker}
}

func (r *Repository[T, PT]) ContainsID(ctx context.Context, id int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where(idColumn+" = ?", id).Count(&count).Error; err != nil {
		return false, r.fail(ctx, "contains id", err)
	}
	return count > 0, nil
}

func (r *Repository[T, PT]) Contains(ctx context.Context, item *T) (bool, error) {
	if item == nil {
		return false, r.nilItem("contains")
	}
	return r.ContainsID(ctx, PT(item).GetID())
}

func (r *Repository[T, PT]) GetCount(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Count(&count).Error; err != nil {
		return 0, r.fail(ctx, "count", err)
	}
	return int(count), nil
}

func (r *Repository[T, PT]) GetAll(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	if err := r.db.WithContext(ctx).Order(idColumn + " asc").Find(&items).Error; err != nil {
		return nil, r.fail(ctx, "get all", err)
	}
	return items, nil
}

func (r *Repository[T, PT]) Get(ctx context.Context, skip, count int) ([]T, error) {
	if count <= 0 {
		return []T{}, nil
	}

	query := r.db.WithContext(ctx).Order(idColumn + " asc")
	if skip = collection.ClampSkip(skip); skip > 0 {
		query = query.Offset(skip)
	}

	items := make([]T, 0)
	if err := query.Limit(count).Find(&items).Error; err != nil {
		return nil, r.fail(ctx, "get", err)
	}
	return items, nil
}

func (r *Repository[T, PT]) GetFirsts(ctx context.Context, count int) ([]T, error) {
	return r.Get(ctx, 0, count)
}

func (r *Repository[T, PT]) GetLasts(ctx context.Context, count int) ([]T, error) {
	if count <= 0 {
		return []T{}, nil
	}

	items := make([]T, 0)
	if err := r.db.WithContext(ctx).Order(idColumn + " desc").Limit(count).Find(&items).Error; err != nil {
		return nil, r.fail(ctx, "get lasts", err)
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func (r *Repository[T, PT]) GetPage(ctx context.Context, pageIndex, pageSize int) (collection.Page[T], error) {
	if pageSize <= 0 {
		total, err := r.GetCount(ctx)
		if err != nil {
			return collection.Page[T]{}, err
		}
		return collection.NewPage[T](nil, total, pageIndex, pageSize), nil
	}

	var page collection.Page[T]
	// Count and slice read the same snapshot.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(new(T)).Count(&total).Error; err != nil {
			return err
		}
		if total == 0 {
			page = collection.NewPage[T](nil, 0, pageIndex, pageSize)
			return nil
		}

		// Past the end, including offsets that would overflow int.
		if pageIndex > 0 && (pageIndex > (math.MaxInt-1)/pageSize || pageIndex*pageSize >= int(total)) {
			page = collection.NewPage[T](nil, int(total), pageIndex, pageSize)
			return nil
		}

		query := tx.Order(idColumn + " asc")
		if pageIndex > 0 {
			query = query.Offset(pageIndex * pageSize)
		}

		items := make([]T, 0, min(pageSize, int(total)))
		if err := query.Limit(pageSize).Find(&items).Error; err != nil {
			return err
		}
		page = collection.NewPage(items, int(total), pageIndex, pageSize)
		return nil
	})
	if err != nil {
		return collection.Page[T]{}, r.fail(ctx, "get page", err)
	}
	return page, nil
}

// GetByID always reads the store so it agrees with ContainsID; the tracker
// only records what was loaded.
func (r *Repository[T, PT]) GetByID(ctx context.Context, id int) (*T, error) {
	item := new(T)
	err := r.db.WithContext(ctx).Where(idColumn+" = ?", id).Take(item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.tracker.Delete(id)
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(ctx, "get by id", err)
	}

	r.tracker.Set(id, item)
	return item, nil
}

// Add returns the same pointer it was given, with the store-assigned id set.
func (r *Repository[T, PT]) Add(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, r.nilItem("add")
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, r.fail(ctx, "add", err)
	}

	r.tracker.Set(PT(item).GetID(), item)
	return item, nil
}

func (r *Repository[T, PT]) Update(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, r.nilItem("update")
	}

	id := PT(item).GetID()
	if id == 0 {
		return nil, fmt.Errorf("%s update: %w", r.name, collection.ErrStaleRecord)
	}

	result := r.db.WithContext(ctx).Model(item).Select("*").Updates(item)
	if result.Error != nil {
		return nil, r.fail(ctx, "update", result.Error)
	}
	if result.RowsAffected == 0 {
		r.tracker.Delete(id)
		return nil, fmt.Errorf("%s update id=%d: %w", r.name, id, collection.ErrStaleRecord)
	}

	r.tracker.Set(id, item)
	return item, nil
}

func (r *Repository[T, PT]) Remove(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, r.nilItem("remove")
	}

	id := PT(item).GetID()
	exists, err := r.ContainsID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		r.tracker.Delete(id)
		return nil, nil
	}

	result := r.db.WithContext(ctx).Delete(item)
	if result.Error != nil {
		return nil, r.fail(ctx, "remove", result.Error)
	}

	r.tracker.Delete(id)
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return item, nil
}

// RemoveByID deletes through a tracked instance when one exists and through a
// key-only shell otherwise. Remove re-checks existence in both cases. The
// returned record is whichever of the two was used, so an untracked removal
// carries only its id.
func (r *Repository[T, PT]) RemoveByID(ctx context.Context, id int) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, r.fail(ctx, "remove by id", err)
	}

	item, ok := r.tracker.Get(id)
	if !ok {
		shell := new(T)
		err := r.db.WithContext(ctx).Model(new(T)).Select(idColumn).Where(idColumn+" = ?", id).Take(shell).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, r.fail(ctx, "remove by id", err)
		}
		item = shell
	}

	return r.Remove(ctx, item)
}

func (r *Repository[T, PT]) Name() string {
	return r.name
}

func (r *Repository[T, PT]) fail(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w", r.name, op, ctxErr)
	}
	return fmt.Errorf("%s %s: %w", r.name, op, err)
}

func (r *Repository[T, PT]) nilItem(op string) error {
	return fmt.Errorf("%s %s: %w", r.name, op, collection.ErrNilItem)
}

func tableName[T any](db *gorm.DB) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil || stmt.Schema == nil {
		return "collection"
	}
	return stmt.Schema.Table
}

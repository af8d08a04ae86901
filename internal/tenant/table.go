package tenant

import (
	"context"
	"errors"
	"slices"

	"gorm.io/gorm"
)

// Table is a tenant-filtered view of one entity. Conditions follow GORM's
// inline condition shape ("status = ?", x / struct / map) and are ANDed with
// the tenant filter.
type Table[T any] struct {
	store        *Store
	name         string
	filter       func(*gorm.DB) *gorm.DB
	prepare      func(context.Context, *T) error
	beforeUpdate func(context.Context, map[string]any) error
	immutable    []string
}

type tabler interface {
	TableName() string
}

func newTable[T any](s *Store, filter func(*gorm.DB) *gorm.DB, prepare func(context.Context, *T) error, immutable ...string) *Table[T] {
	var zero T
	name := any(zero).(tabler).TableName()
	return &Table[T]{
		store:     s,
		name:      name,
		filter:    filter,
		prepare:   prepare,
		immutable: immutable,
	}
}

// Query returns a read query over the tenant's rows only. The rows are
// selected in a derived table aliased to the real table name, so chained
// Where/Or/Joins clauses cannot widen the result past the tenant.
func (t *Table[T]) Query(ctx context.Context) *gorm.DB {
	db := t.store.db.WithContext(ctx)
	if !t.store.scope.Valid() {
		_ = db.AddError(ErrNoScope)
		return db
	}
	scoped := t.filter(db.Session(&gorm.Session{NewDB: true}).Model(new(T)))
	return db.Table("(?) AS "+t.name, scoped)
}

func (t *Table[T]) Find(ctx context.Context, dest *[]T, conds ...any) error {
	return where(t.Query(ctx), conds).Order(t.name + ".id").Find(dest).Error
}

// First returns ErrNotFound when no tenant row matches.
func (t *Table[T]) First(ctx context.Context, dest *T, conds ...any) error {
	err := where(t.Query(ctx), conds).Order(t.name + ".id").Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (t *Table[T]) Count(ctx context.Context, conds ...any) (int64, error) {
	var n int64
	err := where(t.Query(ctx), conds).Count(&n).Error
	return n, err
}

func (t *Table[T]) Exists(ctx context.Context, conds ...any) (bool, error) {
	n, err := t.Count(ctx, conds...)
	return n > 0, err
}

// Create stamps tenant columns and checks references before inserting.
func (t *Table[T]) Create(ctx context.Context, row *T) error {
	if !t.store.scope.Valid() {
		return ErrNoScope
	}
	if t.prepare != nil {
		if err := t.prepare(ctx, row); err != nil {
			return err
		}
	}
	return t.store.db.WithContext(ctx).Create(row).Error
}

// Updates applies values to matching tenant rows. Identity and tenant
// columns are dropped from values.
func (t *Table[T]) Updates(ctx context.Context, values map[string]any, conds ...any) (int64, error) {
	if !t.store.scope.Valid() {
		return 0, ErrNoScope
	}
	clean := make(map[string]any, len(values))
	for k, v := range values {
		if slices.Contains(t.immutable, k) {
			continue
		}
		clean[k] = v
	}
	if len(clean) == 0 {
		return 0, nil
	}
	if t.beforeUpdate != nil {
		if err := t.beforeUpdate(ctx, clean); err != nil {
			return 0, err
		}
	}
	res := where(t.filter(t.store.db.WithContext(ctx).Model(new(T))), conds).Updates(clean)
	return res.RowsAffected, res.Error
}

func (t *Table[T]) Delete(ctx context.Context, conds ...any) (int64, error) {
	if !t.store.scope.Valid() {
		return 0, ErrNoScope
	}
	res := where(t.filter(t.store.db.WithContext(ctx).Model(new(T))), conds).Delete(new(T))
	return res.RowsAffected, res.Error
}

func where(db *gorm.DB, conds []any) *gorm.DB {
	if len(conds) == 0 {
		return db
	}
	return db.Where(conds[0], conds[1:]...)
}

/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/tomoncle/datajpa/database"
	"github.com/tomoncle/datajpa/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any, P Entity[T]] struct {
	session *database.Session
	table   *schema.Table
}

// NewRepository returns a generic repository whose statements run on the
// session's transaction and whose reads go through its identity map.
func NewRepository[T any, P Entity[T]](session *database.Session) Repository[T] {
	return newBaseRepository[T, P](session)
}

func newBaseRepository[T any, P Entity[T]](session *database.Session) *baseRepositoryImpl[T, P] {
	return &baseRepositoryImpl[T, P]{
		session: session,
		table:   session.Dialect().Tables().Get(reflect.TypeFor[T]()),
	}
}

func (r *baseRepositoryImpl[T, P]) Session() *database.Session { return r.session }

func (r *baseRepositoryImpl[T, P]) Dialect() schema.Dialect { return r.session.Dialect() }

func (r *baseRepositoryImpl[T, P]) NewSelect() *bun.SelectQuery { return r.session.IDB().NewSelect() }

func (r *baseRepositoryImpl[T, P]) NewInsert() *bun.InsertQuery { return r.session.IDB().NewInsert() }

func (r *baseRepositoryImpl[T, P]) NewUpdate() *bun.UpdateQuery { return r.session.IDB().NewUpdate() }

func (r *baseRepositoryImpl[T, P]) NewDelete() *bun.DeleteQuery { return r.session.IDB().NewDelete() }

// attach returns the instance the session already holds for the row, caching
// entity when there is none.
func (r *baseRepositoryImpl[T, P]) attach(entity *T) *T {
	id := P(entity).GetID()
	if id == 0 {
		return entity
	}
	return r.session.Attach(r.table.Name, id, entity).(*T)
}

func (r *baseRepositoryImpl[T, P]) attachAll(entities []*T) []*T {
	if entities == nil {
		return make([]*T, 0)
	}
	for i := range entities {
		entities[i] = r.attach(entities[i])
	}
	return entities
}

func (r *baseRepositoryImpl[T, P]) Save(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, ErrNilEntity
	}
	if P(entity).GetID() == 0 {
		if _, err := r.NewInsert().Model(entity).Exec(ctx); err != nil {
			return nil, translateError(err)
		}
	} else if err := r.update(ctx, entity); err != nil {
		return nil, err
	}
	r.session.Put(r.table.Name, P(entity).GetID(), entity)
	return entity, nil
}

// update writes entity by primary key. Some drivers report only changed rows,
// so a zero count is confirmed against the table before failing.
func (r *baseRepositoryImpl[T, P]) update(ctx context.Context, entity *T) error {
	res, err := r.NewUpdate().Model(entity).WherePK().Exec(ctx)
	if err != nil {
		return translateError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	id := P(entity).GetID()
	exists, err := r.NewSelect().Model((*T)(nil)).Where("?TablePKs = ?", id).Exists(ctx)
	if err != nil {
		return translateError(err)
	}
	if !exists {
		return fmt.Errorf("%w: %s id %d", ErrEntityNotFound, r.table.Name, id)
	}
	return nil
}

func (r *baseRepositoryImpl[T, P]) SaveAll(ctx context.Context, entities ...*T) error {
	for _, entity := range entities {
		if _, err := r.Save(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T, P]) FindByID(ctx context.Context, id int64) (*T, error) {
	if cached, ok := r.session.Lookup(r.table.Name, id); ok {
		return cached.(*T), nil
	}
	entity := new(T)
	err := r.NewSelect().Model(entity).Where("?TablePKs = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}
	return r.attach(entity), nil
}

func (r *baseRepositoryImpl[T, P]) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if _, ok := r.session.Lookup(r.table.Name, id); ok {
		return true, nil
	}
	exists, err := r.NewSelect().Model((*T)(nil)).Where("?TablePKs = ?", id).Exists(ctx)
	return exists, translateError(err)
}

func (r *baseRepositoryImpl[T, P]) FindAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	err := r.NewSelect().Model(&entities).OrderExpr("?TablePKs ASC").Scan(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return r.attachAll(entities), nil
}

// FindAllByIDs reads only the ids the session does not hold yet. The result
// follows the order of ids and skips ids without a row.
func (r *baseRepositoryImpl[T, P]) FindAllByIDs(ctx context.Context, ids ...int64) ([]*T, error) {
	found := make(map[int64]*T, len(ids))
	missing := make([]int64, 0, len(ids))
	for _, id := range ids {
		if cached, ok := r.session.Lookup(r.table.Name, id); ok {
			found[id] = cached.(*T)
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		var entities []*T
		err := r.NewSelect().Model(&entities).Where("?TablePKs IN (?)", bun.In(missing)).Scan(ctx)
		if err != nil {
			return nil, translateError(err)
		}
		for _, entity := range r.attachAll(entities) {
			found[P(entity).GetID()] = entity
		}
	}
	result := make([]*T, 0, len(found))
	seen := make(map[int64]struct{}, len(found))
	for _, id := range ids {
		entity, ok := found[id]
		if _, dup := seen[id]; !ok || dup {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, entity)
	}
	return result, nil
}

func (r *baseRepositoryImpl[T, P]) Count(ctx context.Context) (int, error) {
	count, err := r.NewSelect().Model((*T)(nil)).Count(ctx)
	return count, translateError(err)
}

func (r *baseRepositoryImpl[T, P]) Delete(ctx context.Context, entity *T) error {
	if entity == nil {
		return ErrNilEntity
	}
	return r.DeleteByID(ctx, P(entity).GetID())
}

func (r *baseRepositoryImpl[T, P]) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.NewDelete().Model((*T)(nil)).Where("?PKs = ?", id).Exec(ctx)
	if err != nil {
		return translateError(err)
	}
	r.session.Evict(r.table.Name, id)
	return nil
}

func (r *baseRepositoryImpl[T, P]) DeleteAll(ctx context.Context, entities ...*T) error {
	if len(entities) == 0 {
		if _, err := r.NewDelete().Model((*T)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return translateError(err)
		}
		r.session.EvictTable(r.table.Name)
		return nil
	}
	for _, entity := range entities {
		if err := r.Delete(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T, P]) FindAllSorted(ctx context.Context, sort types.Sort) ([]*T, error) {
	var entities []*T
	query := r.NewSelect().Model(&entities)
	if err := r.applySort(query, sort); err != nil {
		return nil, err
	}
	if err := query.Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	return r.attachAll(entities), nil
}

func (r *baseRepositoryImpl[T, P]) FindBy(ctx context.Context, conditions ...types.Condition) ([]*T, error) {
	var entities []*T
	query := r.NewSelect().Model(&entities)
	if err := r.applyConditions(query, conditions); err != nil {
		return nil, err
	}
	if err := query.OrderExpr("?TablePKs ASC").Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	return r.attachAll(entities), nil
}

func (r *baseRepositoryImpl[T, P]) FindOneBy(ctx context.Context, conditions ...types.Condition) (*T, error) {
	var entities []*T
	query := r.NewSelect().Model(&entities)
	if err := r.applyConditions(query, conditions); err != nil {
		return nil, err
	}
	if err := query.Limit(2).Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	return r.unique(entities)
}

func (r *baseRepositoryImpl[T, P]) unique(entities []*T) (*T, error) {
	switch len(entities) {
	case 0:
		return nil, nil
	case 1:
		return r.attach(entities[0]), nil
	default:
		return nil, fmt.Errorf("%w: table %s, at least %d rows", ErrNonUniqueResult, r.table.Name, len(entities))
	}
}

func (r *baseRepositoryImpl[T, P]) CountBy(ctx context.Context, conditions ...types.Condition) (int, error) {
	query := r.NewSelect().Model((*T)(nil))
	if err := r.applyConditions(query, conditions); err != nil {
		return 0, err
	}
	count, err := query.Count(ctx)
	return count, translateError(err)
}

func (r *baseRepositoryImpl[T, P]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	var entities []*T
	query := r.NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	return r.attachAll(entities), nil
}

func (r *baseRepositoryImpl[T, P]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	var entities []*T
	if err := r.NewSelect().Model(&entities).Where(query, args...).Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	return r.attachAll(entities), nil
}

func (r *baseRepositoryImpl[T, P]) FindPage(ctx context.Context, page *types.PageRequest, conditions ...types.Condition) (*types.Page[T], error) {
	var entities []*T
	query := r.NewSelect().Model(&entities)
	if err := r.applyConditions(query, conditions); err != nil {
		return nil, err
	}
	if err := r.checkSort(page.GetSort()); err != nil {
		return nil, err
	}
	total, err := query.Count(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	if total == 0 {
		return types.NewPage[T](nil, page, 0), nil
	}
	r.orderBy(query, page.GetSort())
	err = query.
		Offset(page.GetOffset()).
		Limit(page.GetPageSize()).
		Scan(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return types.NewPage(r.attachAll(entities), page, total), nil
}

// FindSlice reads one row past the window to learn whether a next window
// exists.
func (r *baseRepositoryImpl[T, P]) FindSlice(ctx context.Context, page *types.PageRequest, conditions ...types.Condition) (*types.Slice[T], error) {
	var entities []*T
	query := r.NewSelect().Model(&entities)
	if err := r.applyConditions(query, conditions); err != nil {
		return nil, err
	}
	if err := r.applySort(query, page.GetSort()); err != nil {
		return nil, err
	}
	err := query.
		Offset(page.GetOffset()).
		Limit(page.GetPageSize() + 1).
		Scan(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	hasNext := len(entities) > page.GetPageSize()
	if hasNext {
		entities = entities[:page.GetPageSize()]
	}
	return types.NewSlice(r.attachAll(entities), page, hasNext), nil
}

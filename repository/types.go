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

	"github.com/tomoncle/datajpa/database"
	"github.com/tomoncle/datajpa/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Entity is the pointer form of a model with a generated int64 id.
type Entity[T any] interface {
	*T
	GetID() int64
}

// CrudRepository defines basic persistence operations. Save inserts an entity
// whose id is zero and updates it otherwise; finders return nil, not an
// error, when no row matches.
type CrudRepository[T any] interface {
	Save(ctx context.Context, entity *T) (*T, error)

	SaveAll(ctx context.Context, entities ...*T) error

	FindByID(ctx context.Context, id int64) (*T, error)

	ExistsByID(ctx context.Context, id int64) (bool, error)

	FindAll(ctx context.Context) ([]*T, error)

	FindAllByIDs(ctx context.Context, ids ...int64) ([]*T, error)

	Count(ctx context.Context) (int, error)

	Delete(ctx context.Context, entity *T) error

	DeleteByID(ctx context.Context, id int64) error

	// DeleteAll removes the given entities, or every row when none are given.
	DeleteAll(ctx context.Context, entities ...*T) error
}

// QueryRepository defines declarative and hand-written finders.
type QueryRepository[T any] interface {
	FindAllSorted(ctx context.Context, sort types.Sort) ([]*T, error)

	FindBy(ctx context.Context, conditions ...types.Condition) ([]*T, error)

	// FindOneBy fails with ErrNonUniqueResult when more than one row matches.
	FindOneBy(ctx context.Context, conditions ...types.Condition) (*T, error)

	CountBy(ctx context.Context, conditions ...types.Condition) (int, error)

	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)
}

// PageQueryRepository defines windowed finders. FindPage counts the matching
// rows; FindSlice never does.
type PageQueryRepository[T any] interface {
	FindPage(ctx context.Context, page *types.PageRequest, conditions ...types.Condition) (*types.Page[T], error)

	FindSlice(ctx context.Context, page *types.PageRequest, conditions ...types.Condition) (*types.Slice[T], error)
}

// Repository combines the operations above for one session and exposes Bun
// query builders bound to the session's transaction.
type Repository[T any] interface {
	CrudRepository[T]
	QueryRepository[T]
	PageQueryRepository[T]
	Session() *database.Session
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}

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

package datajpa

import (
	"context"
	"errors"

	"github.com/tomoncle/datajpa/database"
	"github.com/tomoncle/datajpa/repository"
	"github.com/tomoncle/datajpa/types"
	"github.com/uptrace/bun"
)

var ErrDatabaseNotInitialized = errors.New("datajpa: database not initialized")

// Service runs every call in its own session: a transaction that commits when
// the call succeeds.
type Service[T any] interface {
	// Get returns a single entity by its identifier, or nil.
	Get(ctx context.Context, id int64) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// List returns entities that match the provided filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Query executes a raw where clause and maps the results to entities.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	// Find returns entities matching all conditions.
	Find(ctx context.Context, conditions ...types.Condition) ([]*T, error)

	// Page returns a counted window of entities.
	Page(ctx context.Context, page *types.PageRequest, conditions ...types.Condition) (*types.Page[T], error)

	// Slice returns a window of entities without counting them.
	Slice(ctx context.Context, page *types.PageRequest, conditions ...types.Condition) (*types.Slice[T], error)

	Count(ctx context.Context) (int, error)

	// Save inserts new entities and updates persisted ones.
	Save(ctx context.Context, model ...*T) error

	// Delete removes an entity by its identifier.
	Delete(ctx context.Context, id int64) error

	// Transactional runs fn with a repository bound to a single session.
	Transactional(ctx context.Context, fn func(ctx context.Context, repo repository.Repository[T]) error) error
}

type baseServiceImpl[T any, P repository.Entity[T]] struct {
	db   func() *bun.DB
	opts []database.SessionOption
}

// NewService returns a Service backed by the global database connection.
func NewService[T any, P repository.Entity[T]](opts ...database.SessionOption) Service[T] {
	return newBaseServiceImpl[T, P](database.GetDB, opts)
}

// NewServiceWithDB returns a Service backed by db.
func NewServiceWithDB[T any, P repository.Entity[T]](db *bun.DB, opts ...database.SessionOption) Service[T] {
	return newBaseServiceImpl[T, P](func() *bun.DB { return db }, opts)
}

func newBaseServiceImpl[T any, P repository.Entity[T]](db func() *bun.DB, opts []database.SessionOption) *baseServiceImpl[T, P] {
	return &baseServiceImpl[T, P]{db: db, opts: opts}
}

func (s *baseServiceImpl[T, P]) session(ctx context.Context, fn func(ctx context.Context, session *database.Session) error) error {
	db := s.db()
	if db == nil {
		return ErrDatabaseNotInitialized
	}
	return database.RunInSession(ctx, db, fn, s.opts...)
}

func (s *baseServiceImpl[T, P]) Transactional(ctx context.Context, fn func(ctx context.Context, repo repository.Repository[T]) error) error {
	return s.session(ctx, func(ctx context.Context, session *database.Session) error {
		return fn(ctx, repository.NewRepository[T, P](session))
	})
}

func (s *baseServiceImpl[T, P]) Get(ctx context.Context, id int64) (entity *T, err error) {
	err = s.Transactional(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		entity, err = repo.FindByID(ctx, id)
		return err
	})
	return entity, err
}

func (s *baseServiceImpl[T, P]) All(ctx context.Context) (entities []*T, err error) {
	err = s.Transactional(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		entities, err = repo.FindAll(ctx)
		return err
	})
	return entities, err
}

func (s *baseServiceImpl[T, P]) List(ctx context.Context, filter *types.QueryFilter) (entities []*T, err error) {
	err = s.Transactional(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		entities, err = repo.List(ctx, filter)
		return err
	})
	return entities, err
}

func (s *baseServiceImpl[T, P]) Query(ctx context.Context, query string, args ...interface{}) (entities []*T, err error) {
	err = s.Transactional(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		entities, err = repo.Query(ctx, query, args...)
		return err
	})
	return entities, err
}

func (s *baseServiceImpl[T, P]) Find(ctx context.Context, conditions ...types.Condition) (entities []*T, err error) {
	err = s.Transactional(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		entities, err = repo.FindBy(ctx, conditions...)
		return err
	})
	return entities, err
}

func (s *baseServiceImpl[T, P]) Page(ctx context.Context, page *types.PageRequest, conditions ...types.Condition) (result *types.Page[T], err error) {
	err = s.Transactional(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		result, err = repo.FindPage(ctx, page, conditions...)
		return err
	})
	return result, err
}

func (s *baseServiceImpl[T, P]) Slice(ctx context.Context, page *types.PageRequest, conditions ...types.Condition) (result *types.Slice[T], err error) {
	err = s.Transactional(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		result, err = repo.FindSlice(ctx, page, conditions...)
		return err
	})
	return result, err
}

func (s *baseServiceImpl[T, P]) Count(ctx context.Context) (count int, err error) {
	err = s.Transactional(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		count, err = repo.Count(ctx)
		return err
	})
	return count, err
}

func (s *baseServiceImpl[T, P]) Save(ctx context.Context, model ...*T) error {
	return s.Transactional(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		return repo.SaveAll(ctx, model...)
	})
}

func (s *baseServiceImpl[T, P]) Delete(ctx context.Context, id int64) error {
	return s.Transactional(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		return repo.DeleteByID(ctx, id)
	})
}

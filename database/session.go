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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

var ErrSessionClosed = errors.New("database: session already closed")

// Session is a unit of work: the statements of one logical operation run on a
// single transaction, and every entity loaded through it is kept in an
// identity map so the same row resolves to the same pointer until the map is
// cleared. Sessions are not safe for concurrent use by multiple goroutines
// beyond the identity map itself.
type Session struct {
	db           *bun.DB
	tx           *bun.Tx
	rollbackOnly bool
	closed       bool
	logger       Logger

	mu       sync.Mutex
	identity map[string]map[int64]any
}

type SessionOption func(*Session)

// WithRollbackOnly makes Close roll back even when the work succeeded.
func WithRollbackOnly() SessionOption {
	return func(s *Session) { s.rollbackOnly = true }
}

// WithSessionLogger overrides the package logger for one session.
func WithSessionLogger(logger Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession returns a session without a transaction; every statement
// autocommits. Close only drops the identity map.
func NewSession(db *bun.DB, opts ...SessionOption) *Session {
	s := &Session{
		db:       db,
		logger:   GetLogger(),
		identity: make(map[string]map[int64]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenSession begins a transaction and returns the session bound to it.
func OpenSession(ctx context.Context, db *bun.DB, opts ...SessionOption) (*Session, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	s := NewSession(db, opts...)
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = &tx
	return s, nil
}

// RunInSession scopes fn to a new session. The transaction commits when fn
// returns nil, unless WithRollbackOnly was given, and rolls back otherwise.
func RunInSession(ctx context.Context, db *bun.DB, fn func(ctx context.Context, s *Session) error, opts ...SessionOption) (err error) {
	s, err := OpenSession(ctx, db, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.Close(fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()
	if err := fn(ctx, s); err != nil {
		if closeErr := s.Close(err); closeErr != nil {
			return errors.Join(err, closeErr)
		}
		return err
	}
	return s.Close(nil)
}

// IDB returns the handle statements should be issued on.
func (s *Session) IDB() bun.IDB {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Session) Dialect() schema.Dialect {
	return s.db.Dialect()
}

func (s *Session) Transactional() bool {
	return s.tx != nil
}

func (s *Session) RollbackOnly() bool {
	return s.rollbackOnly
}

// SetRollbackOnly marks the session so Close rolls back.
func (s *Session) SetRollbackOnly() {
	s.rollbackOnly = true
}

// Close ends the unit of work: commit when cause is nil and the session is
// not rollback-only, roll back otherwise.
func (s *Session) Close(cause error) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.Clear()
	if s.tx == nil {
		return nil
	}
	if cause != nil || s.rollbackOnly {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Error("Failed to rollback transaction", "error", err)
			return fmt.Errorf("rollback: %w", err)
		}
		s.logger.Debug("Session rolled back", "rollback_only", s.rollbackOnly, "cause", cause)
		return nil
	}
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Session) Closed() bool {
	return s.closed
}

// Lookup returns the entity cached for table and id.
func (s *Session) Lookup(table string, id int64) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity, ok := s.identity[table][id]
	return entity, ok
}

// Attach caches entity under table and id and returns the instance the
// session already holds for that row, if any.
func (s *Session) Attach(table string, id int64, entity any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.identity[table]
	if !ok {
		rows = make(map[int64]any)
		s.identity[table] = rows
	}
	if existing, ok := rows[id]; ok {
		return existing
	}
	rows[id] = entity
	return entity
}

// Put caches entity under table and id, replacing any previous instance.
func (s *Session) Put(table string, id int64, entity any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.identity[table]
	if !ok {
		rows = make(map[int64]any)
		s.identity[table] = rows
	}
	rows[id] = entity
}

// EvictTable detaches every entity of one table.
func (s *Session) EvictTable(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identity, table)
}

func (s *Session) Evict(table string, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identity[table], id)
}

// Clear detaches every entity. Set-based writes call it so later reads go
// back to the database instead of returning stale instances.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = make(map[string]map[int64]any)
}

// Size reports how many entities are attached.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rows := range s.identity {
		n += len(rows)
	}
	return n
}

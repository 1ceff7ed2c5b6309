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
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomoncle/datajpa/database"
)

var (
	ErrNilEntity           = errors.New("repository: entity is nil")
	ErrEntityNotFound      = errors.New("repository: no row for entity id")
	ErrNonUniqueResult     = errors.New("repository: query did not return a unique result")
	ErrUnknownField        = errors.New("repository: unknown field")
	ErrUnsupportedOperator = errors.New("repository: unsupported operator")
	ErrDuplicateKey        = errors.New("repository: duplicate key")
	ErrForeignKeyViolation = errors.New("repository: foreign key violation")
	ErrNotNullViolation    = errors.New("repository: not null violation")
)

// translateError tags store errors with a repository sentinel while keeping
// the driver error in the chain.
func translateError(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	is, kind := database.IsSqlError(err)
	if !is {
		return err
	}
	switch kind {
	case database.DuplicateKeyErr:
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case database.ForeignKeyViolationErr:
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	case database.NotNullViolationErr:
		return fmt.Errorf("%w: %w", ErrNotNullViolation, err)
	case database.NoColumnErr:
		return fmt.Errorf("%w: %w", ErrUnknownField, err)
	}
	return err
}

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
	"fmt"
	"reflect"

	"github.com/tomoncle/datajpa/types"
	"github.com/uptrace/bun"
)

func (r *baseRepositoryImpl[T, P]) checkField(field string) error {
	if !r.table.HasField(field) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, r.table.Name, field)
	}
	return nil
}

func (r *baseRepositoryImpl[T, P]) checkSort(sort types.Sort) error {
	for _, order := range sort {
		if err := r.checkField(order.Property); err != nil {
			return err
		}
		if !order.Direction.IsValid() {
			return fmt.Errorf("invalid sort direction for %s: %d", order.Property, order.Direction)
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T, P]) orderBy(query *bun.SelectQuery, sort types.Sort) {
	for _, order := range sort {
		query.OrderExpr("?TableAlias.? "+order.Direction.Name(), bun.Ident(order.Property))
	}
}

func (r *baseRepositoryImpl[T, P]) applySort(query *bun.SelectQuery, sort types.Sort) error {
	if err := r.checkSort(sort); err != nil {
		return err
	}
	r.orderBy(query, sort)
	return nil
}

// applyConditions ANDs the conditions into query. A nil value compared with
// OpEq or OpNe renders as IS NULL or IS NOT NULL.
func (r *baseRepositoryImpl[T, P]) applyConditions(query *bun.SelectQuery, conditions []types.Condition) error {
	for _, cond := range conditions {
		if err := r.checkField(cond.Field); err != nil {
			return err
		}
		expr, args, err := conditionExpr(cond)
		if err != nil {
			return err
		}
		query.Where(expr, args...)
	}
	return nil
}

func conditionExpr(cond types.Condition) (string, []interface{}, error) {
	column := bun.Ident(cond.Field)
	op := cond.Operator
	if cond.Value == nil {
		switch op {
		case types.OpEq:
			op = types.OpIsNull
		case types.OpNe:
			op = types.OpIsNotNull
		}
	}
	switch op {
	case types.OpEq, types.OpNe, types.OpGt, types.OpGe, types.OpLt, types.OpLe, types.OpLike:
		if cond.Value == nil {
			return "", nil, fmt.Errorf("%w: %s needs a value for %s", ErrUnsupportedOperator, op, cond.Field)
		}
		return "?TableAlias.? " + op.Desc() + " ?", []interface{}{column, cond.Value}, nil
	case types.OpIn:
		values := reflect.ValueOf(cond.Value)
		if kind := values.Kind(); kind != reflect.Slice && kind != reflect.Array {
			return "", nil, fmt.Errorf("%w: %s needs a slice for %s, got %T", ErrUnsupportedOperator, op, cond.Field, cond.Value)
		}
		// postgres and mysql reject an empty IN list
		if values.Len() == 0 {
			return "1 = 0", nil, nil
		}
		return "?TableAlias.? IN (?)", []interface{}{column, bun.In(cond.Value)}, nil
	case types.OpIsNull, types.OpIsNotNull:
		return "?TableAlias.? " + op.Desc(), []interface{}{column}, nil
	}
	return "", nil, fmt.Errorf("%w: %d", ErrUnsupportedOperator, cond.Operator)
}

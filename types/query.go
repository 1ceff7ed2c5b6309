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

package types

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// Operator compares a column with a condition value.
type Operator int

const (
	OpEq Operator = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpIn
	OpLike
	OpIsNull
	OpIsNotNull
)

var _ BaseEnum = OpEq

var operatorNames = [...]string{
	OpEq:        "eq",
	OpNe:        "ne",
	OpGt:        "gt",
	OpGe:        "ge",
	OpLt:        "lt",
	OpLe:        "le",
	OpIn:        "in",
	OpLike:      "like",
	OpIsNull:    "is_null",
	OpIsNotNull: "is_not_null",
}

var operatorSymbols = [...]string{
	OpEq:        "=",
	OpNe:        "<>",
	OpGt:        ">",
	OpGe:        ">=",
	OpLt:        "<",
	OpLe:        "<=",
	OpIn:        "IN",
	OpLike:      "LIKE",
	OpIsNull:    "IS NULL",
	OpIsNotNull: "IS NOT NULL",
}

func (o Operator) IsValid() bool {
	return o >= OpEq && o <= OpIsNotNull
}

func (o Operator) Number() int {
	if !o.IsValid() {
		return IllegalValue
	}
	return int(o)
}

func (o Operator) String() string {
	return o.Name()
}

func (o Operator) Name() string {
	if !o.IsValid() {
		return IllegalName
	}
	return operatorNames[o]
}

// Desc returns the SQL comparison the operator renders to.
func (o Operator) Desc() string {
	if !o.IsValid() {
		return IllegalDesc
	}
	return operatorSymbols[o]
}

// Unary reports whether the operator takes no value.
func (o Operator) Unary() bool {
	return o == OpIsNull || o == OpIsNotNull
}

// Condition is one predicate of a declarative finder: Field (a column name)
// compared with Value using Operator. Conditions passed together are ANDed.
type Condition struct {
	Field    string
	Operator Operator
	Value    interface{}
}

func Where(field string, op Operator, value interface{}) Condition {
	return Condition{Field: field, Operator: op, Value: value}
}

func Eq(field string, value interface{}) Condition { return Where(field, OpEq, value) }

func Ne(field string, value interface{}) Condition { return Where(field, OpNe, value) }

func Gt(field string, value interface{}) Condition { return Where(field, OpGt, value) }

func Ge(field string, value interface{}) Condition { return Where(field, OpGe, value) }

func Lt(field string, value interface{}) Condition { return Where(field, OpLt, value) }

func Le(field string, value interface{}) Condition { return Where(field, OpLe, value) }

// In matches any element of values, which must be a slice.
func In(field string, values interface{}) Condition { return Where(field, OpIn, values) }

func Like(field string, pattern string) Condition { return Where(field, OpLike, pattern) }

func IsNull(field string) Condition { return Where(field, OpIsNull, nil) }

func IsNotNull(field string) Condition { return Where(field, OpIsNotNull, nil) }

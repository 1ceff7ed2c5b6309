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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirection(t *testing.T) {
	assert.Equal(t, "ASC", Asc.String())
	assert.Equal(t, "descending", Desc.Desc())
	assert.Equal(t, 1, Desc.Number())

	invalid := Direction(7)
	assert.False(t, invalid.IsValid())
	assert.Equal(t, IllegalName, invalid.Name())
	assert.Equal(t, IllegalValue, invalid.Number())

	d, err := ParseDirection(" desc ")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)
	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestOperator(t *testing.T) {
	assert.Equal(t, ">=", OpGe.Desc())
	assert.Equal(t, "is_not_null", OpIsNotNull.Name())
	assert.True(t, OpIsNull.Unary())
	assert.False(t, OpEq.Unary())
	assert.False(t, Operator(-1).IsValid())
	assert.Equal(t, IllegalDesc, Operator(42).Desc())
}

func TestConditionConstructors(t *testing.T) {
	tests := []struct {
		cond Condition
		want Condition
	}{
		{Eq("username", "AAA"), Condition{"username", OpEq, "AAA"}},
		{Gt("age", 15), Condition{"age", OpGt, 15}},
		{In("username", []string{"AAA"}), Condition{"username", OpIn, []string{"AAA"}}},
		{Like("username", "A%"), Condition{"username", OpLike, "A%"}},
		{IsNull("team_id"), Condition{"team_id", OpIsNull, nil}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cond)
	}
}

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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForeignKeyConstraint_GenerateSQL(t *testing.T) {
	fk := ForeignKeyConstraint{
		Table:           "member",
		Column:          "team_id",
		ReferenceTable:  "team",
		ReferenceColumn: "team_id",
		OnDelete:        "SET NULL",
	}
	assert.Equal(t, "fk_member_team_id", fk.GenerateConstraintName())
	assert.Equal(t,
		"ALTER TABLE member ADD CONSTRAINT fk_member_team_id FOREIGN KEY (team_id) REFERENCES team(team_id) ON DELETE SET NULL",
		fk.GenerateSQL())

	fk.ConstraintName = "fk_custom"
	fk.OnUpdate = "CASCADE"
	assert.Contains(t, fk.GenerateSQL(), "CONSTRAINT fk_custom")
	assert.Contains(t, fk.GenerateSQL(), "ON UPDATE CASCADE")
}

func TestForeignKeyManager_ExportAndLoad(t *testing.T) {
	logger := GetLogger()
	path := filepath.Join(t.TempDir(), "conf", "foreign_keys.yaml")

	src := &ForeignKeyManager{logger: logger, constraints: []ForeignKeyConstraint{{
		Table: "member", Column: "team_id", ReferenceTable: "team", ReferenceColumn: "team_id", OnDelete: "SET NULL",
	}}}
	require.NoError(t, src.ExportToConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reference_table: team")

	loaded := LoadForeignKeyManager(logger, path)
	assert.Equal(t, src.ListAllConstraints(), loaded.ListAllConstraints())
	assert.Len(t, loaded.GetConstraintsByTable("MEMBER"), 1)
	assert.Empty(t, loaded.GetConstraintsByTable("team"))
}

func TestLoadForeignKeyManager_FallsBackToRegistered(t *testing.T) {
	RegisterForeignKey(ForeignKeyConstraint{
		Table: "widget_part", Column: "widget_id", ReferenceTable: "widget", ReferenceColumn: "id",
	})
	RegisterForeignKey(ForeignKeyConstraint{
		Table: "widget_part", Column: "widget_id", ReferenceTable: "widget", ReferenceColumn: "id",
	})

	fkm := LoadForeignKeyManager(GetLogger(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Len(t, fkm.GetConstraintsByTable("widget_part"), 1)
}

func TestForeignKeyManager_ValidateConstraints(t *testing.T) {
	fkm := &ForeignKeyManager{logger: GetLogger(), constraints: []ForeignKeyConstraint{
		{Table: "member", Column: "team_id", ReferenceTable: "team", ReferenceColumn: "team_id", OnDelete: "set null"},
		{Table: "member", Column: "", ReferenceTable: "", ReferenceColumn: "id", OnDelete: "EXPLODE"},
	}}
	errs := fkm.ValidateConstraints()
	require.Len(t, errs, 3)
	assert.ErrorContains(t, errs[2], "invalid delete policy: EXPLODE")
}

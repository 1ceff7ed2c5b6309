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

package entity

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Member owns the team association: TeamID is the foreign key written to the
// member table, the team pointer is its in-memory counterpart.
type Member struct {
	bun.BaseModel `bun:"table:member,alias:m"`

	ID       int64  `bun:"member_id,pk,autoincrement" json:"id"`
	Username string `bun:"username" json:"username"`
	Age      int    `bun:"age,notnull" json:"age"`
	TeamID   *int64 `bun:"team_id,nullzero" json:"team_id,omitempty"`

	team *Team
}

var _ bun.BeforeAppendModelHook = (*Member)(nil)

func NewMember(username string) *Member {
	return &Member{Username: username}
}

func NewMemberWithAge(username string, age int) *Member {
	return &Member{Username: username, Age: age}
}

// NewMemberWithTeam binds the member to team unless team is nil.
func NewMemberWithTeam(username string, age int, team *Team) *Member {
	m := NewMemberWithAge(username, age)
	if team != nil {
		m.ChangeTeam(team)
	}
	return m
}

func (m *Member) GetID() int64 {
	return m.ID
}

// Team returns the team bound in memory. A member read from the database has
// no team until it is loaded through the repository.
func (m *Member) Team() *Team {
	return m.team
}

// ChangeTeam is the only way to set the association. It keeps both sides
// consistent: the member leaves its previous team's list and appears once in
// the new one. A nil team clears the association.
func (m *Member) ChangeTeam(team *Team) {
	if m.team != nil && m.team != team {
		m.team.remove(m)
	}
	m.team = team
	if team == nil {
		m.TeamID = nil
		return
	}
	if team.ID != 0 {
		id := team.ID
		m.TeamID = &id
	}
	team.add(m)
}

// BeforeAppendModel copies the bound team's id into TeamID before the row is
// written.
func (m *Member) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery, *bun.UpdateQuery:
		return m.syncTeamID()
	}
	return nil
}

func (m *Member) syncTeamID() error {
	if m.team == nil {
		return nil
	}
	if m.team.ID == 0 {
		return fmt.Errorf("%w: member %q, team %q", ErrTransientTeam, m.Username, m.team.Name)
	}
	id := m.team.ID
	m.TeamID = &id
	return nil
}

// Equal compares persisted members by id and transient ones by pointer.
func (m *Member) Equal(other *Member) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.ID != 0 && other.ID != 0 {
		return m.ID == other.ID
	}
	return m == other
}

// String leaves out the team to avoid walking the association.
func (m *Member) String() string {
	return fmt.Sprintf("Member(id=%d, username=%s, age=%d)", m.ID, m.Username, m.Age)
}

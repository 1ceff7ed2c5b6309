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
	"fmt"

	"github.com/uptrace/bun"
)

// Team is the inverse side of the member association. Its member list is
// only extended through Member.ChangeTeam.
type Team struct {
	bun.BaseModel `bun:"table:team,alias:t"`

	ID   int64  `bun:"team_id,pk,autoincrement" json:"id"`
	Name string `bun:"name" json:"name"`

	members       []*Member
	membersLoaded bool
}

func NewTeam(name string) *Team {
	return &Team{Name: name}
}

func (t *Team) GetID() int64 {
	return t.ID
}

// Members returns a copy of the members bound to the team in memory.
func (t *Team) Members() []*Member {
	out := make([]*Member, len(t.members))
	copy(out, t.members)
	return out
}

// MembersLoaded reports whether the member list was read from the database.
func (t *Team) MembersLoaded() bool {
	return t.membersLoaded
}

// BindLoadedMembers attaches members read from the database and marks the
// collection as loaded. A member whose in-memory association already points
// elsewhere keeps it: an unsaved move or removal wins over the stored row.
func (t *Team) BindLoadedMembers(members []*Member) {
	for _, m := range members {
		if t.owns(m) {
			m.ChangeTeam(t)
		}
	}
	t.membersLoaded = true
}

func (t *Team) owns(m *Member) bool {
	if m.team != nil {
		return m.team == t
	}
	return m.TeamID != nil && *m.TeamID == t.ID
}

// Equal compares persisted teams by id and transient ones by pointer.
func (t *Team) Equal(other *Team) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.ID != 0 && other.ID != 0 {
		return t.ID == other.ID
	}
	return t == other
}

func (t *Team) String() string {
	return fmt.Sprintf("Team(id=%d, name=%s)", t.ID, t.Name)
}

func (t *Team) contains(m *Member) bool {
	for _, existing := range t.members {
		if existing == m {
			return true
		}
	}
	return false
}

func (t *Team) add(m *Member) {
	if !t.contains(m) {
		t.members = append(t.members, m)
	}
}

func (t *Team) remove(m *Member) {
	for i, existing := range t.members {
		if existing == m {
			t.members = append(t.members[:i], t.members[i+1:]...)
			return
		}
	}
}

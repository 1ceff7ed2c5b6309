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

// MemberDto is the member-with-team-name projection built by a join query.
type MemberDto struct {
	ID       int64   `bun:"id" json:"id"`
	Username string  `bun:"username" json:"username"`
	TeamName *string `bun:"team_name" json:"team_name,omitempty"`
}

func NewMemberDto(id int64, username string, teamName *string) *MemberDto {
	return &MemberDto{ID: id, Username: username, TeamName: teamName}
}

// GetTeamName returns "" when the member has no team.
func (d *MemberDto) GetTeamName() string {
	if d.TeamName == nil {
		return ""
	}
	return *d.TeamName
}

// MemberToDto projects a member without reading its team.
func MemberToDto(m *Member) *MemberDto {
	var teamName *string
	if m.team != nil {
		name := m.team.Name
		teamName = &name
	}
	return NewMemberDto(m.ID, m.Username, teamName)
}

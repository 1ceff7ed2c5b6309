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
	"context"

	"github.com/tomoncle/datajpa/database"
	"github.com/tomoncle/datajpa/entity"
	"github.com/tomoncle/datajpa/types"
)

type TeamRepository interface {
	Repository[entity.Team]

	FindByName(ctx context.Context, name string) ([]*entity.Team, error)

	// Members loads the team's member list on first access.
	Members(ctx context.Context, team *entity.Team) ([]*entity.Member, error)
}

type teamRepositoryImpl struct {
	*baseRepositoryImpl[entity.Team, *entity.Team]
	members *baseRepositoryImpl[entity.Member, *entity.Member]
}

func NewTeamRepository(session *database.Session) TeamRepository {
	return &teamRepositoryImpl{
		baseRepositoryImpl: newBaseRepository[entity.Team](session),
		members:            newBaseRepository[entity.Member](session),
	}
}

func (r *teamRepositoryImpl) FindByName(ctx context.Context, name string) ([]*entity.Team, error) {
	return r.FindBy(ctx, types.Eq("name", name))
}

func (r *teamRepositoryImpl) Members(ctx context.Context, team *entity.Team) ([]*entity.Member, error) {
	if team == nil {
		return nil, ErrNilEntity
	}
	if team.MembersLoaded() || team.ID == 0 {
		return team.Members(), nil
	}
	members, err := r.members.FindBy(ctx, types.Eq("team_id", team.ID))
	if err != nil {
		return nil, err
	}
	team.BindLoadedMembers(members)
	return team.Members(), nil
}

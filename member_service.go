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

package datajpa

import (
	"context"

	"github.com/tomoncle/datajpa/database"
	"github.com/tomoncle/datajpa/entity"
	"github.com/tomoncle/datajpa/repository"
	"github.com/uptrace/bun"
)

// MemberService adds member use cases spanning both repositories.
type MemberService interface {
	Service[entity.Member]

	// Join saves a member in the team named teamName, creating the team when
	// none exists. An empty teamName saves the member without a team.
	Join(ctx context.Context, username string, age int, teamName string) (*entity.Member, error)

	// AgeUp increments the age of members aged threshold or older.
	AgeUp(ctx context.Context, threshold int) (int, error)

	MemberDtos(ctx context.Context) ([]*entity.MemberDto, error)

	// InSession runs fn with member and team repositories sharing a session.
	InSession(ctx context.Context, fn func(ctx context.Context, members repository.MemberRepository, teams repository.TeamRepository) error) error
}

type memberServiceImpl struct {
	*baseServiceImpl[entity.Member, *entity.Member]
}

func NewMemberService(opts ...database.SessionOption) MemberService {
	return &memberServiceImpl{newBaseServiceImpl[entity.Member, *entity.Member](database.GetDB, opts)}
}

func NewMemberServiceWithDB(db *bun.DB, opts ...database.SessionOption) MemberService {
	return &memberServiceImpl{newBaseServiceImpl[entity.Member, *entity.Member](func() *bun.DB { return db }, opts)}
}

func (s *memberServiceImpl) InSession(ctx context.Context, fn func(ctx context.Context, members repository.MemberRepository, teams repository.TeamRepository) error) error {
	return s.session(ctx, func(ctx context.Context, session *database.Session) error {
		return fn(ctx, repository.NewMemberRepository(session), repository.NewTeamRepository(session))
	})
}

func (s *memberServiceImpl) Join(ctx context.Context, username string, age int, teamName string) (member *entity.Member, err error) {
	err = s.InSession(ctx, func(ctx context.Context, members repository.MemberRepository, teams repository.TeamRepository) error {
		var team *entity.Team
		if teamName != "" {
			found, err := teams.FindByName(ctx, teamName)
			if err != nil {
				return err
			}
			if len(found) > 0 {
				team = found[0]
			} else if team, err = teams.Save(ctx, entity.NewTeam(teamName)); err != nil {
				return err
			}
		}
		member, err = members.Save(ctx, entity.NewMemberWithTeam(username, age, team))
		return err
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *memberServiceImpl) AgeUp(ctx context.Context, threshold int) (count int, err error) {
	err = s.InSession(ctx, func(ctx context.Context, members repository.MemberRepository, _ repository.TeamRepository) error {
		count, err = members.BulkAgePlus(ctx, threshold)
		return err
	})
	return count, err
}

func (s *memberServiceImpl) MemberDtos(ctx context.Context) (dtos []*entity.MemberDto, err error) {
	err = s.InSession(ctx, func(ctx context.Context, members repository.MemberRepository, _ repository.TeamRepository) error {
		dtos, err = members.FindMemberDto(ctx)
		return err
	})
	return dtos, err
}

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
	"fmt"

	"github.com/tomoncle/datajpa/database"
	"github.com/tomoncle/datajpa/entity"
	"github.com/tomoncle/datajpa/types"
)

// MemberRepository adds the member finders, the DTO projection, the bulk age
// update and explicit loading of the team association.
type MemberRepository interface {
	Repository[entity.Member]

	// FindByUsernameAndAgeGreaterThan matches the username exactly and the
	// age strictly above age.
	FindByUsernameAndAgeGreaterThan(ctx context.Context, username string, age int) ([]*entity.Member, error)

	// FindUser runs a hand-written clause with named parameters.
	FindUser(ctx context.Context, username string, age int) ([]*entity.Member, error)

	FindUsernameList(ctx context.Context) ([]string, error)

	// FindMemberDto joins every member with its team; the team name is nil
	// for members without a team.
	FindMemberDto(ctx context.Context) ([]*entity.MemberDto, error)

	FindByNames(ctx context.Context, names []string) ([]*entity.Member, error)

	// FindListByUsername returns an empty slice when nothing matches.
	FindListByUsername(ctx context.Context, username string) ([]*entity.Member, error)

	// FindMemberByUsername returns nil when nothing matches and
	// ErrNonUniqueResult when several members share the username.
	FindMemberByUsername(ctx context.Context, username string) (*entity.Member, error)

	// FindOptionalByUsername reports absence through ok instead of a nil
	// member; the non-unique rule is the same.
	FindOptionalByUsername(ctx context.Context, username string) (member *entity.Member, ok bool, err error)

	FindPageByAge(ctx context.Context, age int, page *types.PageRequest) (*types.Page[entity.Member], error)

	FindSliceByAge(ctx context.Context, age int, page *types.PageRequest) (*types.Slice[entity.Member], error)

	// BulkAgePlus adds one to the age of every member aged age or older in a
	// single statement and returns the number of rows changed. The session
	// is cleared afterwards, so members loaded before are stale and later
	// reads return fresh instances.
	BulkAgePlus(ctx context.Context, age int) (int, error)

	// Team loads the member's team on first access and keeps it bound.
	Team(ctx context.Context, member *entity.Member) (*entity.Team, error)

	// FindAllWithTeam loads all members and their teams with one extra query.
	FindAllWithTeam(ctx context.Context) ([]*entity.Member, error)

	FindByTeam(ctx context.Context, team *entity.Team) ([]*entity.Member, error)
}

type memberRepositoryImpl struct {
	*baseRepositoryImpl[entity.Member, *entity.Member]
	teams *baseRepositoryImpl[entity.Team, *entity.Team]
}

func NewMemberRepository(session *database.Session) MemberRepository {
	return &memberRepositoryImpl{
		baseRepositoryImpl: newBaseRepository[entity.Member](session),
		teams:              newBaseRepository[entity.Team](session),
	}
}

func (r *memberRepositoryImpl) FindByUsernameAndAgeGreaterThan(ctx context.Context, username string, age int) ([]*entity.Member, error) {
	return r.FindBy(ctx, types.Eq("username", username), types.Gt("age", age))
}

type findUserParams struct {
	Username string `bun:"username"`
	Age      int    `bun:"age"`
}

func (r *memberRepositoryImpl) FindUser(ctx context.Context, username string, age int) ([]*entity.Member, error) {
	return r.Query(ctx, "username = ?username AND age = ?age", &findUserParams{Username: username, Age: age})
}

func (r *memberRepositoryImpl) FindUsernameList(ctx context.Context) ([]string, error) {
	usernames := make([]string, 0)
	err := r.NewSelect().
		Model((*entity.Member)(nil)).
		Column("username").
		OrderExpr("?TablePKs ASC").
		Scan(ctx, &usernames)
	if err != nil {
		return nil, translateError(err)
	}
	return usernames, nil
}

func (r *memberRepositoryImpl) FindMemberDto(ctx context.Context) ([]*entity.MemberDto, error) {
	dtos := make([]*entity.MemberDto, 0)
	err := r.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("m.member_id AS id").
		ColumnExpr("m.username").
		ColumnExpr("t.name AS team_name").
		Join("LEFT JOIN team AS t ON t.team_id = m.team_id").
		OrderExpr("m.member_id ASC").
		Scan(ctx, &dtos)
	if err != nil {
		return nil, translateError(err)
	}
	return dtos, nil
}

func (r *memberRepositoryImpl) FindByNames(ctx context.Context, names []string) ([]*entity.Member, error) {
	if len(names) == 0 {
		return make([]*entity.Member, 0), nil
	}
	return r.FindBy(ctx, types.In("username", names))
}

func (r *memberRepositoryImpl) FindListByUsername(ctx context.Context, username string) ([]*entity.Member, error) {
	return r.FindBy(ctx, types.Eq("username", username))
}

func (r *memberRepositoryImpl) FindMemberByUsername(ctx context.Context, username string) (*entity.Member, error) {
	return r.FindOneBy(ctx, types.Eq("username", username))
}

func (r *memberRepositoryImpl) FindOptionalByUsername(ctx context.Context, username string) (*entity.Member, bool, error) {
	member, err := r.FindOneBy(ctx, types.Eq("username", username))
	if err != nil {
		return nil, false, err
	}
	return member, member != nil, nil
}

func (r *memberRepositoryImpl) FindPageByAge(ctx context.Context, age int, page *types.PageRequest) (*types.Page[entity.Member], error) {
	return r.FindPage(ctx, page, types.Eq("age", age))
}

func (r *memberRepositoryImpl) FindSliceByAge(ctx context.Context, age int, page *types.PageRequest) (*types.Slice[entity.Member], error) {
	return r.FindSlice(ctx, page, types.Eq("age", age))
}

func (r *memberRepositoryImpl) BulkAgePlus(ctx context.Context, age int) (int, error) {
	res, err := r.NewUpdate().
		Model((*entity.Member)(nil)).
		Set("age = age + 1").
		Where("age >= ?", age).
		Exec(ctx)
	if err != nil {
		return 0, translateError(err)
	}
	r.session.Clear()
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *memberRepositoryImpl) Team(ctx context.Context, member *entity.Member) (*entity.Team, error) {
	if member == nil {
		return nil, ErrNilEntity
	}
	if team := member.Team(); team != nil {
		return team, nil
	}
	if member.TeamID == nil {
		return nil, nil
	}
	team, err := r.teams.FindByID(ctx, *member.TeamID)
	if err != nil || team == nil {
		return nil, err
	}
	member.ChangeTeam(team)
	return team, nil
}

func (r *memberRepositoryImpl) FindAllWithTeam(ctx context.Context) ([]*entity.Member, error) {
	members, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0)
	for _, m := range members {
		if m.Team() == nil && m.TeamID != nil {
			ids = append(ids, *m.TeamID)
		}
	}
	if len(ids) == 0 {
		return members, nil
	}
	teams, err := r.teams.FindAllByIDs(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*entity.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	for _, m := range members {
		if m.Team() != nil || m.TeamID == nil {
			continue
		}
		if t, ok := byID[*m.TeamID]; ok {
			m.ChangeTeam(t)
		}
	}
	return members, nil
}

func (r *memberRepositoryImpl) FindByTeam(ctx context.Context, team *entity.Team) ([]*entity.Member, error) {
	if team == nil {
		return nil, ErrNilEntity
	}
	if team.ID == 0 {
		return nil, entity.ErrTransientTeam
	}
	members, err := r.FindBy(ctx, types.Eq("team_id", team.ID))
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.Team() == nil {
			m.ChangeTeam(team)
		}
	}
	return members, nil
}

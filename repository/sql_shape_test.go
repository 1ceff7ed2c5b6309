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
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/datajpa/database"
	"github.com/tomoncle/datajpa/entity"
	"github.com/tomoncle/datajpa/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

var memberColumns = []string{"member_id", "username", "age", "team_id"}

// setupMockRepo binds a member repository to a sqlmock connection speaking
// the postgres dialect, outside any transaction.
func setupMockRepo(t *testing.T) (MemberRepository, *database.Session, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	session := database.NewSession(db)
	return NewMemberRepository(session), session, mock
}

func TestMemberRepository_SliceSkipsCount(t *testing.T) {
	repo, _, mock := setupMockRepo(t)

	rows := sqlmock.NewRows(memberColumns).
		AddRow(5, "member5", 10, nil).
		AddRow(4, "member4", 10, nil).
		AddRow(3, "member3", 10, nil).
		AddRow(2, "member2", 10, nil)
	mock.ExpectQuery(`SELECT .+ FROM "member" AS "m" WHERE .*"age" = 10.* ORDER BY "m"\."username" DESC LIMIT 4`).
		WillReturnRows(rows)

	slice, err := repo.FindSliceByAge(context.Background(), 10, types.PageRequestOf(0, 3, types.Desc, "username"))
	require.NoError(t, err)
	assert.Len(t, slice.Content, 3)
	assert.True(t, slice.HasNext())
	assert.Equal(t, "member3", slice.Content[2].Username)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_PageCounts(t *testing.T) {
	t.Run("count then content", func(t *testing.T) {
		repo, _, mock := setupMockRepo(t)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "member" AS "m" WHERE .*"age" = 10`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
		mock.ExpectQuery(`SELECT .+ FROM "member" AS "m" WHERE .*"age" = 10.* ORDER BY "m"\."username" DESC LIMIT 3`).
			WillReturnRows(sqlmock.NewRows(memberColumns).
				AddRow(5, "member5", 10, nil).
				AddRow(4, "member4", 10, nil).
				AddRow(3, "member3", 10, nil))

		page, err := repo.FindPageByAge(context.Background(), 10, types.PageRequestOf(0, 3, types.Desc, "username"))
		require.NoError(t, err)
		assert.Len(t, page.Content, 3)
		assert.Equal(t, 5, page.TotalElements)
		assert.Equal(t, 2, page.TotalPages())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows skips content query", func(t *testing.T) {
		repo, _, mock := setupMockRepo(t)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "member"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		page, err := repo.FindPageByAge(context.Background(), 10, types.PageRequestOf(0, 3, types.Desc, "username"))
		require.NoError(t, err)
		assert.Empty(t, page.Content)
		assert.Equal(t, 0, page.TotalPages())

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemberRepository_BulkAgePlusStatement(t *testing.T) {
	repo, session, mock := setupMockRepo(t)
	session.Attach("member", 1, entity.NewMemberWithAge("member1", 20))

	mock.ExpectExec(`UPDATE "member" .*SET age = age \+ 1 WHERE \(age >= 20\)`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.BulkAgePlus(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Zero(t, session.Size())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_UniqueFinderLimit(t *testing.T) {
	repo, _, mock := setupMockRepo(t)

	mock.ExpectQuery(`FROM "member" AS "m" WHERE .*"username" = 'AAA'.* LIMIT 2`).
		WillReturnRows(sqlmock.NewRows(memberColumns).
			AddRow(1, "AAA", 10, nil).
			AddRow(2, "AAA", 20, nil))

	_, err := repo.FindMemberByUsername(context.Background(), "AAA")
	assert.ErrorIs(t, err, ErrNonUniqueResult)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_EmptyInMatchesNothing(t *testing.T) {
	repo, _, mock := setupMockRepo(t)

	mock.ExpectQuery(`FROM "member" AS "m" WHERE \(1 = 0\)`).
		WillReturnRows(sqlmock.NewRows(memberColumns))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "member" AS "m" WHERE \(1 = 0\) AND`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	found, err := repo.FindBy(context.Background(), types.In("username", []string{}))
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	count, err := repo.CountBy(context.Background(), types.In("member_id", []int64(nil)), types.Gt("age", 10))
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_MemberDtoJoin(t *testing.T) {
	repo, _, mock := setupMockRepo(t)

	mock.ExpectQuery(`SELECT m\.member_id AS id, m\.username, t\.name AS team_name FROM "member" AS "m" LEFT JOIN team AS t ON t\.team_id = m\.team_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "team_name"}).
			AddRow(1, "AAA", "teamA").
			AddRow(2, "BBB", nil))

	dtos, err := repo.FindMemberDto(context.Background())
	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, "teamA", dtos[0].GetTeamName())
	assert.Nil(t, dtos[1].TeamName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

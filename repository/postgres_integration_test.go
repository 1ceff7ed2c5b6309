//go:build integration
// +build integration

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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tomoncle/datajpa/database"
	"github.com/tomoncle/datajpa/entity"
	"github.com/tomoncle/datajpa/types"
	"github.com/uptrace/bun"
)

// setupPostgresDB starts a postgres container, connects through the pgx
// driver and runs the migrations including foreign keys.
func setupPostgresDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:17.7",
		postgres.WithDatabase("datajpa"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	manager := database.NewDatabaseManager(&database.ConnectionConfig{
		Type:           database.TypePgx,
		DSN:            dsn,
		ConnectTimeout: 10 * time.Second,
	})
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx, &database.DataMigrateConfig{EnableForeignKey: true}))
	return manager.GetDB()
}

func TestPostgres_MemberRepository(t *testing.T) {
	db := setupPostgresDB(t)
	ctx := context.Background()

	t.Run("paging and bulk update", func(t *testing.T) {
		session := openSession(t, db)
		repo := NewMemberRepository(session)
		require.NoError(t, repo.SaveAll(ctx,
			entity.NewMemberWithAge("member1", 10),
			entity.NewMemberWithAge("member2", 19),
			entity.NewMemberWithAge("member3", 20),
			entity.NewMemberWithAge("member4", 21),
			entity.NewMemberWithAge("member5", 40),
		))

		page, err := repo.FindPage(ctx, types.PageRequestOf(0, 3, types.Desc, "username"))
		require.NoError(t, err)
		assert.Equal(t, 5, page.TotalElements)
		assert.Equal(t, "member5", page.Content[0].Username)

		count, err := repo.BulkAgePlus(ctx, 20)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("member dto join", func(t *testing.T) {
		session := openSession(t, db)
		repo, teams := NewMemberRepository(session), NewTeamRepository(session)
		team := entity.NewTeam("teamA")
		_, err := teams.Save(ctx, team)
		require.NoError(t, err)
		require.NoError(t, repo.SaveAll(ctx, entity.NewMemberWithTeam("AAA", 10, team), entity.NewMemberWithAge("BBB", 20)))

		dtos, err := repo.FindMemberDto(ctx)
		require.NoError(t, err)
		require.Len(t, dtos, 2)
		assert.Equal(t, "teamA", dtos[0].GetTeamName())
		assert.Nil(t, dtos[1].TeamName)
	})

	t.Run("foreign key violation", func(t *testing.T) {
		session := openSession(t, db)
		member := entity.NewMemberWithAge("orphan", 10)
		missing := int64(9999)
		member.TeamID = &missing

		_, err := NewMemberRepository(session).Save(ctx, member)
		assert.ErrorIs(t, err, ErrForeignKeyViolation)
	})

	t.Run("team delete nulls member reference", func(t *testing.T) {
		session := openSession(t, db)
		repo, teams := NewMemberRepository(session), NewTeamRepository(session)
		team := entity.NewTeam("teamB")
		_, err := teams.Save(ctx, team)
		require.NoError(t, err)
		member := entity.NewMemberWithTeam("member1", 10, team)
		_, err = repo.Save(ctx, member)
		require.NoError(t, err)

		require.NoError(t, teams.Delete(ctx, team))
		session.Clear()

		reloaded, err := repo.FindByID(ctx, member.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded)
		assert.Nil(t, reloaded.TeamID)
	})
}

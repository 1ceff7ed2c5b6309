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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/datajpa/database"
	"github.com/uptrace/bun"
)

var testDBSeq atomic.Int64

// setupTestDB opens a private in-memory sqlite database with the member and
// team tables created.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()
	manager := database.NewDatabaseManager(&database.ConnectionConfig{
		Type:           database.TypeSQLite,
		DSN:            fmt.Sprintf("file:repository_%d?mode=memory&cache=shared", testDBSeq.Add(1)),
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx, &database.DataMigrateConfig{EnableForeignKey: true}))
	return manager.GetDB()
}

// openSession starts a session that rolls back when the test ends.
func openSession(t *testing.T, db *bun.DB) *database.Session {
	t.Helper()
	session, err := database.OpenSession(context.Background(), db, database.WithRollbackOnly())
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close(nil) })
	return session
}

func setupRepositories(t *testing.T) (MemberRepository, TeamRepository, *database.Session) {
	t.Helper()
	session := openSession(t, setupTestDB(t))
	return NewMemberRepository(session), NewTeamRepository(session), session
}

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

// Command datajpa connects to the configured database, creates the member and
// team tables and walks through the repository operations on demo rows. The
// rows are rolled back unless DATAJPA_APP_COMMIT=true.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/datajpa/config"
	"github.com/tomoncle/datajpa/database"
	"github.com/tomoncle/datajpa/entity"
	"github.com/tomoncle/datajpa/repository"
	"github.com/tomoncle/datajpa/types"
	"github.com/tomoncle/datajpa/utils"
)

var log = utils.GetLogger("DATAJPA")

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("datajpa failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.ConfigLoader())
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			log.WithError(err).Warn("Failed to close database")
		}
	}()

	var opts []database.SessionOption
	if !cfg.App.Commit {
		opts = append(opts, database.WithRollbackOnly())
	}
	opts = append(opts, database.WithSessionLogger(database.NewDefaultLogger(log)))
	if err := database.RunInSession(ctx, db, demo, opts...); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	log.WithField("committed", cfg.App.Commit).Info("Demo finished")
	return nil
}

func demo(ctx context.Context, session *database.Session) error {
	members := repository.NewMemberRepository(session)
	teams := repository.NewTeamRepository(session)

	teamA, teamB := entity.NewTeam("teamA"), entity.NewTeam("teamB")
	if err := teams.SaveAll(ctx, teamA, teamB); err != nil {
		return err
	}
	seed := []*entity.Member{
		entity.NewMemberWithTeam("member1", 10, teamA),
		entity.NewMemberWithTeam("member2", 19, teamA),
		entity.NewMemberWithTeam("member3", 20, teamB),
		entity.NewMemberWithTeam("member4", 21, teamB),
		entity.NewMemberWithAge("member5", 40),
	}
	if err := members.SaveAll(ctx, seed...); err != nil {
		return err
	}

	dtos, err := members.FindMemberDto(ctx)
	if err != nil {
		return err
	}
	for _, dto := range dtos {
		log.WithFields(logrus.Fields{"id": dto.ID, "username": dto.Username, "team": dto.GetTeamName()}).Info("Member")
	}

	page, err := members.FindPageByAge(ctx, 10, types.PageRequestOf(0, 3, types.Desc, "username"))
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"content":     page.NumberOfElements(),
		"total":       page.TotalElements,
		"total_pages": page.TotalPages(),
		"has_next":    page.HasNext(),
	}).Info("Page of members aged 10")

	if _, err := members.FindMemberByUsername(ctx, "member1"); err != nil && !errors.Is(err, repository.ErrNonUniqueResult) {
		return err
	}

	updated, err := members.BulkAgePlus(ctx, 20)
	if err != nil {
		return err
	}
	log.WithField("rows", updated).Info("Bulk age update")

	loaded, err := members.FindAllWithTeam(ctx)
	if err != nil {
		return err
	}
	for _, m := range loaded {
		fields := logrus.Fields{"member": m.String()}
		if team := m.Team(); team != nil {
			fields["team"] = team.Name
		}
		log.WithFields(fields).Info("Member after update")
	}
	return nil
}

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

package database

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
)

func TestToFields(t *testing.T) {
	assert.Nil(t, toFields())
	assert.Equal(t, logrus.Fields{"table": "member", "id": 3}, toFields("table", "member", "id", 3))
	assert.Equal(t, logrus.Fields{"table": "member", "!BADKEY": "dangling"}, toFields("table", "member", "dangling"))
}

func TestDefaultLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	logger := NewDefaultLogger(l)
	logger.SetLevel(LogLevelWarn)
	logger.Info("hidden")
	logger.Warn("session rolled back", "rollback_only", true)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "session rolled back")
	assert.Contains(t, out, "rollback_only=true")
}

func TestQueryHook(t *testing.T) {
	t.Setenv("DATAJPA_SQL_TEST", "")

	tests := []struct {
		name    string
		env     string
		err     error
		written bool
	}{
		{"disabled by env", "0", errors.New("boom"), false},
		{"errors only hides success", "1", nil, false},
		{"errors only shows failure", "1", errors.New("boom"), true},
		{"verbose shows success", "2", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATAJPA_SQL_TEST", tt.env)
			var buf bytes.Buffer
			hook := &QueryHook{EnvName: "DATAJPA_SQL_TEST", Writer: &buf}

			event := &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now(), Err: tt.err}
			hook.AfterQuery(hook.BeforeQuery(context.Background(), event), event)

			if tt.written {
				assert.Contains(t, buf.String(), "SELECT 1")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestQueryHook_Silent(t *testing.T) {
	var buf bytes.Buffer
	hook := NewQueryHook("", true)
	hook.Writer = &buf

	EnableBunSqlSilent(true)
	defer EnableBunSqlSilent(false)
	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()})
	assert.Empty(t, buf.String())
}

type recordingLogger struct {
	warnings []string
}

func (r *recordingLogger) SetLevel(LogLevel) {}

func (r *recordingLogger) Debug(msg string, fields ...interface{}) {}

func (r *recordingLogger) Info(msg string, fields ...interface{}) {}

func (r *recordingLogger) Warn(msg string, fields ...interface{}) {
	r.warnings = append(r.warnings, msg)
}

func (r *recordingLogger) Error(msg string, fields ...interface{}) {}

func TestSlowQueryHook(t *testing.T) {
	logger := &recordingLogger{}
	hook := &SlowQueryHook{SlowTime: time.Millisecond, Logger: logger}

	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now().Add(time.Second)})
	assert.Empty(t, logger.warnings)

	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now().Add(-time.Second)})
	assert.Len(t, logger.warnings, 1)
}

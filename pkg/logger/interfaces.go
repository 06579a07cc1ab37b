/*
 * Copyright 2025 Carver Automation Corporation.
 *
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

package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the structured logger handed to every component. Each method
// returns a zerolog event or context so call sites chain fields the zerolog
// way.
type Logger interface {
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	Fatal() *zerolog.Event
	Panic() *zerolog.Event
	With() zerolog.Context
	WithComponent(component string) zerolog.Logger
	WithFields(fields map[string]interface{}) zerolog.Logger
	SetLevel(level zerolog.Level)
	SetDebug(debug bool)
}

// NewTestLogger returns a Logger that discards everything.
func NewTestLogger() Logger {
	return NewWriterLogger(io.Discard, zerolog.Disabled)
}

// NewWriterLogger returns a Logger writing JSON lines at level and above
// to w. Tests use it to assert on what a component logged.
func NewWriterLogger(w io.Writer, level zerolog.Level) Logger {
	return FromZerolog(zerolog.New(w).Level(level).With().Timestamp().Logger())
}

// FromZerolog adapts an already configured zerolog logger.
func FromZerolog(zl zerolog.Logger) Logger {
	return &writerLogger{zl: zl}
}

type writerLogger struct {
	zl zerolog.Logger
}

func (l *writerLogger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *writerLogger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *writerLogger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *writerLogger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *writerLogger) Error() *zerolog.Event { return l.zl.Error() }
func (l *writerLogger) Fatal() *zerolog.Event { return l.zl.Fatal() }
func (l *writerLogger) Panic() *zerolog.Event { return l.zl.Panic() }
func (l *writerLogger) With() zerolog.Context { return l.zl.With() }

func (l *writerLogger) WithComponent(component string) zerolog.Logger {
	return l.zl.With().Str("component", component).Logger()
}

func (l *writerLogger) WithFields(fields map[string]interface{}) zerolog.Logger {
	return l.zl.With().Fields(fields).Logger()
}

func (l *writerLogger) SetLevel(level zerolog.Level) { l.zl = l.zl.Level(level) }

func (l *writerLogger) SetDebug(debug bool) {
	if debug {
		l.SetLevel(zerolog.DebugLevel)

		return
	}

	l.SetLevel(zerolog.InfoLevel)
}

// Copyright 2026 The incplan Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package view

import (
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
)

// LogLevel is the CLI's own verbosity enum, translated to slog.Level at
// the handler boundary.
type LogLevel int

// Logger is the minimal logging surface the planner's remark sink and
// the CLI's own lifecycle messages are rendered through.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelSilent
)

func (l LogLevel) toSlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	case LogLevelSilent:
		return slog.Level(100)
	default:
		return slog.Level(100)
	}
}

type humanLogger struct {
	logger *slog.Logger
}

type jsonLogger struct {
	logger *slog.Logger
}

var _ Logger = (*humanLogger)(nil)
var _ Logger = (*jsonLogger)(nil)

func rewriteLogLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey && len(groups) == 0 {
		level := a.Value.Any().(slog.Level)

		var levelText string
		switch level {
		case slog.LevelDebug:
			levelText = "DEBUG"
		case slog.LevelInfo:
			levelText = color.GreenString("INFO")
		case slog.LevelWarn:
			levelText = color.YellowString("WARN")
		case slog.LevelError:
			levelText = color.RedString("ERROR")
		default:
			levelText = level.String()
		}
		a.Value = slog.StringValue(levelText)
	}
	return a
}

func (l *humanLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *humanLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *humanLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *humanLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *jsonLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *jsonLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *jsonLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *jsonLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// NewHumanLogger creates a human-readable slog+tint logger.
func NewHumanLogger(w io.Writer, level LogLevel) Logger {
	opts := &tint.Options{
		Level:       level.toSlogLevel(),
		TimeFormat:  time.DateTime,
		ReplaceAttr: rewriteLogLevel,
	}
	handler := tint.NewHandler(w, opts)
	return &humanLogger{logger: slog.New(handler)}
}

// NewJSONLogger creates a JSON-structured slog logger.
func NewJSONLogger(w io.Writer, level LogLevel) Logger {
	opts := &slog.HandlerOptions{Level: level.toSlogLevel()}
	handler := slog.NewJSONHandler(w, opts)
	return &jsonLogger{logger: slog.New(handler)}
}

// NewNopLogger discards all output.
func NewNopLogger() Logger {
	opts := &slog.HandlerOptions{Level: slog.Level(100)}
	handler := slog.NewJSONHandler(io.Discard, opts)
	return &jsonLogger{logger: slog.New(handler)}
}

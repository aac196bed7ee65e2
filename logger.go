// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import "github.com/twmb/franz-go/pkg/kgo"

// nopLogger, the default logger, drops everything.
type nopLogger struct{}

func (*nopLogger) Level() kgo.LogLevel { return kgo.LogLevelNone }
func (*nopLogger) Log(kgo.LogLevel, string, ...any) {
}

// logAt writes to l only when its level admits lvl, so callers can
// build key/value pairs without checking the level first.
func logAt(l kgo.Logger, lvl kgo.LogLevel, msg string, keyvals ...any) {
	if l == nil || l.Level() < lvl {
		return
	}
	l.Log(lvl, msg, keyvals...)
}

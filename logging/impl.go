package logging

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var stdout = os.Stdout

// callerSkip is the number of frames between a zap call and the code that called our Logger.
const callerSkip = 4

type impl struct {
	name  string
	level AtomicLevel
	cores []zapcore.Core
}

func newImpl(name string, level Level, out zapcore.WriteSyncer) *impl {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(NewLoggerConfig()), out, zapcore.DebugLevel)
	return &impl{name: name, level: NewAtomicLevelAt(level), cores: []zapcore.Core{core}}
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

// Sublogger returns a logger named "<name>.<subname>" that starts at the parent's level but can be
// changed independently afterwards.
func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}

	return &impl{
		name:  newName,
		level: NewAtomicLevelAt(imp.level.Get()),
		cores: imp.cores,
	}
}

// AsZap builds a sugared zap logger writing to the same outputs at the current level.
func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.sugared(imp.level.Get())
}

func (imp *impl) sugared(minLevel Level) *zap.SugaredLogger {
	core := zapcore.NewTee(imp.cores...)
	filtered, err := zapcore.NewIncreaseLevelCore(core, minLevel.AsZap())
	if err != nil {
		filtered = core
	}
	ret := zap.New(filtered, zap.AddCaller(), zap.AddCallerSkip(callerSkip)).Sugar()
	if imp.name != "" {
		ret = ret.Named(imp.name)
	}
	return ret
}

// Sync flushes every output. Consoles and pipes cannot be synced, so EINVAL and ENOTTY are dropped.
func (imp *impl) Sync() error {
	var errs []error
	for _, core := range imp.cores {
		if err := core.Sync(); err != nil && !isUnsyncable(err) {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

func isUnsyncable(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}

func (imp *impl) shouldLog(logLevel Level) bool {
	return logLevel >= imp.level.Get()
}

func (imp *impl) log(logLevel Level, fn func(*zap.SugaredLogger)) {
	imp.logMaybeForced(logLevel, false, fn)
}

func (imp *impl) logCtx(ctx context.Context, logLevel Level, fn func(*zap.SugaredLogger)) {
	imp.logMaybeForced(logLevel, IsDebugMode(ctx), fn)
}

// logMaybeForced keeps the call depth identical for every public method so the caller skip below
// points at the code that called the logger.
func (imp *impl) logMaybeForced(logLevel Level, force bool, fn func(*zap.SugaredLogger)) {
	if !force && !imp.shouldLog(logLevel) {
		return
	}
	fn(imp.sugared(logLevel))
}

func (imp *impl) Debug(args ...interface{}) {
	imp.log(DEBUG, func(l *zap.SugaredLogger) { l.Debug(args...) })
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.log(DEBUG, func(l *zap.SugaredLogger) { l.Debugf(template, args...) })
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.log(DEBUG, func(l *zap.SugaredLogger) { l.Debugw(msg, keysAndValues...) })
}

func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	imp.logCtx(ctx, DEBUG, func(l *zap.SugaredLogger) { l.Debugf(template, args...) })
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.logCtx(ctx, DEBUG, func(l *zap.SugaredLogger) { l.Debugw(msg, keysAndValues...) })
}

func (imp *impl) Info(args ...interface{}) {
	imp.log(INFO, func(l *zap.SugaredLogger) { l.Info(args...) })
}

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.log(INFO, func(l *zap.SugaredLogger) { l.Infof(template, args...) })
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.log(INFO, func(l *zap.SugaredLogger) { l.Infow(msg, keysAndValues...) })
}

func (imp *impl) Warn(args ...interface{}) {
	imp.log(WARN, func(l *zap.SugaredLogger) { l.Warn(args...) })
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.log(WARN, func(l *zap.SugaredLogger) { l.Warnf(template, args...) })
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.log(WARN, func(l *zap.SugaredLogger) { l.Warnw(msg, keysAndValues...) })
}

func (imp *impl) Error(args ...interface{}) {
	imp.log(ERROR, func(l *zap.SugaredLogger) { l.Error(args...) })
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.log(ERROR, func(l *zap.SugaredLogger) { l.Errorf(template, args...) })
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.log(ERROR, func(l *zap.SugaredLogger) { l.Errorw(msg, keysAndValues...) })
}

type debugLogKeyType int

const debugLogKeyID = debugLogKeyType(iota)

// EnableDebugMode returns a new context with debug logging state attached. Loggers called through
// CDebugf/CDebugw with that context log at debug level regardless of their configured level.
func EnableDebugMode(ctx context.Context, debugLogKey string) context.Context {
	if debugLogKey == "" {
		debugLogKey = "debug"
	}
	return context.WithValue(ctx, debugLogKeyID, debugLogKey)
}

// IsDebugMode returns whether the input context has debug logging enabled.
func IsDebugMode(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	key, _ := ctx.Value(debugLogKeyID).(string)
	return key != ""
}

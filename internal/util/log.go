package util

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var (
	logMu     sync.Mutex
	logLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	useColors = true
	logFile   *os.File
	sugar     atomic.Pointer[zap.SugaredLogger]
)

func init() {
	rebuildLogger()
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		logLevel.SetLevel(zapcore.DebugLevel)
	}
}

// SetQuiet restricts console output to warnings and errors
func SetQuiet(quiet bool) {
	if quiet {
		logLevel.SetLevel(zapcore.WarnLevel)
	}
}

// IsQuiet reports whether info-level console output is suppressed
func IsQuiet() bool {
	return !logLevel.Enabled(zapcore.InfoLevel)
}

// SetColors enables or disables colored console output
func SetColors(enabled bool) {
	logMu.Lock()
	defer logMu.Unlock()
	useColors = enabled
	rebuildLocked()
}

// SetLogFile tees all log output (debug and up, regardless of console
// level) into a JSON-encoded file, appending if it already exists.
func SetLogFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logMu.Lock()
	defer logMu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	rebuildLocked()
	return nil
}

// Sync flushes buffered log output; call before process exit.
func Sync() {
	if l := sugar.Load(); l != nil {
		_ = l.Sync()
	}
}

func rebuildLogger() {
	logMu.Lock()
	defer logMu.Unlock()
	rebuildLocked()
}

func rebuildLocked() {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	if useColors && term.IsTerminal(int(os.Stderr.Fd())) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), logLevel)

	if logFile != nil {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(logFile), zapcore.DebugLevel)
		core = zapcore.NewTee(core, fileCore)
	}

	sugar.Store(zap.New(core).Sugar())
}

// DebugLog logs debug messages
func DebugLog(format string, args ...interface{}) {
	sugar.Load().Debugf(format, args...)
}

// InfoLog logs informational messages
func InfoLog(format string, args ...interface{}) {
	sugar.Load().Infof(format, args...)
}

// WarnLog logs warning messages
func WarnLog(format string, args ...interface{}) {
	sugar.Load().Warnf(format, args...)
}

// ErrorLog logs error messages
func ErrorLog(format string, args ...interface{}) {
	sugar.Load().Errorf(format, args...)
}

// SuccessLog logs completion messages; they share the info level so
// --quiet suppresses them along with ordinary progress output.
func SuccessLog(format string, args ...interface{}) {
	sugar.Load().Infof(format, args...)
}

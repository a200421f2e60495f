package util

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func resetLogLevel() {
	logLevel.SetLevel(zapcore.InfoLevel)
}

func TestSetQuietRestrictsToWarnings(t *testing.T) {
	defer resetLogLevel()

	if IsQuiet() {
		t.Fatal("expected info level by default")
	}
	SetQuiet(true)
	if !IsQuiet() {
		t.Error("SetQuiet(true) should suppress info output")
	}
	if !logLevel.Enabled(zapcore.WarnLevel) {
		t.Error("warnings must stay enabled under --quiet")
	}

	// A false flag never loosens the level.
	SetQuiet(false)
	if !IsQuiet() {
		t.Error("SetQuiet(false) should leave the level alone")
	}
}

func TestSetVerboseEnablesDebug(t *testing.T) {
	defer resetLogLevel()

	if logLevel.Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be off by default")
	}
	SetVerbose(true)
	if !logLevel.Enabled(zapcore.DebugLevel) {
		t.Error("SetVerbose(true) should enable debug output")
	}

	SetVerbose(false)
	if !logLevel.Enabled(zapcore.DebugLevel) {
		t.Error("SetVerbose(false) should leave the level alone")
	}
}

func TestLogHelpersDoNotPanic(t *testing.T) {
	defer resetLogLevel()
	SetVerbose(true)

	DebugLog("debug %d", 1)
	InfoLog("info %s", "x")
	WarnLog("warn")
	ErrorLog("error %v", nil)
	SuccessLog("done")
	Sync()
}

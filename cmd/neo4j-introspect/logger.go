package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a development-style console logger on w.
// Levels are coloured when w is a terminal.
func newLogger(w io.Writer, debug bool) *zap.Logger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), level)

	return zap.New(core)
}

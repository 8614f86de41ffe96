package logcfg

import (
	"fmt"
	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
)

// DefaultLogFile is used when no log file name is configured.
const DefaultLogFile = "gramGPT.log"

// Options describes the logger setup. Zero rotation values keep 50MB files, 3 backups
// and 30 days.
type Options struct {
	Level      string // debug, info, warn...
	FileName   string
	Format     string // text или json
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// RunLoggerConfig производит настройку logrus устанавливая уровень логирования,
// формат логируемой информации и настройки записи логов в файл.
// The returned Closer releases the log file and should be closed on shutdown.
func RunLoggerConfig(opts Options) (io.Closer, error) {
	logLevel, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	formatter, err := newFormatter(opts.Format)
	if err != nil {
		return nil, err
	}

	rotation := &lumberjack.Logger{
		Filename:   opts.FileName,
		MaxSize:    orDefault(opts.MaxSizeMB, 50),
		MaxBackups: orDefault(opts.MaxBackups, 3),
		MaxAge:     orDefault(opts.MaxAgeDays, 30),
	}
	if rotation.Filename == "" {
		rotation.Filename = DefaultLogFile
	}

	logrus.SetLevel(logLevel)
	logrus.SetReportCaller(true)
	logrus.SetFormatter(formatter)
	// Пишем одновременно в stdout и в ротируемый файл
	logrus.SetOutput(io.MultiWriter(os.Stdout, rotation))
	return rotation, nil
}

func newFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return &logrus.TextFormatter{CallerPrettyfier: callerPrettyfier}, nil
	case "json":
		return &logrus.JSONFormatter{CallerPrettyfier: callerPrettyfier}, nil
	}
	return nil, fmt.Errorf("unknown log format %q (expected 'text' or 'json')", format)
}

// callerPrettyfier prints the caller as file.line.function.
func callerPrettyfier(f *runtime.Frame) (function string, file string) {
	_, filename := path.Split(f.File)
	return "", fmt.Sprintf("%s.%d.%s", filename, f.Line, f.Function)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

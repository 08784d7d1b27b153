package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sncix/pinyin-annotation/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NameField is the entry field holding the logger name printed in file lines.
const NameField = "logger"

// Options controls where and how New writes.
type Options struct {
	Level config.LogLevel
	// File is the log file path. Empty means stderr only.
	File       string
	MaxSizeMB  int
	MaxBackups int
	// Console mirrors file output to stderr.
	Console bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a logger from opts. The returned closer releases the log file.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetLevel(parseLevel(opts.Level))

	if opts.File == "" {
		log.SetOutput(os.Stderr)
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			DisableQuote:    true,
			PadLevelText:    true,
		})
		return log, nopCloser{}, nil
	}

	if dir := filepath.Dir(opts.File); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	// lumberjack opens the file in append mode and rotates by size.
	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	var out io.Writer = file
	if opts.Console {
		out = io.MultiWriter(file, os.Stderr)
	}
	log.SetOutput(out)
	log.SetFormatter(&FileFormatter{})
	return log, file, nil
}

// Named returns an entry that prints as name in file lines.
func Named(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField(NameField, name)
}

// FileName is the per-run log file: results_luna_{hanzi}_{modeltag}.log.
func FileName(dir, hanziTag, modelName string) string {
	return filepath.Join(dir, fmt.Sprintf("results_luna_%s.log", config.RunTag(hanziTag, modelName)))
}

// FileFormatter renders "timestamp name:LEVEL:message". Fields other than the
// logger name follow the message as sorted key=value pairs.
type FileFormatter struct{}

const fileTimestampFormat = "2006-01-02 15:04:05,000"

func (f *FileFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	name := "root"
	if v, ok := entry.Data[NameField]; ok {
		name = fmt.Sprint(v)
	}

	var b bytes.Buffer
	b.WriteString(entry.Time.Format(fileTimestampFormat))
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteByte(':')
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteByte(':')
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != NameField {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func parseLevel(level config.LogLevel) logrus.Level {
	switch level {
	case config.Debug:
		return logrus.DebugLevel
	case config.Warn:
		return logrus.WarnLevel
	case config.Error:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// SetLevel sets the log level directly
func SetLevel(log *logrus.Logger, levelStr string) error {
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level: %v", err)
	}
	log.SetLevel(level)
	return nil
}

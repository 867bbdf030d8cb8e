// Package logging creates the zerolog logger used by the command line tool and server
package logging

// logging.go writes human readable logs to the console and, optionally, JSON logs to a rotated file

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the "log" section of the configuration
type Config struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`        // if empty nothing is written to file
	MaxSize    int    `koanf:"max_size"`    // megabytes before the file is rotated
	MaxBackups int    `koanf:"max_backups"` // number of rotated files kept
	MaxAge     int    `koanf:"max_age"`     // days a rotated file is kept
	NoColor    bool   `koanf:"no_color"`
}

// New returns a logger writing to console and the configured file. The returned Closer
// closes the file (it does nothing if there is no file).
func New(c Config, console io.Writer) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if c.Level != "" {
		var err error
		if level, err = zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("log level %q: %w", c.Level, err)
		}
	}

	writers := make([]io.Writer, 0, 2)
	if console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.DateTime,
			NoColor:    c.NoColor,
		})
	}
	var closer io.Closer = nopCloser{}
	if c.File != "" {
		file := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			LocalTime:  true,
		}
		writers = append(writers, file)
		closer = file
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 1:
		w = writers[0]
	case 2:
		w = zerolog.MultiLevelWriter(writers...)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LogPrefix  = "[go-dshk]"
	HelpLevels = "Must be one of: error, warning, info, debug."
)

const (
	LogFileMaxSizeMB  = 25
	LogFileMaxAgeDays = 7
	LogFileMaxBackups = 5
)

var levelMapping = map[string]logrus.Level{
	"error":   logrus.ErrorLevel,
	"warning": logrus.WarnLevel,
	"info":    logrus.InfoLevel,
	"debug":   logrus.DebugLevel,
}

var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return l
}

// ValidLevel reports whether strLevel names one of the levels
func ValidLevel(strLevel string) bool {
	_, ok := levelMapping[strLevel]
	return ok
}

func SetLevel(strLevel string) error {
	level, ok := levelMapping[strLevel]
	if !ok {
		return errors.New("Wrong log level. " + HelpLevels)
	}
	logger.SetLevel(level)
	return nil
}

func Init(out io.Writer, strLevel string) {
	logger.SetOutput(out)
	if err := SetLevel(strLevel); err != nil {
		panic(err)
	}
}

// InitFile sends log lines to out and to a size rotated file
func InitFile(out io.Writer, strLevel string, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    LogFileMaxSizeMB,
		MaxAge:     LogFileMaxAgeDays,
		MaxBackups: LogFileMaxBackups,
	}
	if err := SetLevel(strLevel); err != nil {
		return err
	}
	logger.SetOutput(io.MultiWriter(out, rotator))
	return nil
}

func entry() *logrus.Entry {
	return logger.WithField("app", LogPrefix)
}

// WithFields returns an entry carrying structured fields, e.g. a record offset
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return entry().WithFields(fields)
}

func Error(format string, v ...interface{}) {
	entry().Errorf(format, v...)
}

func Warning(format string, v ...interface{}) {
	entry().Warnf(format, v...)
}

func Info(format string, v ...interface{}) {
	entry().Infof(format, v...)
}

func Debug(format string, v ...interface{}) {
	entry().Debugf(format, v...)
}

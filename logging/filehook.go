package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// FileHook mirrors every log entry into a json logfile so the console
// output stays readable while the file keeps the structured form.
type FileHook struct {
	file      *os.File
	formatter *logrus.JSONFormatter
}

func NewFileHook(path string, flag int, chmod os.FileMode) (*FileHook, error) {
	logFile, err := os.OpenFile(path, flag, chmod)
	if err != nil {
		return nil, err
	}

	return &FileHook{file: logFile, formatter: &logrus.JSONFormatter{}}, nil
}

func (hook *FileHook) Fire(entry *logrus.Entry) error {
	formatted, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}

	_, err = hook.file.Write(formatted)
	return err
}

func (hook *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

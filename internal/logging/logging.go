// Package logging configures the package-level logger shared by the
// disk scheduler, replacer and buffer pool.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger. New-page, fetch-miss, delete, record-access
// and evict transitions are logged at Debug; disk I/O errors seen by
// the scheduler are logged at Error. Illegal-state panics in the
// replacer are not logged first.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetLevel(logrus.InfoLevel)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Configure adjusts the shared logger's level and output. An empty
// level leaves the current level untouched.
func Configure(level string, out io.Writer) error {
	if out != nil {
		Log.SetOutput(out)
	}
	if level == "" {
		return nil
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetLevel(parsed)
	return nil
}

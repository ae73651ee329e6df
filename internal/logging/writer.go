package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

// CombinedWriter fans each write out to every writer, collecting errors
// instead of stopping at the first failure.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: writers}
}

func (cw *CombinedWriter) Write(p []byte) (n int, err error) {
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		if written > n {
			n = written
		}
	}
	return n, err
}

// Output picks the log destination. With no file name logs go to stderr.
// Otherwise they go to a rotated file, and also to stderr when alsoStderr is
// set. The returned closer releases the file.
func Output(fileName string, alsoStderr bool) (io.Writer, func() error) {
	if fileName == "" {
		return os.Stderr, func() error { return nil }
	}
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}

	rotated := &lumberjack.Logger{
		Filename:  fileName,
		MaxSize:   50, // megabytes
		LocalTime: false,
		Compress:  true,
	}
	if alsoStderr {
		return NewCombinedWriter(os.Stderr, rotated), rotated.Close
	}
	return rotated, rotated.Close
}

package common

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

var (
	logger = log.New(os.Stderr, "[flvgate] ", log.LstdFlags|log.Lmicroseconds)
	quiet  atomic.Bool
)

// SetLogOutput redirects all log output, e.g. to a rotating file.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetQuiet suppresses Debugf output. Logf and Warnf are never suppressed.
func SetQuiet(q bool) {
	quiet.Store(q)
}

func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logger.Printf("WARNING: "+format, args...)
}

// Debugf logs per-tag detail such as resync positions.
func Debugf(format string, args ...interface{}) {
	if quiet.Load() {
		return
	}
	logger.Printf(format, args...)
}

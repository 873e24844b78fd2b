package logging

import (
	"io"
	"log"
	"os"
)

// Init sends the standard logger to stdout with microsecond timestamps
func Init() {
	InitWithOutput(os.Stdout)
}

// InitWithOutput configures the standard logger to write to w
func InitWithOutput(w io.Writer) {
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

package resources

import (
	"log"
	"time"

	"github.com/dustin/go-humanize"
)

// ReadCounter counts the number of bytes written to it, and every 10 seconds,
// it prints a message reporting the number of bytes read so far. It sits
// behind an io.TeeReader on slow content fetches.
type ReadCounter struct {
	Total    uint64
	Last     time.Time
	Reported bool
	Path     string
	Size     uint64
}

func NewReadCounter(path string, size uint64) *ReadCounter {
	return &ReadCounter{
		Last: time.Now(),
		Path: path,
		Size: size,
	}
}

func (rc *ReadCounter) Write(p []byte) (int, error) {
	n := len(p)
	rc.Total += uint64(n)
	if time.Since(rc.Last).Seconds() > 10 {
		rc.Reported = true
		rc.Last = time.Now()
		log.Printf("Reading %s... %s / %s completed.", rc.Path,
			humanize.Bytes(rc.Total), humanize.Bytes(rc.Size))
	}
	return n, nil
}

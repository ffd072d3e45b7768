// Package tape is the append-only record of executed trades. Records are
// protobuf wire format framed with a length and CRC-32, written to segment
// files that rotate at a size threshold. The tape is audit output: it is
// scanned by tools and tests, never replayed into the book.
package tape

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

type Config struct {
	Dir         string
	SegmentSize int64
}

const defaultSegmentSize = 16 * 1024 * 1024

type Tape struct {
	mu       sync.Mutex
	dir      string
	segSize  int64
	current  *segment
	segIndex int
}

func Open(cfg Config) (*Tape, error) {
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = defaultSegmentSize
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	// Resume appending to the highest existing segment.
	index := 0
	if paths, err := filepath.Glob(filepath.Join(cfg.Dir, "tape-*.seg")); err == nil && len(paths) > 0 {
		sort.Strings(paths)
		index = len(paths) - 1
	}

	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, err
	}
	return &Tape{
		dir:      cfg.Dir,
		segSize:  cfg.SegmentSize,
		current:  seg,
		segIndex: index,
	}, nil
}

// Append writes one trade record and rotates the segment if it crossed the
// size threshold.
func (t *Tape) Append(rec *Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec.Time == 0 {
		rec.Time = time.Now().UnixNano()
	}
	if err := t.current.append(Encode(rec)); err != nil {
		return err
	}
	if t.current.offset >= t.segSize {
		return t.rotate()
	}
	return nil
}

func (t *Tape) rotate() error {
	_ = t.current.close()
	t.segIndex++
	seg, err := openSegment(t.dir, t.segIndex)
	if err != nil {
		return err
	}
	t.current = seg
	return nil
}

func (t *Tape) Sync() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current.sync()
}

func (t *Tape) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current.close()
}

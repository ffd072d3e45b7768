package tape

import (
	"bufio"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Reader iterates trade records across all segments in a tape directory,
// oldest first.
type Reader struct {
	paths []string
	file  *os.File
	buf   *bufio.Reader
	rec   *Record
	err   error
}

func OpenReader(dir string) (*Reader, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "tape-*.seg"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return &Reader{paths: paths}, nil
}

// Next advances to the next record. It returns false at the end of the tape
// or on the first corrupt frame; Err distinguishes the two.
func (r *Reader) Next() bool {
	for {
		if r.buf == nil {
			if len(r.paths) == 0 {
				return false
			}
			f, err := os.Open(r.paths[0])
			if err != nil {
				r.err = err
				return false
			}
			r.paths = r.paths[1:]
			r.file = f
			r.buf = bufio.NewReader(f)
		}

		rec, err := r.readFrame()
		if err == io.EOF {
			_ = r.file.Close()
			r.file, r.buf = nil, nil
			continue // next segment
		}
		if err != nil {
			r.err = err
			return false
		}
		r.rec = rec
		return true
	}
}

func (r *Reader) readFrame() (*Record, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r.buf, header); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, ErrCorruptRecord
		}
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:4])
	want := binary.BigEndian.Uint32(header[4:8])

	body := make([]byte, size)
	if _, err := io.ReadFull(r.buf, body); err != nil {
		return nil, ErrCorruptRecord
	}
	if crc32.ChecksumIEEE(body) != want {
		return nil, ErrCorruptRecord
	}
	return Decode(body)
}

func (r *Reader) Record() *Record { return r.rec }
func (r *Reader) Err() error      { return r.err }

func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

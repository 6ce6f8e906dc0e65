package pdv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Write is the outcome of an asynchronous rewrite of a store file.
//
// In-memory state is updated before the write is issued; a failed Write
// means the file lags behind memory, not that the operation was undone.
type Write struct {
	done chan struct{}
	err  error
}

func newWrite() *Write { return &Write{done: make(chan struct{})} }

// written returns an already completed Write.
func written(err error) *Write {
	w := newWrite()
	w.resolve(err)
	return w
}

func (w *Write) resolve(err error) {
	w.err = err
	close(w.done)
}

// Done returns a channel closed when the write has completed.
func (w *Write) Done() <-chan struct{} { return w.done }

// Wait blocks until the write has completed and returns its error, a
// *PersistenceError.
func (w *Write) Wait() error {
	<-w.done
	return w.err
}

// joinWrites returns a Write completed when all ws are, reporting all their
// errors. Nil entries are ignored.
func joinWrites(ws ...*Write) *Write {
	j := newWrite()
	go func() {
		var errs error
		for _, w := range ws {
			if w != nil {
				errs = errors.Join(errs, w.Wait())
			}
		}
		j.resolve(errs)
	}()
	return j
}

// fileStore persists a whole document into a single file.
//
// Each save encodes the document synchronously, so that it captures the
// state at call time, then writes it on a goroutine. Writes are sequenced:
// a write issued earlier never overwrites the result of a later one.
type fileStore struct {
	path   string
	logger *zap.Logger

	issued  atomic.Uint64
	pending sync.WaitGroup

	mu      sync.Mutex // serialises file writes
	written uint64     // sequence of the last successful write
}

func newFileStore(path string, logger *zap.Logger) *fileStore {
	return &fileStore{path: path, logger: logger}
}

// save schedules a rewrite of the file with the output of encode.
// A nil store only runs encode, for in-memory use.
func (s *fileStore) save(encode func(io.Writer) error) *Write {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		if s == nil {
			return written(err)
		}
		perr := &PersistenceError{Op: "encode", Path: s.path, Err: err}
		s.logger.Error("could not encode store", zap.String("path", s.path), zap.Error(err))
		return written(perr)
	}
	if s == nil {
		return written(nil)
	}

	w := newWrite()
	seq := s.issued.Add(1)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if seq < s.written {
			// a later snapshot is already on disk.
			w.resolve(nil)
			return
		}
		if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
			perr := &PersistenceError{Op: "write", Path: s.path, Err: err}
			s.logger.Error("could not persist store", zap.String("path", s.path), zap.Uint64("seq", seq), zap.Error(err))
			w.resolve(perr)
			return
		}
		s.written = seq
		s.logger.Debug("store persisted", zap.String("path", s.path), zap.Uint64("seq", seq), zap.Int("bytes", buf.Len()))
		w.resolve(nil)
	}()
	return w
}

// flush waits for every write issued so far.
func (s *fileStore) flush() {
	if s != nil {
		s.pending.Wait()
	}
}

// load reads the file content. A missing file is reported as (nil, nil).
func (s *fileStore) load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: s.path, Err: err}
	}
	return data, nil
}

// quarantine moves an unreadable file aside so that the next rewrite does
// not destroy it.
func (s *fileStore) quarantine() {
	aside := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(s.path, aside); err != nil {
		s.logger.Warn("could not move unreadable store aside", zap.String("path", s.path), zap.Error(err))
		return
	}
	s.logger.Warn("unreadable store moved aside", zap.String("path", s.path), zap.String("backup", aside))
}

// writeFileAtomic replaces the file at path with data, through a temporary
// file renamed over the destination.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

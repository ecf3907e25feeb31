package fsutil

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdedit/internal/logging"
)

// SaverOptions controls a Saver.
type SaverOptions struct {
	// Backup keeps a sidecar copy of the file before the first write.
	Backup bool

	// Force overwrites changes made on disk since the last read or write.
	Force bool

	// Logger receives save diagnostics. Nil uses the default logger.
	Logger *log.Logger
}

// Saver writes successive revisions of one document. It refuses to
// overwrite a file that changed on disk since it last read or wrote it.
// It is safe for concurrent use.
type Saver struct {
	path   string
	opts   SaverOptions
	logger *log.Logger

	mu       sync.Mutex
	snap     *Snapshot
	backedUp bool
	writes   int
}

// NewSaver creates a Saver for path. snap is the snapshot taken when the
// document was loaded, or nil for a file that does not exist yet.
func NewSaver(path string, snap *Snapshot, opts SaverOptions) *Saver {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Saver{path: path, opts: opts, logger: logger, snap: snap}
}

// Save writes text unless it equals what is on disk already.
func (s *Saver) Save(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content := []byte(text)
	mode := DefaultFileMode
	if s.snap != nil {
		if !s.opts.Force {
			changed, err := s.snap.Changed(ctx)
			if err != nil {
				return err
			}
			if changed {
				return fmt.Errorf("%w: %s", ErrConflict, s.path)
			}
		}
		if sha256.Sum256(content) == s.snap.Hash {
			return nil
		}
		mode = s.snap.Mode.Perm()
	}

	if s.opts.Backup && !s.backedUp {
		created, err := Backup(ctx, s.path)
		if err != nil {
			return err
		}
		s.backedUp = true
		if created {
			s.logger.Debug("backup created", logging.FieldPath, BackupPath(s.path))
		}
	}

	if err := WriteAtomic(ctx, s.path, content, mode); err != nil {
		return err
	}
	_, snap, err := Load(ctx, s.path)
	if err != nil {
		return err
	}
	s.snap = snap
	s.writes++
	s.logger.Debug("document saved", logging.FieldPath, s.path, logging.FieldBytes, len(content))
	return nil
}

// Writes returns the number of writes Save performed.
func (s *Saver) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

package iconic

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Saver delivers the serialized icon pack to the user.
type Saver interface {
	Save(name string, data []byte) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(name string, data []byte) error

func (f SaverFunc) Save(name string, data []byte) error { return f(name, data) }

// FileSaver writes the archive into a file. The content goes to a temporary
// file created next to the destination, which is renamed into place once fully
// written. The temporary file never outlives Save, whatever the outcome.
type FileSaver struct {
	// Path is the destination file. When empty the archive name is used
	// inside Dir (or the working directory).
	Path string
	Dir  string
	Perm os.FileMode
}

// Save implements the Saver interface.
func (s *FileSaver) Save(name string, data []byte) (err error) {
	dst := s.Path
	if len(dst) == 0 {
		dst = filepath.Join(s.Dir, name)
	}
	perm := s.Perm
	if perm == 0 {
		perm = 0644
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create the temporary file: %w", err)
	}
	defer func() {
		// A second Close only reports os.ErrClosed.
		tmp.Close()
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("unable to write the archive: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("unable to flush the archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("unable to close the archive: %w", err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("unable to set the archive permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("unable to move the archive into place: %w", err)
	}
	return nil
}

// WriterSaver streams the archive into a writer, e.g. stdout.
type WriterSaver struct {
	W io.Writer
}

// Save implements the Saver interface.
func (s *WriterSaver) Save(name string, data []byte) error {
	if _, err := s.W.Write(data); err != nil {
		return fmt.Errorf("unable to write %s: %w", name, err)
	}
	return nil
}

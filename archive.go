package iconic

import (
	"bytes"
	"errors"
	"time"

	"github.com/klauspost/compress/zip"
)

// DefaultArchiveName is the file name of the downloaded icon pack.
const DefaultArchiveName = "iconic-pack.zip"

// Assemble serializes a sealed manifest into a zip archive. Entries are written
// in manifest order and deflated.
func Assemble(m *Manifest) ([]byte, error) {
	if !m.Sealed() {
		return nil, &PackagingError{Err: errors.New("manifest is not sealed")}
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := time.Now()

	for _, a := range m.artifacts {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     a.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, &PackagingError{Err: err}
		}
		if _, err := w.Write(a.Data); err != nil {
			return nil, &PackagingError{Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &PackagingError{Err: err}
	}
	return buf.Bytes(), nil
}

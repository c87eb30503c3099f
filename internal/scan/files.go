package scan

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is one entry of a selection. Open is called at most once.
type File struct {
	Name string
	Size int64
	Type string
	Open func() (io.ReadCloser, error)
}

func FromPath(path string) (File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	return File{
		Name: filepath.Base(path),
		Size: st.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func FromMultipart(fh *multipart.FileHeader) File {
	return File{
		Name: fh.Filename,
		Size: fh.Size,
		Type: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

var textType = regexp.MustCompile(`text.*|application/(json|javascript|xml|x-sh)`)

func IsTextType(mimeType string) bool {
	return textType.MatchString(mimeType)
}

// knownType reports whether the declared type says anything useful.
func knownType(mimeType string) bool {
	t := strings.TrimSpace(mimeType)
	return t != "" && t != "application/octet-stream"
}

// sniff returns the detected MIME type of head without parameters.
func sniff(head []byte) string {
	t := mimetype.Detect(head).String()
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return t
}

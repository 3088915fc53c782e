package metadata

import (
	"bufio"
	"bytes"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pipis/pkg/errors"
)

// Version returns the installed version of the package, from the Version
// header of METADATA or PKG-INFO, or else from the metadata directory name
func (r *Reader) Version(name string) (string, error) {
	dist, err := r.Distribution(name)
	if err != nil {
		return "", err
	}

	file := "METADATA"
	if dist.IsEgg() {
		file = "PKG-INFO"
	}

	if data, err := r.fs.ReadFile(filepath.Join(dist.Dir, file)); err == nil {
		tp := textproto.NewReader(bufio.NewReader(bytes.NewReader(data)))
		header, _ := tp.ReadMIMEHeader()
		if v := strings.TrimSpace(header.Get("Version")); v != "" {
			return v, nil
		}
	}

	if v := versionPart(filepath.Base(dist.Dir)); v != "" {
		return v, nil
	}
	return "", errors.Newf(errors.ErrMetadata, "cannot determine version of %s", name).
		WithDetail("package", name)
}

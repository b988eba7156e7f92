package container

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ZipContainer reads OOXML and ODF packages.
type ZipContainer struct {
	path    string
	reader  *zip.ReadCloser
	members []Member
}

// OpenZip opens a zip-based office package.
func OpenZip(path string) (*ZipContainer, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %v", path, ErrUnreadable, err)
	}
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrUnreadable, err)
	}
	zc := &ZipContainer{path: path, reader: r}
	for _, f := range r.File {
		zc.members = append(zc.members, Member{Name: f.Name, Size: int64(f.UncompressedSize64)})
	}
	return zc, nil
}

func (z *ZipContainer) Path() string { return z.path }

func (z *ZipContainer) Members() []Member { return z.members }

// ReadMember implements Container
func (z *ZipContainer) ReadMember(name string) ([]byte, error) {
	for _, f := range z.reader.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", name, ErrUnreadable, err)
		}
		defer rc.Close()
		data, err := readCapped(rc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", name, ErrUnreadable, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("member %s: %w", name, ErrNotFound)
}

func (z *ZipContainer) Close() error { return z.reader.Close() }

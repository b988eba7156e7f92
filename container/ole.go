package container

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
)

// OLEContainer exposes the streams of a compound file (xls, ppt, msg,
// vbaProject.bin) as members named by their storage path.
type OLEContainer struct {
	path    string
	members []Member
}

// OpenOLE enumerates the streams of a compound file.
func OpenOLE(path string) (*OLEContainer, error) {
	oc := &OLEContainer{path: path}
	err := walkOLE(path, func(name string, ent *mscfb.File) bool {
		oc.members = append(oc.members, Member{Name: name, Size: ent.Size})
		return true
	})
	if err != nil {
		return nil, err
	}
	return oc, nil
}

func (o *OLEContainer) Path() string { return o.path }

func (o *OLEContainer) Members() []Member { return o.members }

// ReadMember re-opens the compound file and streams the named entry.
func (o *OLEContainer) ReadMember(name string) ([]byte, error) {
	if _, ok := findMember(o.members, name); !ok {
		return nil, fmt.Errorf("member %s: %w", name, ErrNotFound)
	}
	var (
		data    []byte
		readErr error
		found   bool
	)
	err := walkOLE(o.path, func(n string, ent *mscfb.File) bool {
		if n != name {
			return true
		}
		found = true
		data, readErr = readCapped(ent)
		return false
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("member %s: %w", name, ErrNotFound)
	}
	if readErr != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, ErrUnreadable, readErr)
	}
	return data, nil
}

func (o *OLEContainer) Close() error { return nil }

// oleStreamName joins the storage path and entry name with '/'.
func oleStreamName(ent *mscfb.File) string {
	if len(ent.Path) == 0 {
		return ent.Name
	}
	return strings.Join(ent.Path, "/") + "/" + ent.Name
}

// walkOLE visits every stream (storages are skipped) until fn returns false.
// Panics from the compound file parser are reported as ErrUnreadable.
func walkOLE(path string, fn func(name string, ent *mscfb.File) bool) (err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("%s: %w: %v", path, ErrUnreadable, err)
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: compound file parser panic: %v", path, ErrUnreadable, r)
		}
	}()

	cf, err := mscfb.New(f)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrUnreadable, err)
	}
	for {
		ent, nerr := cf.Next()
		if nerr == io.EOF {
			return nil
		}
		if nerr != nil {
			return fmt.Errorf("%s: %w: %v", path, ErrUnreadable, nerr)
		}
		if ent.FileInfo().IsDir() {
			continue
		}
		if !fn(oleStreamName(ent), ent) {
			return nil
		}
	}
}

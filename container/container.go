// Package container enumerates and reads the named parts of document
// packages: zip-based office files, OLE compound files and MIME messages.
package container

import (
	"errors"
	"fmt"
	"io"

	"docsentry/config"
)

var (
	// ErrNotFound is returned when a path or member does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnreadable is returned when a container or member cannot be parsed.
	ErrUnreadable = errors.New("unreadable")
)

// IsNotFound checks if an error wraps ErrNotFound
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsUnreadable checks if an error wraps ErrUnreadable
func IsUnreadable(err error) bool { return errors.Is(err, ErrUnreadable) }

// Member is one named entry inside a container. Content is fetched on demand
// through Container.ReadMember and never cached here.
type Member struct {
	Name string
	Size int64
}

// Container is a read-only view over a document package.
type Container interface {
	// Path returns the file the container was opened from.
	Path() string
	// Members lists entries in archive order.
	Members() []Member
	// ReadMember returns the raw bytes of the named member, capped at
	// config.MaxMemberBytes.
	ReadMember(name string) ([]byte, error)
	Close() error
}

// Open dispatches on the file extension.
func Open(path string) (Container, error) {
	switch kind := config.KindOf(path); kind {
	case config.KindZip:
		return OpenZip(path)
	case config.KindOLE:
		return OpenOLE(path)
	case config.KindMIME:
		return OpenMessage(path)
	case config.KindMailbox:
		return OpenMailbox(path)
	case config.KindLegacyDoc:
		return OpenSalvage(path)
	default:
		return nil, fmt.Errorf("%s is a %s, not a container", path, kind)
	}
}

// readCapped reads at most config.MaxMemberBytes from r.
func readCapped(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, config.MaxMemberBytes))
}

func findMember(members []Member, name string) (Member, bool) {
	for _, m := range members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/jhillyerd/enmime"

	"docsentry/config"
)

// mimePart is one decoded piece of a message.
type mimePart struct {
	name    string
	content []byte
}

// messageParts splits a MIME message into headers, bodies and attachments.
// Names are unique within one message.
func messageParts(raw []byte) ([]mimePart, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	var parts []mimePart
	if env.Root != nil {
		var hdr strings.Builder
		for _, key := range env.GetHeaderKeys() {
			for _, v := range env.GetHeaderValues(key) {
				hdr.WriteString(key)
				hdr.WriteString(": ")
				hdr.WriteString(v)
				hdr.WriteByte('\n')
			}
		}
		parts = append(parts, mimePart{name: "headers", content: []byte(hdr.String())})
	}
	if env.Text != "" {
		parts = append(parts, mimePart{name: "body.txt", content: []byte(env.Text)})
	}
	if env.HTML != "" {
		parts = append(parts, mimePart{name: "body.html", content: []byte(env.HTML)})
	}
	add := func(prefix string, list []*enmime.Part) {
		for i, p := range list {
			name := p.FileName
			if name == "" {
				name = "part-" + strconv.Itoa(i+1)
			}
			parts = append(parts, mimePart{name: prefix + "/" + name, content: p.Content})
		}
	}
	add("attachments", env.Attachments)
	add("inline", env.Inlines)
	add("other", env.OtherParts)

	seen := make(map[string]int, len(parts))
	for i := range parts {
		n := seen[parts[i].name]
		seen[parts[i].name] = n + 1
		if n > 0 {
			parts[i].name += "#" + strconv.Itoa(n+1)
		}
	}
	return parts, nil
}

func readWhole(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %v", path, ErrUnreadable, err)
	}
	return data, nil
}

func toMembers(prefix string, parts []mimePart) []Member {
	out := make([]Member, 0, len(parts))
	for _, p := range parts {
		out = append(out, Member{Name: prefix + p.name, Size: int64(len(p.content))})
	}
	return out
}

func pickPart(parts []mimePart, name string) ([]byte, bool) {
	for _, p := range parts {
		if p.name == name {
			if len(p.content) > config.MaxMemberBytes {
				return p.content[:config.MaxMemberBytes], true
			}
			return p.content, true
		}
	}
	return nil, false
}

// MessageContainer exposes a single .eml message.
type MessageContainer struct {
	path    string
	members []Member
}

// OpenMessage parses an .eml file to list its parts.
func OpenMessage(path string) (*MessageContainer, error) {
	raw, err := readWhole(path)
	if err != nil {
		return nil, err
	}
	parts, err := messageParts(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &MessageContainer{path: path, members: toMembers("", parts)}, nil
}

func (m *MessageContainer) Path() string { return m.path }

func (m *MessageContainer) Members() []Member { return m.members }

// ReadMember re-parses the message and returns the decoded part.
func (m *MessageContainer) ReadMember(name string) ([]byte, error) {
	raw, err := readWhole(m.path)
	if err != nil {
		return nil, err
	}
	parts, err := messageParts(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.path, err)
	}
	if data, ok := pickPart(parts, name); ok {
		return data, nil
	}
	return nil, fmt.Errorf("member %s: %w", name, ErrNotFound)
}

func (m *MessageContainer) Close() error { return nil }

// MailboxContainer exposes every message of an mbox file. Member names are
// prefixed with "msg-N/".
type MailboxContainer struct {
	path    string
	members []Member
}

// OpenMailbox walks the mailbox once to list the parts of every message.
// Messages that fail to parse are listed as a single raw member.
func OpenMailbox(path string) (*MailboxContainer, error) {
	mc := &MailboxContainer{path: path}
	err := walkMailbox(path, func(idx int, raw []byte) bool {
		prefix := mailboxPrefix(idx)
		parts, perr := messageParts(raw)
		if perr != nil {
			mc.members = append(mc.members, Member{Name: prefix + "raw", Size: int64(len(raw))})
			return true
		}
		mc.members = append(mc.members, toMembers(prefix, parts)...)
		return true
	})
	if err != nil {
		return nil, err
	}
	return mc, nil
}

func (m *MailboxContainer) Path() string { return m.path }

func (m *MailboxContainer) Members() []Member { return m.members }

// ReadMember streams the mailbox up to the owning message and decodes it.
func (m *MailboxContainer) ReadMember(name string) ([]byte, error) {
	idx, rest, ok := splitMailboxName(name)
	if !ok {
		return nil, fmt.Errorf("member %s: %w", name, ErrNotFound)
	}
	var (
		data  []byte
		found bool
		perr  error
	)
	err := walkMailbox(m.path, func(i int, raw []byte) bool {
		if i != idx {
			return true
		}
		if rest == "raw" {
			data, found = raw, true
			return false
		}
		var parts []mimePart
		parts, perr = messageParts(raw)
		if perr == nil {
			data, found = pickPart(parts, rest)
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	if perr != nil {
		return nil, fmt.Errorf("%s: %w", name, perr)
	}
	if !found {
		return nil, fmt.Errorf("member %s: %w", name, ErrNotFound)
	}
	return data, nil
}

func (m *MailboxContainer) Close() error { return nil }

func mailboxPrefix(idx int) string { return "msg-" + strconv.Itoa(idx) + "/" }

func splitMailboxName(name string) (int, string, bool) {
	head, rest, ok := strings.Cut(name, "/")
	if !ok || !strings.HasPrefix(head, "msg-") {
		return 0, "", false
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(head, "msg-"))
	if err != nil {
		return 0, "", false
	}
	return idx, rest, true
}

// walkMailbox calls fn with each message (1-based index) until fn returns false.
func walkMailbox(path string, fn func(idx int, raw []byte) bool) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("%s: %w: %v", path, ErrUnreadable, err)
	}
	defer f.Close()

	reader := mbox.NewReader(f)
	for idx := 1; ; idx++ {
		msg, err := reader.NextMessage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if idx == 1 {
				return fmt.Errorf("%s: %w: %v", path, ErrUnreadable, err)
			}
			// Trailing garbage after valid messages ends the walk.
			return nil
		}
		raw, err := readCapped(msg)
		if err != nil {
			continue
		}
		if !fn(idx, raw) {
			return nil
		}
	}
}

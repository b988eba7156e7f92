package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"docsentry/config"
	"docsentry/container"
	"docsentry/scan"
	"docsentry/scan/pdf"
)

// source is whatever the member list walks: a container's members, the
// pages of a PDF, or the salvaged blocks of a legacy document.
type source interface {
	Path() string
	Kind() config.Kind
	Items() []string
	// Open returns a title and the raw bytes for item i.
	Open(i int) (string, []byte, error)
	Scan(progress scan.ProgressFunc) (*scan.Report, error)
	Close() error
}

// openSource picks the reader for path by its extension.
func openSource(path string, trust *scan.TrustFilter, log logrus.FieldLogger) (source, error) {
	kind := config.KindOf(path)
	switch kind {
	case config.KindUnsupported:
		return nil, fmt.Errorf("%s: unsupported file type (supported: %s)", filepath.Base(path), config.GetFileTypeDescription())
	case config.KindPDF:
		doc, err := pdf.Open(path)
		if err != nil {
			return nil, err
		}
		return &pdfSource{doc: doc, trust: trust, log: log}, nil
	}
	c, err := container.Open(path)
	if err != nil {
		return nil, err
	}
	return &containerSource{c: c, kind: kind, engine: scan.NewEngine(trust, log)}, nil
}

type containerSource struct {
	c       container.Container
	kind    config.Kind
	engine  *scan.Engine
	members []container.Member
}

func (s *containerSource) Path() string      { return s.c.Path() }
func (s *containerSource) Kind() config.Kind { return s.kind }

func (s *containerSource) list() []container.Member {
	if s.members == nil {
		s.members = s.c.Members()
	}
	return s.members
}

func (s *containerSource) Items() []string {
	members := s.list()
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = fmt.Sprintf("%s (%s)", m.Name, formatFileSize(m.Size))
	}
	return out
}

func (s *containerSource) Open(i int) (string, []byte, error) {
	members := s.list()
	if i < 0 || i >= len(members) {
		return "", nil, fmt.Errorf("item %d: %w", i, container.ErrNotFound)
	}
	name := members[i].Name
	data, err := s.c.ReadMember(name)
	return name, data, err
}

func (s *containerSource) Scan(progress scan.ProgressFunc) (*scan.Report, error) {
	s.engine.OnProgress = progress
	return s.engine.Scan(s.c), nil
}

func (s *containerSource) Close() error { return s.c.Close() }

type pdfSource struct {
	doc   *pdf.Document
	trust *scan.TrustFilter
	log   logrus.FieldLogger
}

func (s *pdfSource) Path() string      { return s.doc.Path() }
func (s *pdfSource) Kind() config.Kind { return config.KindPDF }

func (s *pdfSource) Items() []string {
	out := make([]string, s.doc.PageCount())
	for i := range out {
		out[i] = fmt.Sprintf("Page %d", i+1)
	}
	return out
}

func (s *pdfSource) Open(i int) (string, []byte, error) {
	title := fmt.Sprintf("%s page %d", filepath.Base(s.doc.Path()), i+1)
	text, err := s.doc.PageText(i + 1)
	if errors.Is(err, pdf.ErrEmptyPage) {
		return title, []byte("[page has no extractable text]"), nil
	}
	return title, []byte(text), err
}

func (s *pdfSource) Scan(progress scan.ProgressFunc) (*scan.Report, error) {
	if progress != nil {
		progress(0, 1, "object table")
	}
	found, err := pdf.ScanStructure(s.doc.Path())
	if err != nil {
		return nil, err
	}
	r := scan.NewReport(found, s.doc.PageCount(), s.trust, config.MaxFindings)
	s.log.WithFields(logrus.Fields{
		"container": s.doc.Path(),
		"findings":  len(r.Findings),
	}).Info("pdf structure scan complete")
	return r, nil
}

func (s *pdfSource) Close() error { return s.doc.Close() }

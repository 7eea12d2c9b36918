package lsp

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	m "probe.dev/pkg/probe/internal/model"
)

// snapshot is one version of an open document together with a context that
// is cancelled once that version is superseded or the document is closed.
type snapshot struct {
	Document m.Document
	Context  context.Context
}

// document represents an opened Solidity file.
type document struct {
	uri     protocol.DocumentUri
	path    string
	text    string
	version int32
	ctx     context.Context
	cancel  context.CancelFunc
}

// documentStore holds opened documents.
type documentStore struct {
	mu        sync.Mutex
	parent    context.Context
	documents map[protocol.DocumentUri]*document
}

func newDocumentStore(parent context.Context) *documentStore {
	return &documentStore{
		parent:    parent,
		documents: make(map[protocol.DocumentUri]*document),
	}
}

// URIToPath converts a file:// URI to a local path. Other URIs are returned
// unchanged so that test-file detection still works on their names.
func URIToPath(uri protocol.DocumentUri) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}

	return filepath.FromSlash(u.Path)
}

func (s *documentStore) open(uri protocol.DocumentUri, version int32, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.documents[uri]; ok {
		old.cancel()
	}

	s.documents[uri] = s.newDocument(uri, URIToPath(uri), version, text)
}

func (s *documentStore) newDocument(uri protocol.DocumentUri, path string, version int32, text string) *document {
	ctx, cancel := context.WithCancel(s.parent)

	return &document{
		uri:     uri,
		path:    path,
		text:    text,
		version: version,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// change applies content changes in order and cancels work running against
// the previous version.
func (s *documentStore) change(uri protocol.DocumentUri, version int32, changes []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.documents[uri]
	if !ok {
		return fmt.Errorf("document %s is not open", uri)
	}

	text := old.text

	for _, change := range changes {
		switch change := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = change.Text
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				text = change.Text
				continue
			}

			start, end := change.Range.IndexesIn(text)
			text = text[:start] + change.Text + text[end:]
		default:
			return fmt.Errorf("unsupported content change %T", change)
		}
	}

	old.cancel()
	s.documents[uri] = s.newDocument(uri, old.path, version, text)

	return nil
}

func (s *documentStore) close(uri protocol.DocumentUri) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.documents[uri]; ok {
		doc.cancel()
		delete(s.documents, uri)
	}
}

func (s *documentStore) get(uri protocol.DocumentUri) (snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[uri]
	if !ok {
		return snapshot{}, false
	}

	return snapshot{
		Document: m.Document{
			URI:      doc.uri,
			Filename: doc.path,
			Text:     doc.text,
			Version:  doc.version,
		},
		Context: doc.ctx,
	}, true
}

func (s *documentStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.documents)
}

func (s *documentStore) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for uri, doc := range s.documents {
		doc.cancel()
		delete(s.documents, uri)
	}
}

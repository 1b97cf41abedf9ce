package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a namespace has never been written.
var ErrNotFound = errors.New("document not found")

// Namespaces used by the timer.
const (
	NamespaceState    = "state"
	NamespaceSettings = "settings"
)

// Document is the last JSON body written to a namespace.
type Document struct {
	Namespace string
	Body      []byte
	UpdatedAt time.Time
}

// Get returns the raw body stored under namespace.
func (s *Store) Get(namespace string) ([]byte, error) {
	d, err := s.GetDocument(namespace)
	if err != nil {
		return nil, err
	}
	return d.Body, nil
}

func (s *Store) GetDocument(namespace string) (*Document, error) {
	d := &Document{Namespace: namespace}
	var body, updatedAt string
	err := s.db.QueryRow(
		`SELECT body, updated_at FROM documents WHERE namespace = ?`, namespace,
	).Scan(&body, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document %q: %w", namespace, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document %q: %w", namespace, err)
	}
	d.Body = []byte(body)
	d.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return d, nil
}

// Put replaces the body stored under namespace.
func (s *Store) Put(namespace string, body []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`INSERT INTO documents (namespace, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(namespace) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		namespace, string(body), now,
	)
	if err != nil {
		return fmt.Errorf("put document %q: %w", namespace, err)
	}
	return nil
}

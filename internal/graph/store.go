// Package graph persists the link knowledge graph in an embedded
// SQLite database, modeled as a generic entity/relation store: nodes
// have a label and a unique key, edges connect two nodes under a
// relation type. All statements use parameter binding.
package graph

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Node labels
const (
	LabelLink     = "Link"
	LabelCategory = "Category"
	LabelKeyword  = "Keyword"
)

// Relation types
const (
	RelBelongsTo  = "BELONGS_TO"
	RelHasKeyword = "HAS_KEYWORD"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS nodes (
	label TEXT NOT NULL,
	key   TEXT NOT NULL,
	attrs TEXT NOT NULL DEFAULT '{}',
	PRIMARY KEY (label, key)
);

CREATE TABLE IF NOT EXISTS edges (
	rel        TEXT NOT NULL,
	from_label TEXT NOT NULL,
	from_key   TEXT NOT NULL,
	to_label   TEXT NOT NULL,
	to_key     TEXT NOT NULL,
	PRIMARY KEY (rel, from_label, from_key, to_label, to_key)
);
`

// Store is the shared handle to the graph database. It is opened once
// at startup, passed by reference into every component, and closed on
// shutdown. database/sql serializes concurrent statement execution;
// the store itself adds no transaction around multi-statement writes.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the graph database at path and
// ensures the schema exists. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// One shared connection, reused by every component; SQLite then
	// serializes concurrent statement execution for us.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Node is a stored graph node.
type Node struct {
	Label string
	Key   string
	Attrs map[string]string
}

// Edge is a stored graph edge.
type Edge struct {
	Rel       string
	FromLabel string
	FromKey   string
	ToLabel   string
	ToKey     string
}

// CreateNode inserts a node. It fails if a node with the same label
// and key already exists; callers that want create-if-absent use
// EnsureNode instead.
func (s *Store) CreateNode(label, key string, attrs map[string]string) error {
	if key == "" {
		return fmt.Errorf("create node %s: empty key", label)
	}

	encoded, err := encodeAttrs(attrs)
	if err != nil {
		return fmt.Errorf("create node %s %q: %w", label, key, err)
	}

	if _, err := s.db.Exec(
		`INSERT INTO nodes (label, key, attrs) VALUES (?, ?, ?)`,
		label, key, encoded,
	); err != nil {
		return fmt.Errorf("create node %s %q: %w", label, key, err)
	}
	return nil
}

// EnsureNode inserts a node if it does not already exist. Existing
// nodes keep their attributes untouched.
func (s *Store) EnsureNode(label, key string, attrs map[string]string) error {
	if key == "" {
		return fmt.Errorf("ensure node %s: empty key", label)
	}

	encoded, err := encodeAttrs(attrs)
	if err != nil {
		return fmt.Errorf("ensure node %s %q: %w", label, key, err)
	}

	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO nodes (label, key, attrs) VALUES (?, ?, ?)`,
		label, key, encoded,
	); err != nil {
		return fmt.Errorf("ensure node %s %q: %w", label, key, err)
	}
	return nil
}

// NodeExists reports whether a node with the given label and key is stored.
func (s *Store) NodeExists(label, key string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM nodes WHERE label = ? AND key = ?`,
		label, key,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("node exists %s %q: %w", label, key, err)
	}
	return true, nil
}

// EnsureEdge inserts an edge if the same logical relation is not
// already present, keeping edge pairs unique per relation.
func (s *Store) EnsureEdge(rel, fromLabel, fromKey, toLabel, toKey string) error {
	if fromKey == "" || toKey == "" {
		return fmt.Errorf("ensure edge %s: empty endpoint key", rel)
	}

	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO edges (rel, from_label, from_key, to_label, to_key) VALUES (?, ?, ?, ?, ?)`,
		rel, fromLabel, fromKey, toLabel, toKey,
	); err != nil {
		return fmt.Errorf("ensure edge %s %q->%q: %w", rel, fromKey, toKey, err)
	}
	return nil
}

// ScanNodes returns all nodes with the given label, ordered by key.
func (s *Store) ScanNodes(label string) ([]Node, error) {
	rows, err := s.db.Query(
		`SELECT key, attrs FROM nodes WHERE label = ? AND key <> '' ORDER BY key`,
		label,
	)
	if err != nil {
		return nil, fmt.Errorf("scan nodes %s: %w", label, err)
	}
	defer func() { _ = rows.Close() }()

	var nodes []Node
	for rows.Next() {
		var key, encoded string
		if err := rows.Scan(&key, &encoded); err != nil {
			return nil, fmt.Errorf("scan nodes %s: %w", label, err)
		}

		attrs, err := decodeAttrs(encoded)
		if err != nil {
			return nil, fmt.Errorf("scan nodes %s %q: %w", label, key, err)
		}

		nodes = append(nodes, Node{Label: label, Key: key, Attrs: attrs})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan nodes %s: %w", label, err)
	}
	return nodes, nil
}

// ScanEdges returns all edges with the given relation type, ordered by
// source then target key.
func (s *Store) ScanEdges(rel string) ([]Edge, error) {
	rows, err := s.db.Query(
		`SELECT from_label, from_key, to_label, to_key FROM edges
		 WHERE rel = ? AND from_key <> '' AND to_key <> ''
		 ORDER BY from_key, to_key`,
		rel,
	)
	if err != nil {
		return nil, fmt.Errorf("scan edges %s: %w", rel, err)
	}
	defer func() { _ = rows.Close() }()

	var edges []Edge
	for rows.Next() {
		e := Edge{Rel: rel}
		if err := rows.Scan(&e.FromLabel, &e.FromKey, &e.ToLabel, &e.ToKey); err != nil {
			return nil, fmt.Errorf("scan edges %s: %w", rel, err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan edges %s: %w", rel, err)
	}
	return edges, nil
}

// DeleteNode removes a node and every edge touching it. It reports
// whether a node was actually removed. Orphaned category and keyword
// nodes left behind by a link delete are acceptable and kept.
func (s *Store) DeleteNode(label, key string) (bool, error) {
	if _, err := s.db.Exec(
		`DELETE FROM edges WHERE (from_label = ? AND from_key = ?) OR (to_label = ? AND to_key = ?)`,
		label, key, label, key,
	); err != nil {
		return false, fmt.Errorf("delete edges of %s %q: %w", label, key, err)
	}

	res, err := s.db.Exec(`DELETE FROM nodes WHERE label = ? AND key = ?`, label, key)
	if err != nil {
		return false, fmt.Errorf("delete node %s %q: %w", label, key, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete node %s %q: %w", label, key, err)
	}
	return affected > 0, nil
}

func encodeAttrs(attrs map[string]string) (string, error) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encode attrs: %w", err)
	}
	return string(data), nil
}

func decodeAttrs(encoded string) (map[string]string, error) {
	attrs := map[string]string{}
	if encoded == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(encoded), &attrs); err != nil {
		return nil, fmt.Errorf("decode attrs: %w", err)
	}
	return attrs, nil
}

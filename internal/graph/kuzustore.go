//go:build cgo

package graph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore persists extracted trees in KuzuDB so they can be queried with
// Cypher (for example, every Call below a given Function). It requires CGO
// because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	mu   sync.Mutex // one connection; statements are serialised
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	s := &KuzuStore{db: db, conn: conn}
	if err := s.initSchema(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL run when the store opens.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Tree(
		key STRING,
		language STRING,
		node_count INT64,
		PRIMARY KEY(key)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS TreeNode(
		uid STRING,
		tree STRING,
		idx INT64,
		kind STRING,
		label STRING,
		PRIMARY KEY(uid)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CHILD(FROM TreeNode TO TreeNode)`,
}

func (s *KuzuStore) initSchema() error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Store ----------

// Put writes g under key inside one transaction. The Tree row is written
// last and marks the tree complete. Keys are content hashes, so a complete
// tree already present is left untouched; leftovers of an incomplete one are
// replaced.
func (s *KuzuStore) Put(_ context.Context, key string, g *Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, complete, err := s.treeState(key); err != nil || complete {
		return err
	}

	if err := s.run("BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("kuzu: put tree %s: %w", key, err)
	}
	if err := s.writeTree(key, g); err != nil {
		if rbErr := s.run("ROLLBACK"); rbErr != nil {
			return errors.Join(err, fmt.Errorf("kuzu: rollback: %w", rbErr))
		}
		return err
	}
	if err := s.run("COMMIT"); err != nil {
		return fmt.Errorf("kuzu: commit tree %s: %w", key, err)
	}
	return nil
}

func (s *KuzuStore) writeTree(key string, g *Graph) error {
	if err := s.deleteTree(key); err != nil {
		return err
	}

	for i, n := range g.Nodes {
		if err := s.exec(
			"CREATE (n:TreeNode {uid: $uid, tree: $tree, idx: $idx, kind: $kind, label: $label})",
			map[string]any{
				"uid":   treeNodeUID(key, n.ID),
				"tree":  key,
				"idx":   int64(i),
				"kind":  string(n.Kind),
				"label": n.Label,
			},
		); err != nil {
			return fmt.Errorf("kuzu: put node %s: %w", n.ID, err)
		}
	}

	for _, e := range g.Edges {
		if err := s.exec(
			`MATCH (a:TreeNode {uid: $src}), (b:TreeNode {uid: $dst})
			 CREATE (a)-[:CHILD]->(b)`,
			map[string]any{
				"src": treeNodeUID(key, e.Source),
				"dst": treeNodeUID(key, e.Target),
			},
		); err != nil {
			return fmt.Errorf("kuzu: put edge %s->%s: %w", e.Source, e.Target, err)
		}
	}

	lang, _, _ := cutKey(key)
	if err := s.exec(
		"CREATE (t:Tree {key: $key, language: $lang, node_count: $n})",
		map[string]any{"key": key, "lang": lang, "n": int64(len(g.Nodes))},
	); err != nil {
		return fmt.Errorf("kuzu: put tree %s: %w", key, err)
	}
	return nil
}

// deleteTree removes every row belonging to key.
func (s *KuzuStore) deleteTree(key string) error {
	if err := s.exec("MATCH (n:TreeNode) WHERE n.tree = $key DETACH DELETE n", map[string]any{"key": key}); err != nil {
		return fmt.Errorf("kuzu: clear nodes of %s: %w", key, err)
	}
	if err := s.exec("MATCH (t:Tree {key: $key}) DELETE t", map[string]any{"key": key}); err != nil {
		return fmt.Errorf("kuzu: clear tree %s: %w", key, err)
	}
	return nil
}

// Get rebuilds the graph stored under key, or returns nil if it is absent.
// Children are replayed in node order, which is the order they were visited.
// A tree whose rows do not add up to its recorded node count is an error.
func (s *KuzuStore) Get(_ context.Context, key string) (*Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, exists, err := s.treeCount(key)
	if err != nil || !exists {
		return nil, err
	}

	rows, err := s.query(
		`MATCH (a:TreeNode)-[:CHILD]->(b:TreeNode)
		 WHERE b.tree = $key
		 RETURN a.idx, b.idx, b.kind, b.label
		 ORDER BY b.idx`,
		map[string]any{"key": key},
	)
	if err != nil {
		return nil, err
	}

	b := newBuilder()
	for _, r := range rows {
		parent, child := toInt(r[0]), toInt(r[1])
		if parent >= child || child != len(b.g.Nodes) {
			return nil, fmt.Errorf("kuzu: tree %s is not in emission order at node %d: %w", key, child, ErrMalformedGraph)
		}
		b.add(parent, Kind(toString(r[2])), toString(r[3]))
	}

	g := b.graph()
	if len(g.Nodes) != count {
		return nil, fmt.Errorf("kuzu: tree %s has %d of %d nodes: %w", key, len(g.Nodes), count, ErrMalformedGraph)
	}
	return g, nil
}

// Keys lists every stored tree key.
func (s *KuzuStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query("MATCH (t:Tree) RETURN t.key ORDER BY t.key", nil)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, toString(r[0]))
	}
	return keys, nil
}

// treeCount returns the node count recorded on the Tree row for key.
func (s *KuzuStore) treeCount(key string) (int, bool, error) {
	rows, err := s.query("MATCH (t:Tree {key: $key}) RETURN t.node_count", map[string]any{"key": key})
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return toInt(rows[0][0]), true, nil
}

// treeState reports whether key has a Tree row and whether its node rows
// match the recorded count.
func (s *KuzuStore) treeState(key string) (exists, complete bool, err error) {
	count, exists, err := s.treeCount(key)
	if err != nil || !exists {
		return exists, false, err
	}
	rows, err := s.query("MATCH (n:TreeNode) WHERE n.tree = $key RETURN count(n)", map[string]any{"key": key})
	if err != nil {
		return true, false, err
	}
	return true, len(rows) == 1 && toInt(rows[0][0]) == count, nil
}

// ---------- Helpers ----------

// run executes a statement without parameters, such as transaction control.
func (s *KuzuStore) run(cypher string) error {
	res, err := s.conn.Query(cypher)
	if err != nil {
		return err
	}
	res.Close()
	return nil
}

// exec runs a parameterized Cypher statement that returns no rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// treeNodeUID scopes a node id to its tree: "<key>/<node id>".
func treeNodeUID(key, id string) string {
	return key + "/" + id
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

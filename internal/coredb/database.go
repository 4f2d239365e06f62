package coredb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/coredb/coredb/internal/bucket"
	"github.com/coredb/coredb/internal/cache"
	"github.com/coredb/coredb/internal/executor"
	"github.com/coredb/coredb/internal/kv"
	"github.com/coredb/coredb/internal/migrate"
	"github.com/coredb/coredb/internal/model"
	"github.com/coredb/coredb/internal/planner"
	"github.com/coredb/coredb/internal/query"
	"github.com/coredb/coredb/internal/schema"
	"github.com/coredb/coredb/internal/wal"
)

// Status mirrors original_source's DatabaseStatus: the summary a "status"
// CLI command renders.
type Status struct {
	Name        string
	Path        string
	NodeCount   int64
	EdgeCount   int64
	SchemaCount int64
	SizeBytes   int64
}

// GraphView is the property-graph projection of a node type: its nodes
// plus every edge outgoing from them, per spec.md §1's "three views"
// promise (supplemented here since spec.md names the view but not its
// Go shape — see original_source's GraphView{nodes, edges}).
type GraphView struct {
	Nodes []*model.Node
	Edges []*model.Edge
}

// KVEntry is one row of a KVView: a node's id paired with its property
// object, the tabular/KV projection original_source's KvView names.
type KVEntry struct {
	Key   string
	Value *model.Object
}

// KVView is the key/value projection of a node type.
type KVView struct {
	Entries []KVEntry
}

// Database is the façade every higher layer composes through: the local
// store, an optional bucket mirror, the schema registry, and the
// query/planner/executor pipeline, all behind one handle.
//
// Grounded on original_source's storage/mod.rs Database struct
// (path/config/local/bucket/cache fields) and the teacher's
// pkg/nornicdb/db.go DB struct for the surrounding Go idiom (RWMutex
// guarding a closed flag, component fields assembled in Open/Create).
type Database struct {
	mu     sync.RWMutex
	closed bool

	path   string
	config *Config

	store    kv.Engine
	schemas  *schema.Manager
	planner  *planner.Planner
	executor *executor.Executor
	byteCache *cache.ByteCache

	bucketHandle *bucket.Handle
	bucketURL    string
}

// Create initializes a new database directory at path with the given
// name, laying down the reserved config/data subdirectory structure.
func Create(path, name string) (*Database, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, newErr(KindIO, path, "failed to create database directory", err)
	}
	if err := os.MkdirAll(filepath.Join(path, reservedDir), 0o755); err != nil {
		return nil, newErr(KindIO, path, "failed to create reserved subdirectory", err)
	}

	cfg := &Config{
		Name:      name,
		Version:   FormatVersion,
		CreatedAt: model.Now(),
	}
	if err := writeConfig(path, cfg); err != nil {
		return nil, err
	}

	store, err := kv.Open(dataPath(path))
	if err != nil {
		return nil, newErr(KindIO, path, "failed to initialize local store", err)
	}

	return newDatabase(path, cfg, store), nil
}

// CreateInMemory initializes a new database directory at path backed by
// kv.MemoryEngine instead of Badger, durable via a write-ahead log
// rather than an LSM tree — the path SPEC_FULL.md §4.1 names for
// running without Badger while still surviving a crash between
// operations. The WAL lives under the reserved subdirectory alongside
// the config file.
func CreateInMemory(path, name string) (*Database, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, newErr(KindIO, path, "failed to create database directory", err)
	}
	if err := os.MkdirAll(filepath.Join(path, reservedDir), 0o755); err != nil {
		return nil, newErr(KindIO, path, "failed to create reserved subdirectory", err)
	}

	cfg := &Config{
		Name:      name,
		Version:   FormatVersion,
		CreatedAt: model.Now(),
	}
	if err := writeConfig(path, cfg); err != nil {
		return nil, err
	}

	store, err := openWALBackedMemory(path)
	if err != nil {
		return nil, err
	}
	return newDatabase(path, cfg, store), nil
}

// OpenInMemory reopens a database created by CreateInMemory, replaying
// its write-ahead log to reconstruct pre-close state, per
// wal.Recover's replay-into-a-fresh-engine idiom.
func OpenInMemory(path string) (*Database, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	store, err := openWALBackedMemory(path)
	if err != nil {
		return nil, err
	}
	return newDatabase(path, cfg, store), nil
}

func openWALBackedMemory(path string) (kv.Engine, error) {
	walDir := filepath.Join(path, reservedDir)
	recovered, err := wal.Recover(walDir)
	if err != nil {
		return nil, newErr(KindCorruption, path, "failed to recover write-ahead log", err)
	}
	log, err := wal.Open(wal.DefaultConfig(walDir))
	if err != nil {
		return nil, newErr(KindIO, path, "failed to open write-ahead log", err)
	}
	return wal.NewEngine(recovered, log), nil
}

// Open opens an existing database directory at path.
func Open(path string) (*Database, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	store, err := kv.Open(dataPath(path))
	if err != nil {
		return nil, newErr(KindIO, path, "failed to open local store", err)
	}

	db := newDatabase(path, cfg, store)

	if cfg.BucketURL != "" {
		if err := db.ConnectBucket(context.Background(), cfg.BucketURL, false); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func newDatabase(path string, cfg *Config, store kv.Engine) *Database {
	queryCache := executor.NewQueryCache(1024, 0)
	return &Database{
		path:      path,
		config:    cfg,
		store:     store,
		schemas:   schema.NewManager(store),
		planner:   planner.New(),
		executor:  executor.New(store, queryCache),
		byteCache: cache.NewByteCache(100 * 1024 * 1024),
	}
}

// ConnectBucket attaches a remote bucket mirror to an already-open
// database, fronted by this Database's byte cache.
func (db *Database) ConnectBucket(ctx context.Context, url string, readonly bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	bucketName, prefix, err := bucket.ParseURL(url)
	if err != nil {
		return newErr(KindConfig, url, "malformed bucket url", err)
	}
	store, err := bucket.OpenS3(ctx, bucketName, prefix)
	if err != nil {
		return newErr(KindConnection, url, "failed to connect to bucket", err)
	}

	db.bucketHandle = bucket.NewHandle(store, readonly, db.byteCache)
	db.bucketURL = url
	return nil
}

// ConnectRemote opens a database backed entirely by a bucket, with the
// local store acting only as a cache of the remote contents, per
// original_source's Database::connect_bucket. The bucket's contents are
// downloaded into dir itself, which then hosts the cache's on-disk store.
func ConnectRemote(ctx context.Context, url string, dir string, readonly bool) (*Database, error) {
	bucketName, prefix, err := bucket.ParseURL(url)
	if err != nil {
		return nil, newErr(KindConfig, url, "malformed bucket url", err)
	}
	store, err := bucket.OpenS3(ctx, bucketName, prefix)
	if err != nil {
		return nil, newErr(KindConnection, url, "failed to connect to bucket", err)
	}
	byteCache := cache.NewByteCache(500 * 1024 * 1024)
	handle := bucket.NewHandle(store, readonly, byteCache)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, newErr(KindIO, dir, "failed to create local cache directory", err)
	}
	if err := handle.Download(ctx, dir); err != nil {
		return nil, newErr(KindConnection, url, "failed to download bucket contents", err)
	}

	cfg, err := readConfig(dir)
	if err != nil {
		return nil, err
	}
	localStore, err := kv.Open(dataPath(dir))
	if err != nil {
		return nil, newErr(KindIO, dir, "failed to open cached local store", err)
	}

	db := newDatabase(dir, cfg, localStore)
	db.byteCache = byteCache
	db.bucketHandle = handle
	db.bucketURL = url
	return db, nil
}

// Status reports node/edge/schema counts and on-disk size.
func (db *Database) Status() (Status, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	nodeCount, err := db.store.NodeCount()
	if err != nil {
		return Status{}, newErr(KindIO, db.path, "failed to count nodes", err)
	}
	edgeCount, err := db.store.EdgeCount()
	if err != nil {
		return Status{}, newErr(KindIO, db.path, "failed to count edges", err)
	}
	schemas, err := db.schemas.ListSchemas()
	if err != nil {
		return Status{}, wrapSchemaError(err, db.path)
	}

	var sizeBytes int64
	if badgerEngine, ok := db.store.(*kv.BadgerEngine); ok {
		lsm, vlog := badgerEngine.DB().Size()
		sizeBytes = lsm + vlog
	}

	return Status{
		Name:        db.config.Name,
		Path:        db.path,
		NodeCount:   nodeCount,
		EdgeCount:   edgeCount,
		SchemaCount: int64(len(schemas)),
		SizeBytes:   sizeBytes,
	}, nil
}

// Close releases the underlying store.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	return db.store.Close()
}

// ========== Node operations ==========

// InsertNode creates a node of nodeType with props and returns it.
func (db *Database) InsertNode(nodeType string, props *model.Object) (*model.Node, error) {
	n := model.NewNode(nodeType, props)
	if err := db.store.CreateNode(n); err != nil {
		return nil, newErr(KindIO, nodeType, "failed to insert node", err)
	}
	return n, nil
}

// GetNode returns the node identified by id.
func (db *Database) GetNode(id string) (*model.Node, error) {
	nodeID, err := model.ParseNodeID(id)
	if err != nil {
		return nil, newErr(KindValidation, id, "malformed node id", err)
	}
	n, err := db.store.GetNode(nodeID)
	if err != nil {
		return nil, wrapNotFound(err, id)
	}
	return n, nil
}

// UpdateNode merges patch into the node identified by id.
func (db *Database) UpdateNode(id string, patch *model.Object) (*model.Node, error) {
	n, err := db.GetNode(id)
	if err != nil {
		return nil, err
	}
	n.ApplyUpdate(patch)
	if err := db.store.UpdateNode(n); err != nil {
		return nil, newErr(KindIO, id, "failed to update node", err)
	}
	return n, nil
}

// DeleteNode removes the node identified by id and every edge touching
// it (cascade handled by the underlying kv.Engine).
func (db *Database) DeleteNode(id string) error {
	nodeID, err := model.ParseNodeID(id)
	if err != nil {
		return newErr(KindValidation, id, "malformed node id", err)
	}
	if err := db.store.DeleteNode(nodeID); err != nil {
		return wrapNotFound(err, id)
	}
	return nil
}

// NodesByType returns up to limit nodes of the given type (limit<=0 means
// unbounded).
func (db *Database) NodesByType(nodeType string, limit int) ([]*model.Node, error) {
	nodes, err := db.store.NodesByType(nodeType)
	if err != nil {
		return nil, wrapNotFound(err, nodeType)
	}
	if limit > 0 && limit < len(nodes) {
		nodes = nodes[:limit]
	}
	return nodes, nil
}

// ========== Edge operations ==========

// CreateEdge creates an edge of edgeType between two existing nodes.
func (db *Database) CreateEdge(fromID, toID, edgeType string, props *model.Object) (*model.Edge, error) {
	from, err := model.ParseNodeID(fromID)
	if err != nil {
		return nil, newErr(KindValidation, fromID, "malformed source node id", err)
	}
	to, err := model.ParseNodeID(toID)
	if err != nil {
		return nil, newErr(KindValidation, toID, "malformed target node id", err)
	}
	e := model.NewEdge(from, to, edgeType, props)
	if err := db.store.CreateEdge(e); err != nil {
		return nil, newErr(KindIO, edgeType, "failed to create edge", err)
	}
	return e, nil
}

// EdgesFrom returns every edge, optionally filtered by edgeType, leaving
// the given node.
func (db *Database) EdgesFrom(nodeID, edgeType string) ([]*model.Edge, error) {
	id, err := model.ParseNodeID(nodeID)
	if err != nil {
		return nil, newErr(KindValidation, nodeID, "malformed node id", err)
	}
	edges, err := db.store.OutgoingEdges(id)
	if err != nil {
		return nil, wrapNotFound(err, nodeID)
	}
	return filterByEdgeType(edges, edgeType), nil
}

// EdgesTo returns every edge, optionally filtered by edgeType, entering
// the given node.
func (db *Database) EdgesTo(nodeID, edgeType string) ([]*model.Edge, error) {
	id, err := model.ParseNodeID(nodeID)
	if err != nil {
		return nil, newErr(KindValidation, nodeID, "malformed node id", err)
	}
	edges, err := db.store.IncomingEdges(id)
	if err != nil {
		return nil, wrapNotFound(err, nodeID)
	}
	return filterByEdgeType(edges, edgeType), nil
}

func filterByEdgeType(edges []*model.Edge, edgeType string) []*model.Edge {
	if edgeType == "" {
		return edges
	}
	out := edges[:0:0]
	for _, e := range edges {
		if e.Type == edgeType {
			out = append(out, e)
		}
	}
	return out
}

// DeleteEdge removes the edge identified by id.
func (db *Database) DeleteEdge(id string) error {
	edgeID, err := model.ParseEdgeID(id)
	if err != nil {
		return newErr(KindValidation, id, "malformed edge id", err)
	}
	if err := db.store.DeleteEdge(edgeID); err != nil {
		return wrapNotFound(err, id)
	}
	return nil
}

// ========== View operations ==========

// GetAsGraph returns nodes of nodeType plus every edge outgoing from
// them, the property-graph view.
func (db *Database) GetAsGraph(nodeType string, limit int) (*GraphView, error) {
	nodes, err := db.NodesByType(nodeType, limit)
	if err != nil {
		return nil, err
	}
	var edges []*model.Edge
	for _, n := range nodes {
		out, err := db.store.OutgoingEdges(n.ID)
		if err != nil {
			return nil, newErr(KindIO, nodeType, "failed to collect edges for graph view", err)
		}
		edges = append(edges, out...)
	}
	return &GraphView{Nodes: nodes, Edges: edges}, nil
}

// GetAsKV returns nodes of nodeType as id->properties entries, the
// key/value view.
func (db *Database) GetAsKV(nodeType string, limit int) (*KVView, error) {
	nodes, err := db.NodesByType(nodeType, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]KVEntry, len(nodes))
	for i, n := range nodes {
		entries[i] = KVEntry{Key: n.ID.String(), Value: n.Properties}
	}
	return &KVView{Entries: entries}, nil
}

// ========== Query ==========

// Query parses, plans, and executes a SQL statement (or the already
// plan-compatible language the NL translator emits — both arrive here as
// the same query.ParsedQuery), per spec.md §4.4-§4.6's pipeline.
func (db *Database) Query(sql string) (query.QueryResult, error) {
	parsed, err := query.Parse(sql)
	if err != nil {
		return query.QueryResult{}, newErr(KindQuery, sql, "failed to parse query", err)
	}
	return db.Execute(parsed)
}

// Execute runs an already-parsed query, the entry point the NL
// translator's output uses directly without re-parsing SQL text.
func (db *Database) Execute(parsed *query.ParsedQuery) (query.QueryResult, error) {
	plan, err := db.planner.Plan(parsed)
	if err != nil {
		return query.QueryResult{}, newErr(KindQuery, parsed.Target, "failed to plan query", err)
	}
	result, err := db.executor.Execute(plan, parsed)
	if err != nil {
		return query.QueryResult{}, newErr(KindQuery, parsed.Target, "query execution failed", err)
	}
	return result, nil
}

// Traverse performs a breadth-first graph walk from start.
func (db *Database) Traverse(startID string, maxDepth uint32, edgeTypes []string) (*query.TraversalResult, error) {
	start, err := model.ParseNodeID(startID)
	if err != nil {
		return nil, newErr(KindValidation, startID, "malformed node id", err)
	}
	result, err := executor.Traverse(db.store, start, maxDepth, edgeTypes)
	if err != nil {
		return nil, wrapNotFound(err, startID)
	}
	return result, nil
}

// ========== Schema passthroughs ==========

func (db *Database) CreateSchema(name, fieldsStr string) (*schema.Schema, error) {
	s, err := db.schemas.CreateSchema(name, fieldsStr)
	if err != nil {
		return nil, newErr(KindValidation, name, "failed to create schema", err)
	}
	return s, nil
}

func (db *Database) CreateRelationship(from, to, relationType, alias string) (*schema.SchemaRelation, error) {
	rel, err := db.schemas.CreateRelationship(from, to, relationType, alias)
	if err != nil {
		return nil, newErr(KindValidation, from+"->"+to, "failed to create relationship", err)
	}
	return rel, nil
}

func (db *Database) ListSchemas() ([]*schema.Schema, error) {
	schemas, err := db.schemas.ListSchemas()
	if err != nil {
		return nil, wrapSchemaError(err, "")
	}
	return schemas, nil
}

func (db *Database) GetSchema(name string) (*schema.Schema, error) {
	s, err := db.schemas.GetSchema(name)
	if err != nil {
		if errors.Is(err, schema.ErrCorruptSchemaRecord) {
			return nil, wrapSchemaError(err, name)
		}
		return nil, newErr(KindNotFound, name, "schema not registered", err)
	}
	return s, nil
}

func wrapSchemaError(err error, subject string) error {
	if errors.Is(err, schema.ErrCorruptSchemaRecord) {
		return newErr(KindCorruption, subject, "stored schema record failed validation", err)
	}
	return newErr(KindIO, subject, "failed to list schemas", err)
}

// ExportSchemas renders every registered schema as a YAML document.
func (db *Database) ExportSchemas() ([]byte, error) {
	data, err := db.schemas.ExportSchemas()
	if err != nil {
		return nil, wrapSchemaError(err, "")
	}
	return data, nil
}

// ImportSchemas parses a YAML document produced by ExportSchemas and
// registers each schema it contains.
func (db *Database) ImportSchemas(data []byte) ([]*schema.Schema, error) {
	schemas, err := db.schemas.ImportSchemas(data)
	if err != nil {
		return nil, newErr(KindValidation, "", "failed to import schemas", err)
	}
	return schemas, nil
}

func (db *Database) DropSchema(name string, force bool) error {
	if err := db.schemas.DropSchema(name, force); err != nil {
		return newErr(KindConflict, name, "schema still in use (use force to override)", err)
	}
	return nil
}

// MigrateSchema synthesizes and records the actions needed to transform
// the currently registered schema named name into updated, then
// re-registers name from fieldsStr via CreateSchema (updated itself is
// only diffed, not stored) and appends the migration to the on-disk log.
func (db *Database) MigrateSchema(name string, updated *schema.Schema, fieldsStr string) (*migrate.Migration, error) {
	old, err := db.schemas.GetSchema(name)
	if err != nil {
		return nil, newErr(KindNotFound, name, "schema not registered", err)
	}

	actions := migrate.Generate(old, updated)
	m := migrate.NewMigration("migrate "+name, actions)
	if migrate.NeedsManualReview(actions) {
		return m, newErr(KindValidation, name, "migration needs manual review before applying", nil)
	}

	if _, err := db.schemas.CreateSchema(name, fieldsStr); err != nil {
		return nil, newErr(KindIO, name, "failed to persist migrated schema", err)
	}
	m.Apply()
	if err := appendMigrationLog(db.path, m); err != nil {
		return m, err
	}
	return m, nil
}

// ========== Cloud operations ==========

// PushToBucket connects to the given bucket, uploads the local database
// contents, and records the bucket url in the local config so future
// Opens reconnect automatically.
func (db *Database) PushToBucket(ctx context.Context, url string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	bucketName, prefix, err := bucket.ParseURL(url)
	if err != nil {
		return newErr(KindConfig, url, "malformed bucket url", err)
	}
	store, err := bucket.OpenS3(ctx, bucketName, prefix)
	if err != nil {
		return newErr(KindConnection, url, "failed to connect to bucket", err)
	}
	handle := bucket.NewHandle(store, false, db.byteCache)

	if err := handle.Upload(ctx, db.path); err != nil {
		return newErr(KindIO, url, "failed to upload database to bucket", err)
	}

	db.config.BucketURL = url
	if err := writeConfig(db.path, db.config); err != nil {
		return err
	}
	db.bucketHandle = handle
	db.bucketURL = url
	return nil
}

// SyncWithBucket performs a bidirectional sync against the configured (or
// given) bucket url.
func (db *Database) SyncWithBucket(ctx context.Context, url string) (bucket.SyncStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if url == "" {
		url = db.bucketURL
	}
	if url == "" {
		return bucket.SyncStats{}, newErr(KindConfig, db.path, "no bucket configured; use push or connect first", nil)
	}

	handle := db.bucketHandle
	if handle == nil {
		bucketName, prefix, err := bucket.ParseURL(url)
		if err != nil {
			return bucket.SyncStats{}, newErr(KindConfig, url, "malformed bucket url", err)
		}
		store, err := bucket.OpenS3(ctx, bucketName, prefix)
		if err != nil {
			return bucket.SyncStats{}, newErr(KindConnection, url, "failed to connect to bucket", err)
		}
		handle = bucket.NewHandle(store, false, db.byteCache)
		db.bucketHandle = handle
	}

	stats, err := handle.Sync(ctx, db.path)
	if err != nil {
		return stats, newErr(KindIO, url, "sync failed", err)
	}
	return stats, nil
}

// SaveConfig persists the current in-memory config to disk.
func (db *Database) SaveConfig() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return writeConfig(db.path, db.config)
}

// Name returns the database's configured name.
func (db *Database) Name() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.config.Name
}

// Path returns the database's root directory.
func (db *Database) Path() string { return db.path }

func wrapNotFound(err error, subject string) error {
	if errors.Is(err, kv.ErrNotFound) {
		return newErr(KindNotFound, subject, "no such id", err)
	}
	if errors.Is(err, kv.ErrCorrupted) {
		return newErr(KindCorruption, subject, "stored record failed validation", err)
	}
	return newErr(KindIO, subject, "store operation failed", err)
}

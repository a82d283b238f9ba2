package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to Postgres with pooling limits suitable for a
// request-per-task workload.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(20)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// SQL stores each collection as a JSONB table keyed by the document's
// "_id". Partial updates are applied read-modify-write on the whole
// document; a single UPDATE per document keeps per-document atomicity, and
// nothing more.
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) DB() *sql.DB {
	return s.db
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// EnsureCollections creates the backing tables if they do not exist.
func (s *SQL) EnsureCollections(ctx context.Context, names ...string) error {
	for _, name := range names {
		if !collectionName.MatchString(name) {
			return fmt.Errorf("invalid collection name %q", name)
		}
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id BIGINT PRIMARY KEY, doc JSONB NOT NULL)`, name)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure collection %s: %w", name, err)
		}
	}
	return nil
}

func (s *SQL) Collection(name string) Collection {
	return &sqlCollection{db: s.db, table: name}
}

type sqlCollection struct {
	db    *sql.DB
	table string
}

func documentID(doc Document) (int64, bool) {
	id, ok := canonical(doc["_id"]).(float64)
	if !ok {
		return 0, false
	}
	return int64(id), true
}

// load fetches candidate rows. A plain _id equality short-circuits to a
// keyed lookup; everything else scans the collection and filters in the
// application, which is where this system evaluates all of its decisions
// anyway.
func (c *sqlCollection) load(ctx context.Context, filter Filter) ([]Document, error) {
	if id, ok := canonical(filter["_id"]).(float64); ok && len(filter) == 1 {
		row := c.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, c.table), int64(id))
		var raw []byte
		if err := row.Scan(&raw); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, fmt.Errorf("select %s: %w", c.table, err)
		}
		doc, err := decodeRow(raw)
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	}

	rows, err := c.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT doc FROM %s ORDER BY id`, c.table))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", c.table, err)
	}
	defer rows.Close()

	var matched []Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", c.table, err)
		}
		doc, err := decodeRow(raw)
		if err != nil {
			return nil, err
		}
		if matchDocument(doc, filter) {
			matched = append(matched, doc)
		}
	}
	return matched, rows.Err()
}

func decodeRow(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func (c *sqlCollection) write(ctx context.Context, doc Document) error {
	id, ok := documentID(doc)
	if !ok {
		return fmt.Errorf("%s: document has no numeric _id", c.table)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET doc = $2 WHERE id = $1`, c.table), id, raw)
	if err != nil {
		return fmt.Errorf("update %s: %w", c.table, err)
	}
	return nil
}

func (c *sqlCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	docs, err := c.load(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return docs[0], nil
}

func (c *sqlCollection) Find(ctx context.Context, filter Filter, opts *FindOptions) ([]Document, error) {
	docs, err := c.load(ctx, filter)
	if err != nil {
		return nil, err
	}
	return applyFindOptions(docs, opts), nil
}

func (c *sqlCollection) InsertOne(ctx context.Context, doc Document) error {
	doc = copyDocument(doc)
	id, ok := documentID(doc)
	if !ok {
		return fmt.Errorf("%s: document has no numeric _id", c.table)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2)`, c.table), id, raw)
	if err != nil {
		return fmt.Errorf("insert %s: %w", c.table, err)
	}
	return nil
}

func (c *sqlCollection) UpdateOne(ctx context.Context, filter Filter, update Update) error {
	docs, err := c.load(ctx, filter)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return ErrNoDocuments
	}
	doc := docs[0]
	applyUpdate(doc, update)
	return c.write(ctx, doc)
}

func (c *sqlCollection) UpdateMany(ctx context.Context, filter Filter, update Update) (int, error) {
	docs, err := c.load(ctx, filter)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		applyUpdate(doc, update)
		if err := c.write(ctx, doc); err != nil {
			return 0, err
		}
	}
	return len(docs), nil
}

func (c *sqlCollection) ReplaceOne(ctx context.Context, filter Filter, doc Document) error {
	docs, err := c.load(ctx, filter)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return ErrNoDocuments
	}
	existing, ok := documentID(docs[0])
	if !ok {
		return fmt.Errorf("%s: document has no numeric _id", c.table)
	}
	replacement := copyDocument(doc)
	replacement["_id"] = float64(existing)
	return c.write(ctx, replacement)
}

func (c *sqlCollection) DeleteOne(ctx context.Context, filter Filter) error {
	docs, err := c.load(ctx, filter)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return ErrNoDocuments
	}
	id, ok := documentID(docs[0])
	if !ok {
		return fmt.Errorf("%s: document has no numeric _id", c.table)
	}
	_, err = c.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, c.table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", c.table, err)
	}
	return nil
}

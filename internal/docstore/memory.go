package docstore

import (
	"context"
	"sync"
)

// Memory is an in-process engine with the same observable semantics as the
// SQL engine: every operation is atomic on its own, ordering between
// operations is whatever the callers produce.
type Memory struct {
	mu          sync.Mutex
	collections map[string][]Document
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]Document)}
}

func (m *Memory) Collection(name string) Collection {
	return &memoryCollection{engine: m, name: name}
}

type memoryCollection struct {
	engine *Memory
	name   string
}

func (c *memoryCollection) docs() []Document {
	return c.engine.collections[c.name]
}

func (c *memoryCollection) FindOne(_ context.Context, filter Filter) (Document, error) {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()
	for _, doc := range c.docs() {
		if matchDocument(doc, filter) {
			return copyDocument(doc), nil
		}
	}
	return nil, ErrNoDocuments
}

func (c *memoryCollection) Find(_ context.Context, filter Filter, opts *FindOptions) ([]Document, error) {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()
	var matched []Document
	for _, doc := range c.docs() {
		if matchDocument(doc, filter) {
			matched = append(matched, doc)
		}
	}
	matched = applyFindOptions(matched, opts)
	out := make([]Document, len(matched))
	for i, doc := range matched {
		out[i] = copyDocument(doc)
	}
	return out, nil
}

func (c *memoryCollection) InsertOne(_ context.Context, doc Document) error {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()
	c.engine.collections[c.name] = append(c.engine.collections[c.name], copyDocument(doc))
	return nil
}

func (c *memoryCollection) UpdateOne(_ context.Context, filter Filter, update Update) error {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()
	for _, doc := range c.docs() {
		if matchDocument(doc, filter) {
			applyUpdate(doc, update)
			return nil
		}
	}
	return ErrNoDocuments
}

func (c *memoryCollection) UpdateMany(_ context.Context, filter Filter, update Update) (int, error) {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()
	count := 0
	for _, doc := range c.docs() {
		if matchDocument(doc, filter) {
			applyUpdate(doc, update)
			count++
		}
	}
	return count, nil
}

func (c *memoryCollection) ReplaceOne(_ context.Context, filter Filter, doc Document) error {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()
	docs := c.docs()
	for i, existing := range docs {
		if matchDocument(existing, filter) {
			docs[i] = copyDocument(doc)
			return nil
		}
	}
	return ErrNoDocuments
}

func (c *memoryCollection) DeleteOne(_ context.Context, filter Filter) error {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()
	docs := c.docs()
	for i, existing := range docs {
		if matchDocument(existing, filter) {
			c.engine.collections[c.name] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNoDocuments
}

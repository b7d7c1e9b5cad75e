// Package inmemory implements a connector backed by a shared in-process
// byte buffer, for tests and for reference/seed data that never touches a
// real transport. Grounded on original_source/src/connector/in_memory.rs's
// Arc<Mutex<Cursor<Vec<u8>>>> buffer, translated into a *sync.Mutex-guarded
// []byte.
package inmemory

import (
	"context"
	"sync"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/document"
	"github.com/jmfiaschi/chewgo/internal/record"
)

// buffer is the shared state a Connector and its clones point at: cloning
// shares the same underlying bytes, matching the Rust original's Arc.
type buffer struct {
	mu   sync.Mutex
	data []byte
}

type Connector struct {
	connector.Base
	buf *buffer
}

// New creates a connector seeded with data.
func New(data string, doc document.Document) *Connector {
	return &Connector{
		Base: connector.NewBase("in-memory", doc),
		buf:  &buffer{data: []byte(data)},
	}
}

func (c *Connector) Clone() connector.Connector {
	return &Connector{Base: connector.NewBase(c.PathTemplate, c.Doc), buf: c.buf}
}

func (c *Connector) Len(context.Context) (int, bool, error) {
	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()
	return len(c.buf.data), true, nil
}

func (c *Connector) Fetch(context.Context) ([]record.Envelope, error) {
	c.buf.mu.Lock()
	data := append([]byte(nil), c.buf.data...)
	c.buf.mu.Unlock()
	return c.Doc.Read(data)
}

// Send replaces the buffer with the result of connector.Framing in full:
// framed already carries the prior contents (minus their stale footer),
// so this is not an append.
func (c *Connector) Send(_ context.Context, dataset []record.Envelope) error {
	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()
	framed, err := connector.Framing(c.Doc, c.buf.data, dataset)
	if err != nil {
		return err
	}
	c.buf.data = framed
	return nil
}

func (c *Connector) Erase(context.Context) error {
	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()
	c.buf.data = c.buf.data[:0]
	return nil
}

// String returns the buffer's current contents, for assertions in tests.
func (c *Connector) String() string {
	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()
	return string(c.buf.data)
}

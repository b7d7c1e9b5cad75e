package reference_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/connector/inmemory"
	"github.com/jmfiaschi/chewgo/internal/document"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/reference"
	"github.com/jmfiaschi/chewgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingConnector wraps inmemory.Connector to count Fetch calls.
type countingConnector struct {
	*inmemory.Connector
	calls *int64
}

func (c countingConnector) Fetch(ctx context.Context) ([]record.Envelope, error) {
	atomic.AddInt64(c.calls, 1)
	return c.Connector.Fetch(ctx)
}

func (c countingConnector) Clone() connector.Connector {
	return countingConnector{Connector: c.Connector.Clone().(*inmemory.Connector), calls: c.calls}
}

func TestLoaderCachesNonVariableConnector(t *testing.T) {
	doc := document.NewJSONL(document.Metadata{})
	obj := value.NewObject()
	obj.Object().Set("country", value.String("IT"))
	b, err := doc.Write([]record.Envelope{record.Ok(obj)})
	require.NoError(t, err)

	base := inmemory.New(string(b), doc)
	var calls int64
	conn := countingConnector{Connector: base, calls: &calls}

	l := reference.NewLoader()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			envs, err := l.Load(context.Background(), "countries", conn)
			require.NoError(t, err)
			require.Len(t, envs, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

package document

import (
	"testing"

	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func objEnv(pairs ...any) record.Envelope {
	obj := value.NewObject()
	for i := 0; i < len(pairs); i += 2 {
		obj.Object().Set(pairs[i].(string), pairs[i+1].(*value.Value))
	}
	return record.Ok(obj)
}

func TestJSONLRoundTrip(t *testing.T) {
	d := NewJSONL(Metadata{})
	envs := []record.Envelope{
		objEnv("id", value.Number(1), "name", value.String("a")),
		objEnv("id", value.Number(2), "name", value.String("b")),
	}
	out, err := d.Write(envs)
	require.NoError(t, err)

	parsed, err := d.Read(out)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.True(t, value.Equal(envs[0].Serialize(), parsed[0].Serialize()))
	assert.True(t, value.Equal(envs[1].Serialize(), parsed[1].Serialize()))
}

func TestJSONLEmptyBufferIsEmptyDataset(t *testing.T) {
	d := NewJSONL(Metadata{})
	out, err := d.Read(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, d.HasData(nil))
}

func TestJSONArrayFraming(t *testing.T) {
	d := NewJSON(Metadata{}, false)
	assert.Equal(t, []byte("["), d.Header(nil))
	assert.Equal(t, []byte("]"), d.Footer(nil))
	assert.Equal(t, []byte(","), d.Terminator())
	assert.False(t, d.HasData([]byte("[]")))
	assert.True(t, d.HasData([]byte(`[{"a":1}]`)))
}

func TestJSONRoundTrip(t *testing.T) {
	d := NewJSON(Metadata{}, false)
	envs := []record.Envelope{objEnv("a", value.Number(1)), objEnv("b", value.Number(2))}
	body, err := d.Write(envs)
	require.NoError(t, err)
	full := append(d.Header(envs), body...)
	full = append(full, d.Footer(envs)...)

	parsed, err := d.Read(full)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.True(t, value.Equal(envs[0].Serialize(), parsed[0].Serialize()))
}

func TestCSVHeaderDerivedFromFirstRecord(t *testing.T) {
	d := NewCSV(Metadata{}, false, QuoteNecessary, TrimNone)
	envs := []record.Envelope{objEnv("id", value.String("1"), "name", value.String("alice"))}
	header := d.Header(envs)
	assert.Equal(t, "id,name", string(header))
}

func TestCSVRoundTrip(t *testing.T) {
	d := NewCSV(Metadata{}, false, QuoteNecessary, TrimNone)
	envs := []record.Envelope{
		objEnv("id", value.String("1"), "name", value.String("alice")),
		objEnv("id", value.String("2"), "name", value.String("bob")),
	}
	body, err := d.Write(envs)
	require.NoError(t, err)

	full := string(d.Header(envs)) + "\n" + string(body)
	parsed, err := d.Read([]byte(full))
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	v, ok := parsed[1].Serialize().Object().Get("name")
	require.True(t, ok)
	assert.Equal(t, "bob", v.Str())
}

func TestCSVNonFlexibleMismatchedRowIsErr(t *testing.T) {
	d := NewCSV(Metadata{}, false, QuoteNecessary, TrimNone)
	data := "id,name\n1,alice,extra\n"
	parsed, err := d.Read([]byte(data))
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.True(t, parsed[0].IsErr)
}

func TestYAMLRoundTrip(t *testing.T) {
	d := NewYAML(Metadata{})
	envs := []record.Envelope{objEnv("a", value.Number(1)), objEnv("b", value.String("x"))}
	body, err := d.Write(envs)
	require.NoError(t, err)
	parsed, err := d.Read(body)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
}

func TestTOMLRoundTrip(t *testing.T) {
	d := NewTOML(Metadata{})
	envs := []record.Envelope{objEnv("a", value.Number(1), "name", value.String("x"))}
	body, err := d.Write(envs)
	require.NoError(t, err)
	parsed, err := d.Read(body)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	v, ok := parsed[0].Serialize().Object().Get("name")
	require.True(t, ok)
	assert.Equal(t, "x", v.Str())
}

func TestXMLEntryPathFraming(t *testing.T) {
	d := NewXML(Metadata{}, false, " ", 2)
	require.NoError(t, d.SetEntryPath("/root/items/item"))
	assert.Equal(t, "<root><items>", string(d.Header(nil)))
	assert.Equal(t, "</items></root>", string(d.Footer(nil)))
}

func TestXMLRoundTrip(t *testing.T) {
	d := NewXML(Metadata{}, false, " ", 2)
	require.NoError(t, d.SetEntryPath("/root/items/item"))
	envs := []record.Envelope{objEnv("id", value.String("1"), "name", value.String("alice"))}
	body, err := d.Write(envs)
	require.NoError(t, err)

	full := string(d.Header(envs)) + string(body) + string(d.Footer(envs))
	parsed, err := d.Read([]byte(full))
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	v, ok := parsed[0].Serialize().Object().Get("name")
	require.True(t, ok)
	assert.Equal(t, "alice", v.Str())
}

func TestTextSplitsLines(t *testing.T) {
	d := NewText(Metadata{})
	parsed, err := d.Read([]byte("line one\nline two"))
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "line one", parsed[0].Serialize().Str())
	assert.Equal(t, "line two", parsed[1].Serialize().Str())
}

func TestRawPassesBytesThrough(t *testing.T) {
	d := NewRaw(Metadata{})
	parsed, err := d.Read([]byte{0x00, 0x01, 0xff})
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	out, err := d.Write(parsed)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0xff}, out)
}

func TestRawSniffsMIMETypeWhenUnset(t *testing.T) {
	d := NewRaw(Metadata{})
	_, err := d.Read([]byte("%PDF-1.4\n"))
	require.NoError(t, err)
	meta := d.Metadata()
	require.NotNil(t, meta.MIMEType)
	assert.Equal(t, "application", *meta.MIMEType)
	require.NotNil(t, meta.MIMESubtype)
	assert.Equal(t, "pdf", *meta.MIMESubtype)
}

func TestRawKeepsExplicitMIMEType(t *testing.T) {
	mimeType, sub := "text", "plain"
	d := NewRaw(Metadata{MIMEType: &mimeType, MIMESubtype: &sub})
	_, err := d.Read([]byte("%PDF-1.4\n"))
	require.NoError(t, err)
	meta := d.Metadata()
	assert.Equal(t, "text", *meta.MIMEType)
	assert.Equal(t, "plain", *meta.MIMESubtype)
}

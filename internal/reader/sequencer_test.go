package reader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// memFile is an in-memory File for tests.
type memFile struct {
	name    string
	mime    string
	data    []byte
	modTime time.Time
	hasMod  bool
	openErr error
}

func (f *memFile) Name() string     { return f.name }
func (f *memFile) Size() int64      { return int64(len(f.data)) }
func (f *memFile) MimeType() string { return f.mime }

func (f *memFile) ModTime() (time.Time, bool) { return f.modTime, f.hasMod }

func (f *memFile) Open() (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// recordingReader wraps a FileReader and fails the test if a second read is
// started before the previous one has settled.
type recordingReader struct {
	t        *testing.T
	inner    FileReader
	inFlight bool
	calls    []string
}

func (r *recordingReader) begin(name string) {
	if r.inFlight {
		r.t.Errorf("read for %q started while another read was in flight", name)
	}
	r.inFlight = true
	r.calls = append(r.calls, name)
}

func (r *recordingReader) end() { r.inFlight = false }

func (r *recordingReader) ReadDataURL(ctx context.Context, f File) (string, error) {
	r.begin(f.Name())
	defer r.end()
	return r.inner.ReadDataURL(ctx, f)
}

func (r *recordingReader) ReadText(ctx context.Context, f File, charset string) (string, error) {
	r.begin(f.Name())
	defer r.end()
	return r.inner.ReadText(ctx, f, charset)
}

func TestPipelineRunOrderAndSingleNotification(t *testing.T) {
	files := []File{
		&memFile{name: "a.txt", mime: "text/plain", data: []byte("alpha")},
		&memFile{name: "b.txt", mime: "text/plain", data: []byte("bravo")},
		&memFile{name: "c.txt", mime: "text/plain", data: []byte("charlie")},
	}

	var batches []*Batch
	p := &Pipeline{
		Format: Text("utf-8"),
		Notify: func(b *Batch) { batches = append(batches, b) },
	}
	p.Run(context.Background(), files)

	require.Len(t, batches, 1)
	outcomes := batches[0].Outcomes()
	require.Len(t, outcomes, 3)

	for i, expected := range []string{"alpha", "bravo", "charlie"} {
		assert.False(t, outcomes[i].Failed())
		assert.Equal(t, files[i].Name(), outcomes[i].Name)
		assert.Equal(t, expected, outcomes[i].Data)
		assert.Equal(t, files[i].Size(), outcomes[i].Size)
	}
}

func TestPipelineRunEmptyInput(t *testing.T) {
	notified := false
	p := &Pipeline{
		Format: DataURL(),
		Notify: func(*Batch) { notified = true },
	}
	p.Run(context.Background(), nil)
	assert.False(t, notified, "empty input must produce no notification")

	_, ok := p.Collect(context.Background(), []File{})
	assert.False(t, ok)
}

func TestPipelineRunMixedOutcomes(t *testing.T) {
	files := []File{
		&memFile{name: "ok1.txt", data: []byte("one")},
		&memFile{name: "broken.txt", openErr: errors.New("unreadable sector")},
		&memFile{name: "ok2.txt", data: []byte("three")},
	}

	p := &Pipeline{Format: Text("utf-8")}
	batch, ok := p.Collect(context.Background(), files)
	require.True(t, ok, "a failed file must not suppress the notification")

	outcomes := batch.Outcomes()
	require.Len(t, outcomes, 3)
	assert.False(t, outcomes[0].Failed())
	assert.True(t, outcomes[1].Failed())
	assert.False(t, outcomes[2].Failed())
	assert.Equal(t, "unreadable sector", outcomes[1].Err.Message)
	assert.Equal(t, "broken.txt", outcomes[1].Name)
}

func TestPipelineRunAllFailuresStillNotifies(t *testing.T) {
	files := []File{
		&memFile{name: "x", openErr: errors.New("nope")},
		&memFile{name: "y", openErr: errors.New("nope")},
	}

	p := &Pipeline{Format: Base64()}
	batch, ok := p.Collect(context.Background(), files)
	require.True(t, ok)
	for _, o := range batch.Outcomes() {
		assert.True(t, o.Failed())
	}
}

func TestPipelineRunNeverOverlapsReads(t *testing.T) {
	files := []File{
		&memFile{name: "first", data: []byte("1")},
		&memFile{name: "second", openErr: errors.New("fail")},
		&memFile{name: "third", data: []byte("3")},
	}

	rec := &recordingReader{t: t, inner: NewFileReader()}
	p := &Pipeline{Reader: rec, Format: DataURL()}
	_, ok := p.Collect(context.Background(), files)
	require.True(t, ok)

	// One attempt per file, in input order, failures included.
	assert.Equal(t, []string{"first", "second", "third"}, rec.calls)
	assert.False(t, rec.inFlight)
}

func TestPipelineLastModified(t *testing.T) {
	mod := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	files := []File{
		&memFile{name: "dated", data: []byte("x"), modTime: mod, hasMod: true},
		&memFile{name: "undated", data: []byte("y")},
	}

	p := &Pipeline{Format: Text("utf-8")}
	batch, ok := p.Collect(context.Background(), files)
	require.True(t, ok)

	outcomes := batch.Outcomes()
	require.NotNil(t, outcomes[0].LastModified)
	assert.Equal(t, mod, *outcomes[0].LastModified)
	assert.Nil(t, outcomes[1].LastModified)
}

func TestPipelineFormats(t *testing.T) {
	file := func() *memFile {
		return &memFile{name: "hello.txt", mime: "text/plain", data: []byte("Hello")}
	}

	tests := []struct {
		name     string
		format   Format
		expected string
	}{
		{name: "dataurl", format: DataURL(), expected: "data:text/plain;base64,SGVsbG8="},
		{name: "base64", format: Base64(), expected: "SGVsbG8="},
		{name: "text", format: Text("utf-8"), expected: "Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Pipeline{Format: tt.format}
			batch, ok := p.Collect(context.Background(), []File{file()})
			require.True(t, ok)
			require.Len(t, batch.Outcomes(), 1)
			o := batch.Outcomes()[0]
			require.False(t, o.Failed())
			assert.Equal(t, tt.expected, o.Data)
			assert.Equal(t, tt.format, o.Format)
		})
	}
}

func TestFileReaderDataURLDefaultMime(t *testing.T) {
	raw, err := NewFileReader().ReadDataURL(context.Background(), &memFile{name: "blob", data: []byte{0x00, 0x01}})
	require.NoError(t, err)
	assert.Equal(t, "data:application/octet-stream;base64,AAE=", raw)
}

func TestFileReaderTextLatin1(t *testing.T) {
	f := &memFile{name: "cafe.txt", data: []byte{0x63, 0x61, 0x66, 0xE9}}
	raw, err := NewFileReader().ReadText(context.Background(), f, "latin1")
	require.NoError(t, err)
	assert.Equal(t, "café", raw)
}

func TestFileReaderTextUnknownCharset(t *testing.T) {
	_, err := NewFileReader().ReadText(context.Background(), &memFile{name: "f"}, "klingon")
	var re *ReadError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "EncodingError", re.Name)
}

// Independent runs own independent readers and may proceed concurrently.
func TestPipelineIndependentRuns(t *testing.T) {
	var g errgroup.Group
	for run := 0; run < 4; run++ {
		g.Go(func() error {
			files := []File{
				&memFile{name: "a", data: []byte("a")},
				&memFile{name: "b", data: []byte("b")},
			}
			p := &Pipeline{Format: Text("utf-8")}
			batch, ok := p.Collect(context.Background(), files)
			if !ok {
				return errors.New("run produced no batch")
			}
			if len(batch.Outcomes()) != 2 {
				return errors.New("run lost an outcome")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

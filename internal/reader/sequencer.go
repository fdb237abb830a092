package reader

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// File is one user-selected file as presented by the file-source layer. The
// pipeline only borrows it for the duration of a single read.
type File interface {
	Name() string
	Size() int64
	// MimeType may be empty when the source does not report one.
	MimeType() string
	// ModTime reports the last-modified timestamp, ok=false when the source
	// platform does not carry one.
	ModTime() (time.Time, bool)
	// Open hands out the file content for one read.
	Open() (io.ReadCloser, error)
}

// FileReader is the read primitive the sequencer drives. An instance services
// one read at a time: callers must not start a second read before the
// previous call has returned. One FileReader belongs to one run; independent
// runs use independent instances and may proceed concurrently.
type FileReader interface {
	// ReadDataURL reads the whole file and returns it in RFC 2397 form:
	// data:<mime>;base64,<payload>.
	ReadDataURL(ctx context.Context, f File) (string, error)
	// ReadText reads the whole file decoded as text with the named character
	// encoding.
	ReadText(ctx context.Context, f File, charset string) (string, error)
}

// NewFileReader returns the default FileReader over File.Open.
func NewFileReader() FileReader { return &fileReader{} }

type fileReader struct{}

func (r *fileReader) ReadDataURL(ctx context.Context, f File) (string, error) {
	data, err := readAll(ctx, f)
	if err != nil {
		return "", err
	}
	mime := f.MimeType()
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (r *fileReader) ReadText(ctx context.Context, f File, charset string) (string, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return "", &ReadError{Name: "EncodingError", Message: err.Error()}
	}
	data, err := readAll(ctx, f)
	if err != nil {
		return "", err
	}
	text, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", &ReadError{Name: "EncodingError", Message: err.Error()}
	}
	return string(text), nil
}

func readAll(ctx context.Context, f File) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Pipeline reads an ordered list of files one at a time and delivers the
// collected outcomes as a single notification once every file has settled.
//
// Reads are strictly sequential: the read for file i+1 only starts after the
// read for file i has settled and its outcome has been recorded. That is the
// correctness mechanism, not a performance choice — the FileReader services
// one request at a time. A failed read is captured as a Failure outcome and
// the run continues; there is no retry and no per-read timeout (a hung read
// stalls the run, mirroring the read primitive's own contract).
type Pipeline struct {
	// Reader performs the reads. Nil means NewFileReader().
	Reader FileReader
	// Format applies to every file of the run.
	Format Format
	// Notify receives the finalized batch. It is called exactly once per run
	// with a non-empty file list, and never for an empty one.
	Notify func(*Batch)
	// Log defaults to slog.Default().
	Log *slog.Logger
}

// Run drives one pipeline run over files. An empty list produces no
// notification at all; a non-empty list produces exactly one, with one
// outcome per file in input order, even when every read failed.
func (p *Pipeline) Run(ctx context.Context, files []File) {
	if len(files) == 0 {
		return
	}

	runID := uuid.New()
	log := p.logger().With("run_id", runID, "files", len(files), "format", p.Format.String())

	rd := p.Reader
	if rd == nil {
		rd = NewFileReader()
	}

	batch := NewBatch(runID, len(files))
	failures := 0
	for i, f := range files {
		o := p.readOne(ctx, rd, f)
		if o.Failed() {
			failures++
			log.Warn("file read failed", "index", i, "name", o.Name, "error", o.Err.Message)
		}
		if err := batch.Append(i, o); err != nil {
			log.Error("outcome append rejected", "index", i, "error", err)
			return
		}
	}

	if err := batch.Finalize(); err != nil {
		log.Error("batch finalize rejected", "error", err)
		return
	}
	log.Info("run complete", "failures", failures)

	if p.Notify != nil {
		p.Notify(batch)
	}
}

// Collect runs the pipeline and returns the batch directly instead of going
// through Notify. ok is false for the empty-input case, where no batch
// exists.
func (p *Pipeline) Collect(ctx context.Context, files []File) (batch *Batch, ok bool) {
	run := *p
	run.Notify = func(b *Batch) { batch = b }
	run.Run(ctx, files)
	return batch, batch != nil
}

// readOne performs the single read attempt for one file and settles it into
// an outcome. Errors never escape; they become Failure outcomes.
func (p *Pipeline) readOne(ctx context.Context, rd FileReader, f File) Outcome {
	o := Outcome{
		Name:     f.Name(),
		Size:     f.Size(),
		MimeType: f.MimeType(),
		Format:   p.Format,
	}
	if t, ok := f.ModTime(); ok {
		o.LastModified = &t
	}

	var raw string
	var err error
	if p.Format.Kind() == KindText {
		raw, err = rd.ReadText(ctx, f, p.Format.Charset())
	} else {
		raw, err = rd.ReadDataURL(ctx, f)
	}
	if err != nil {
		info := MapError(err)
		o.Err = &info
		return o
	}

	o.Data = p.Format.Decode(raw)
	return o
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

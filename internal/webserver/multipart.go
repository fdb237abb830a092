package webserver

import (
	"io"
	"mime/multipart"
	"time"
)

// multipartFile adapts one uploaded multipart part to the pipeline's file
// handle. Multipart carries no modification time, so ModTime reports absent.
type multipartFile struct {
	header *multipart.FileHeader
}

func (f *multipartFile) Name() string { return SanitizeFilename(f.header.Filename) }

func (f *multipartFile) Size() int64 { return f.header.Size }

func (f *multipartFile) MimeType() string { return f.header.Header.Get("Content-Type") }

func (f *multipartFile) ModTime() (time.Time, bool) { return time.Time{}, false }

func (f *multipartFile) Open() (io.ReadCloser, error) { return f.header.Open() }

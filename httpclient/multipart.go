package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// MultipartBody is a multipart/form-data request body. Fields keep their
// order and may repeat, as in "timestamp_granularities[]".
type MultipartBody struct {
	Fields []Field
	Files  []FileField
}

// Field is a single form value.
type Field struct {
	Name  string
	Value string
}

// FileField is a file part. Exactly one of Data, Reader or Path supplies the content.
type FileField struct {
	FieldName string
	// FileName is sent to the server; it defaults to the base of Path.
	FileName string
	// ContentType defaults to application/octet-stream.
	ContentType string
	Data        []byte
	Reader      io.Reader
	Path        string
}

// Add appends a form field and returns the receiver.
func (m *MultipartBody) Add(name, value string) *MultipartBody {
	m.Fields = append(m.Fields, Field{Name: name, Value: value})
	return m
}

// AddIf appends a form field when value is non-empty.
func (m *MultipartBody) AddIf(name, value string) *MultipartBody {
	if value != "" {
		m.Add(name, value)
	}
	return m
}

// encode builds the body and returns it with its Content-Type header value.
func (m *MultipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.Files {
		if err := writeFilePart(w, f); err != nil {
			return nil, "", fmt.Errorf("multipart field %q: %w", f.FieldName, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, f FileField) error {
	src := f.Reader
	name := f.FileName
	switch {
	case f.Data != nil:
		src = bytes.NewReader(f.Data)
	case f.Path != "":
		file, err := os.Open(f.Path)
		if err != nil {
			return err
		}
		defer file.Close()
		src = file
		if name == "" {
			name = filepath.Base(f.Path)
		}
	}
	if src == nil {
		return fmt.Errorf("no content")
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(f.FieldName), quoteEscaper.Replace(name)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

package client

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"boutique-catalog/internal/storage"
)

// form accumulates multipart fields in order.
type form struct {
	fields [][2]string
	upload *storage.Upload
}

func newForm() *form {
	return &form{}
}

func (f *form) field(name, value string) {
	f.fields = append(f.fields, [2]string{name, value})
}

func (f *form) optional(name string, value *string) {
	if value != nil {
		f.field(name, *value)
	}
}

func (f *form) image(upload *storage.Upload) {
	f.upload = upload
}

func (f *form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, kv := range f.fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("failed to encode field %s: %w", kv[0], err)
		}
	}

	if f.upload != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, f.upload.Filename))
		header.Set("Content-Type", f.upload.ContentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode image: %w", err)
		}
		if _, err := part.Write(f.upload.Data); err != nil {
			return nil, "", fmt.Errorf("failed to encode image: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

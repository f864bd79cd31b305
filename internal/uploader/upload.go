package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
)

// File is a local asset to upload. Size may be 0 when unknown, in which case
// the content is buffered to learn it.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// UploadResult is the subset of the Cloudinary upload response we use.
type UploadResult struct {
	SecureURL    string `json:"secure_url"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
	Bytes        int64  `json:"bytes"`
}

// ProgressFunc receives the sent fraction of the request body, in [0,1].
type ProgressFunc func(fraction float64)

// ResourceType picks the upload endpoint: videos need "video", anything else
// is left to Cloudinary's detection.
func ResourceType(contentType string) string {
	if strings.HasPrefix(contentType, "video") {
		return "video"
	}
	return "auto"
}

// Upload sends f straight to Cloudinary using a server-issued signature.
// The form carries exactly file, api_key, timestamp, signature and folder.
func (c *Client) Upload(ctx context.Context, sig Signature, f File, folder string, progress ProgressFunc) (UploadResult, error) {
	if f.Reader == nil {
		return UploadResult{}, &ValidationError{Field: "file", Msg: "no file provided"}
	}

	content, size, err := sized(f)
	if err != nil {
		return UploadResult{}, &UploadError{Err: err}
	}

	head, tail, contentType, err := multipartFrame(sig, f, folder)
	if err != nil {
		return UploadResult{}, &UploadError{Err: err}
	}

	total := int64(len(head)) + size + int64(len(tail))
	body := &progressReader{
		r:     io.MultiReader(bytes.NewReader(head), content, bytes.NewReader(tail)),
		total: total,
		fn:    progress,
	}

	endpoint := fmt.Sprintf("%s/%s/%s/upload", c.uploadBase, sig.CloudName, ResourceType(f.ContentType))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return UploadResult{}, &UploadError{Err: err}
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)

	// uploads can be long; the context bounds them, not the API timeout
	hc := *c.httpClient
	hc.Timeout = 0

	resp, err := hc.Do(req)
	if err != nil {
		return UploadResult{}, &UploadError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, &UploadError{Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{}, &UploadError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var out UploadResult
	if err := json.Unmarshal(respBody, &out); err != nil {
		return UploadResult{}, &UploadError{Status: resp.StatusCode, Err: fmt.Errorf("invalid JSON from Cloudinary: %w", err)}
	}
	body.finish()
	return out, nil
}

func sized(f File) (io.Reader, int64, error) {
	if f.Size > 0 {
		return io.LimitReader(f.Reader, f.Size), f.Size, nil
	}
	data, err := io.ReadAll(f.Reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

// multipartFrame renders everything around the file bytes so the body length
// is known before streaming.
func multipartFrame(sig Signature, f File, folder string) (head, tail []byte, contentType string, err error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"api_key", sig.APIKey},
		{"timestamp", strconv.FormatInt(sig.Timestamp, 10)},
		{"signature", sig.Signature},
	}
	if folder != "" {
		fields = append(fields, [2]string{"folder", folder})
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, nil, "", err
		}
	}

	name := f.Name
	if name == "" {
		name = "upload"
	}
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", ct)
	if _, err := mw.CreatePart(h); err != nil {
		return nil, nil, "", err
	}

	headLen := buf.Len()
	if err := mw.Close(); err != nil {
		return nil, nil, "", err
	}
	all := buf.Bytes()
	return all[:headLen], all[headLen:], mw.FormDataContentType(), nil
}

type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	fn    ProgressFunc
	once  sync.Once
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(float64(p.sent) / float64(p.total))
	}
	return n, err
}

func (p *progressReader) report(f float64) {
	if p.fn == nil {
		return
	}
	if f > 1 {
		f = 1
	}
	p.fn(f)
}

// finish reports completion once the host has accepted the upload.
func (p *progressReader) finish() {
	p.once.Do(func() { p.report(1) })
}

// Package images turns the image references found in input rows into
// something an inference service can consume: a URL it can fetch itself, or
// the raw bytes and MIME type of the image.
package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rotisserie/eris"

	"github.com/laxmi8801/data-extractor/internal/domain"
)

// MaxImageBytes caps the size of a single image read or downloaded
const MaxImageBytes = 20 << 20

// Image is a resolved label image
type Image struct {
	Data     []byte
	MIMEType string
}

// Resolver resolves image references. A reference is an http(s) URL, a
// base64 data URL, or a path to a local file.
type Resolver struct {
	httpClient *http.Client
	validator  *URLValidator
}

// NewResolver creates a resolver. A nil client gets a default one tuned for
// single image downloads.
func NewResolver(httpClient *http.Client, validator *URLValidator) *Resolver {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   2,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
			},
			Timeout: 30 * time.Second,
		}
	}
	if validator == nil {
		validator = NewURLValidator()
	}
	return &Resolver{httpClient: httpClient, validator: validator}
}

// URL returns a URL the inference service can load. Remote URLs are checked
// and passed through, data URLs pass through, and local files are inlined as
// data URLs.
func (r *Resolver) URL(ref string) (string, error) {
	switch {
	case isDataURL(ref):
		if _, err := decodeDataURL(ref); err != nil {
			return "", err
		}
		return ref, nil
	case isRemote(ref):
		if err := r.validator.Validate(ref); err != nil {
			return "", err
		}
		return ref, nil
	default:
		img, err := readLocal(ref)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data)), nil
	}
}

// Fetch returns the bytes of the referenced image. Download failures wrap
// domain.ErrTransport; anything that is not an image wraps
// domain.ErrInvalidImageRef.
func (r *Resolver) Fetch(ctx context.Context, ref string) (*Image, error) {
	switch {
	case isDataURL(ref):
		return decodeDataURL(ref)
	case isRemote(ref):
		if err := r.validator.Validate(ref); err != nil {
			return nil, err
		}
		return r.download(ctx, ref)
	default:
		return readLocal(ref)
	}
}

func (r *Resolver) download(ctx context.Context, imageURL string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, eris.Wrapf(domain.ErrInvalidImageRef, "build request for %q: %v", imageURL, err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "labelreader/1.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(domain.ErrTransport, "download %q: %v", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(domain.ErrTransport, "download %q: status %d", imageURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, eris.Wrapf(domain.ErrTransport, "read %q: %v", imageURL, err)
	}
	if len(data) > MaxImageBytes {
		return nil, eris.Wrapf(domain.ErrInvalidImageRef, "%q is larger than %d bytes", imageURL, MaxImageBytes)
	}
	return detect(imageURL, data)
}

func readLocal(ref string) (*Image, error) {
	path := strings.TrimPrefix(ref, "file://")

	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(domain.ErrInvalidImageRef, "%q is not a URL or readable file", ref)
	}
	if info.IsDir() {
		return nil, eris.Wrapf(domain.ErrInvalidImageRef, "%q is a directory", ref)
	}
	if info.Size() > MaxImageBytes {
		return nil, eris.Wrapf(domain.ErrInvalidImageRef, "%q is larger than %d bytes", ref, MaxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(domain.ErrInvalidImageRef, "read %q: %v", ref, err)
	}
	return detect(ref, data)
}

// detect sniffs the MIME type from content and rejects anything that is not
// an image.
func detect(ref string, data []byte) (*Image, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, eris.Wrapf(domain.ErrInvalidImageRef, "%q is %s, not an image", ref, mt.String())
	}
	return &Image{Data: data, MIMEType: mt.String()}, nil
}

func decodeDataURL(ref string) (*Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, eris.Wrap(domain.ErrInvalidImageRef, "data URL has no payload")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, eris.Wrap(domain.ErrInvalidImageRef, "data URL is not base64 encoded")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, eris.Wrapf(domain.ErrInvalidImageRef, "data URL has type %q", mimeType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, eris.Wrapf(domain.ErrInvalidImageRef, "decode data URL: %v", err)
	}
	return &Image{Data: data, MIMEType: mimeType}, nil
}

func isDataURL(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// isRemote reports whether ref has a URL scheme other than file. Non-http
// schemes are rejected later by the validator.
func isRemote(ref string) bool {
	scheme, _, ok := strings.Cut(ref, "://")
	return ok && !strings.EqualFold(scheme, "file")
}

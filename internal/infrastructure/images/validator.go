package images

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/laxmi8801/data-extractor/internal/domain"
)

// URLValidator checks remote image references
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator accepts http and https URLs on any host
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithHosts restricts remote images to the given hosts
func NewURLValidatorWithHosts(hosts []string) *URLValidator {
	v := NewURLValidator()
	v.allowedHosts = hosts
	return v
}

// Validate returns an error wrapping domain.ErrInvalidImageRef when imageURL
// cannot be sent to an inference service.
func (v *URLValidator) Validate(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return eris.Wrap(domain.ErrInvalidImageRef, "empty URL")
	}

	parsed, err := url.Parse(imageURL)
	if err != nil {
		return eris.Wrapf(domain.ErrInvalidImageRef, "parse %q: %v", imageURL, err)
	}
	if !contains(v.allowedSchemes, strings.ToLower(parsed.Scheme)) {
		return eris.Wrapf(domain.ErrInvalidImageRef, "scheme %q not allowed", parsed.Scheme)
	}
	if parsed.Host == "" {
		return eris.Wrapf(domain.ErrInvalidImageRef, "%q has no host", imageURL)
	}
	if len(v.allowedHosts) > 0 && !contains(v.allowedHosts, parsed.Hostname()) {
		return eris.Wrapf(domain.ErrInvalidImageRef, "host %q not allowed", parsed.Hostname())
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

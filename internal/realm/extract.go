package realm

import (
	"regexp"
	"strings"
	"sync"
)

// Tags read from verification and char list responses.
const (
	TagAccessToken          = "AccessToken"
	TagAccessTokenTimestamp = "AccessTokenTimestamp"
	TagAccessTokenExpiry    = "AccessTokenExpiration"
	TagError                = "Error"
)

// FieldExtractor pulls the text between the first <tag> and its matching
// </tag> out of a response body. The service answers in an XML-like format
// that is not guaranteed to be well formed, so extractors scan text instead
// of parsing a document. Content never spans a line break.
type FieldExtractor interface {
	ExtractTaggedField(body, tag string) (string, bool)
}

// RegexExtractor matches <tag>(.*?)</tag>, compiling one pattern per tag.
type RegexExtractor struct {
	patterns sync.Map // tag → *regexp.Regexp
}

// NewRegexExtractor returns the default extractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

func (r *RegexExtractor) ExtractTaggedField(body, tag string) (string, bool) {
	m := r.pattern(tag).FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (r *RegexExtractor) pattern(tag string) *regexp.Regexp {
	if p, ok := r.patterns.Load(tag); ok {
		return p.(*regexp.Regexp)
	}
	q := regexp.QuoteMeta(tag)
	p, _ := r.patterns.LoadOrStore(tag, regexp.MustCompile("<"+q+">(.*?)</"+q+">"))
	return p.(*regexp.Regexp)
}

// ScanExtractor finds the same fields with plain index scanning.
type ScanExtractor struct{}

func (ScanExtractor) ExtractTaggedField(body, tag string) (string, bool) {
	open, closing := "<"+tag+">", "</"+tag+">"
	from := 0
	for {
		i := strings.Index(body[from:], open)
		if i < 0 {
			return "", false
		}
		start := from + i + len(open)
		rest := body[start:]
		end := strings.Index(rest, closing)
		if end < 0 {
			return "", false
		}
		if nl := strings.IndexByte(rest[:end], '\n'); nl < 0 {
			return rest[:end], true
		}
		// a line break sits between this opening tag and the closing one;
		// retry from the next opening tag
		from = from + i + 1
	}
}

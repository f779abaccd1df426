package debian

import (
	"bufio"
	"io"
	"strings"

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
)

// Paragraph is one RFC822-like control-file record: an ordered set of
// Field: Value pairs with folded continuation lines joined back together.
// The same shape is used for InRelease documents, Packages indices, and
// /var/lib/dpkg/status entries (spec.md §4.2's "Control paragraph"), so one
// parser serves all three.
type Paragraph map[string]string

// Get returns the field's value (empty string if absent).
func (p Paragraph) Get(field string) string {
	return p[field]
}

// ParseParagraphs splits r on blank lines into Paragraphs, folding
// continuation lines (those starting with whitespace) into the previous
// field's value, separated by a newline and with surrounding whitespace
// trimmed.
func ParseParagraphs(r io.Reader) ([]Paragraph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		paragraphs []Paragraph
		current    Paragraph
		lastField  string
	)

	flush := func() {
		if current != nil {
			paragraphs = append(paragraphs, current)
		}

		current = nil
		lastField = ""
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flush()

			continue
		}

		if current == nil {
			current = make(Paragraph)
		}

		if line[0] == ' ' || line[0] == '\t' {
			if lastField == "" {
				return nil, bperrors.New(bperrors.KindParse, "continuation line with no preceding field")
			}

			current[lastField] += "\n" + strings.TrimSpace(line)

			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, bperrors.Newf(bperrors.KindParse, "malformed control line: %q", line)
		}

		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)
		current[field] = value
		lastField = field
	}

	if err := scanner.Err(); err != nil {
		return nil, bperrors.Wrap(err, bperrors.KindParse, "reading control paragraphs")
	}

	flush()

	return paragraphs, nil
}

// Package frontmatter converts between raw note bytes and a (metadata, body)
// pair. The metadata lives in a TOML block delimited by lines containing
// exactly "+++" at the top of the file; everything after the closing
// delimiter is body, byte for byte.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Delimiter is the line that opens and closes a front-matter block.
const Delimiter = "+++"

// ErrMalformedHeader is returned when a file opens a front-matter block but
// never closes it. A leading delimiter unambiguously declares intent to have
// a header, so this is an error rather than a fallback to "no front matter".
var ErrMalformedHeader = errors.New("frontmatter: missing closing delimiter")

// ParseError reports TOML that failed to parse inside a delimited block.
type ParseError struct {
	Block string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("frontmatter: parse header block %q: %v", e.Block, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Meta is the structured front-matter payload. Only "title" is interpreted
// by the engine; every other key is carried opaquely through a load→save
// round trip.
type Meta map[string]any

// Title returns the "title" key, or "" when absent. Defaulting a missing
// title is the note's policy, not the codec's.
func (m Meta) Title() string {
	if t, ok := m["title"].(string); ok {
		return t
	}
	return ""
}

// SetTitle replaces the "title" key.
func (m Meta) SetTitle(title string) {
	m["title"] = title
}

// Decode splits raw file bytes into metadata and body. A file whose first
// line is not the delimiter has no front matter: the metadata is empty and
// the body is the entire content.
func Decode(raw []byte) (Meta, string, error) {
	line, next := readLine(raw, 0)
	if !isDelimiter(line) {
		return Meta{}, string(raw), nil
	}

	blockStart := next
	for off := next; ; {
		if off >= len(raw) {
			return nil, "", ErrMalformedHeader
		}
		line, next := readLine(raw, off)
		if isDelimiter(line) {
			meta := Meta{}
			block := raw[blockStart:off]
			if err := toml.Unmarshal(block, &meta); err != nil {
				return nil, "", &ParseError{Block: string(block), Err: err}
			}
			return meta, string(raw[next:]), nil
		}
		off = next
	}
}

// Encode serializes metadata and body back into file bytes: opening
// delimiter, TOML, closing delimiter, body verbatim. Empty metadata writes
// no header at all, so files that never had one stay that way.
func Encode(meta Meta, body string) ([]byte, error) {
	if len(meta) == 0 {
		return []byte(body), nil
	}
	block, err := toml.Marshal(map[string]any(meta))
	if err != nil {
		return nil, fmt.Errorf("frontmatter: encode header: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(block) + len(body) + 2*len(Delimiter) + 2)
	buf.WriteString(Delimiter)
	buf.WriteByte('\n')
	buf.Write(block)
	buf.WriteString(Delimiter)
	buf.WriteByte('\n')
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// readLine returns the line starting at off (without its terminator) and the
// offset just past it. The final line may lack a trailing newline.
func readLine(raw []byte, off int) (string, int) {
	if i := bytes.IndexByte(raw[off:], '\n'); i >= 0 {
		return string(raw[off : off+i]), off + i + 1
	}
	return string(raw[off:]), len(raw)
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, "\r") == Delimiter
}

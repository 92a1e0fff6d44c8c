package metadata

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the content file opened a YAML
// frontmatter block but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// SplitFrontmatter separates a leading `---` delimited YAML block from the
// markdown body and parses it. Content without frontmatter is returned as-is
// with nil fields. A block that yields no keys is not frontmatter: it is
// markdown between two thematic breaks (a `# heading` is a YAML comment).
func SplitFrontmatter(content []byte) (fields map[string]any, body []byte, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return nil, content, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter at EOF without a trailing newline still counts.
		tail := []byte(nl + "---")
		if !bytes.HasSuffix(content, tail) {
			return nil, content, ErrMissingClosingDelimiter
		}
		idx = len(content) - start - len(tail)
		closeSeq = tail
	}

	raw := content[start : start+idx+len(nl)]
	body = content[start+idx+len(closeSeq):]

	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, content, err
	}
	if len(fields) == 0 {
		return nil, content, nil
	}
	return fields, body, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

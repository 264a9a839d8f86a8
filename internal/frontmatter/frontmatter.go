// Package frontmatter edits the delimited key-value block at the head of a
// Markdown note.
//
// The block is parsed into an ordered list of top-level fields, each keeping
// its raw lines, so fields this package does not touch are written back
// byte-for-byte. Only SetScalar and SetLiteral change anything.
package frontmatter

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	delimiter = "---"
	// Indent is used for the lines of a literal block written by SetLiteral.
	Indent = "  "
)

var keyRe = regexp.MustCompile(`^("[^"]*"|'[^']*'|[^\s#"'\-][^:]*?)[ \t]*:(?:[ \t]|$)`)

// Field is one top-level key and every raw line belonging to it.
type Field struct {
	Key   string
	Lines []string
}

// Document is a note split into its frontmatter and body.
type Document struct {
	// HasBlock reports whether the note had a well-formed block when parsed.
	HasBlock bool
	// Unclosed reports a "---" first line with no closing line. The text is
	// treated as body and a new block goes in front of it.
	Unclosed bool
	Preamble []string
	Fields   []Field
	Body     string

	newline string
	closer  string
	closeNL bool
}

// cutLine splits s at the first "\n", dropping a trailing "\r" from the line.
func cutLine(s string) (line, rest string, found bool) {
	line, rest, found = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest, found
}

// Parse splits text into frontmatter and body. A block starts with a "---"
// first line and ends at the next "---" or "..." line; without the closing
// line the whole text is body.
func Parse(text string) *Document {
	d := &Document{Body: text, newline: "\n", closer: delimiter, closeNL: true}

	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		d.newline = "\r\n"
	}

	first, rest, found := cutLine(text)
	if !found || strings.TrimRight(first, " \t") != delimiter {
		return d
	}

	var block []string
	for {
		line, r, more := cutLine(rest)
		if t := strings.TrimRight(line, " \t"); t == delimiter || t == "..." {
			d.HasBlock = true
			d.closer = t
			d.closeNL = more
			d.Body = r
			break
		}
		block = append(block, line)
		if !more {
			d.Unclosed = true
			return d
		}
		rest = r
	}

	for _, line := range block {
		if m := keyRe.FindStringSubmatch(line); m != nil {
			d.Fields = append(d.Fields, Field{Key: unquote(m[1]), Lines: []string{line}})
			continue
		}
		if len(d.Fields) == 0 {
			d.Preamble = append(d.Preamble, line)
			continue
		}
		last := &d.Fields[len(d.Fields)-1]
		last.Lines = append(last.Lines, line)
	}
	return d
}

func unquote(k string) string {
	if len(k) >= 2 && (k[0] == '"' || k[0] == '\'') && k[len(k)-1] == k[0] {
		return k[1 : len(k)-1]
	}
	return k
}

func (d *Document) index(key string) int {
	for i, f := range d.Fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool { return d.index(key) >= 0 }

// Keys lists the field keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		keys[i] = f.Key
	}
	return keys
}

// decode parses the raw field as YAML and returns its value node.
func decode(f Field) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(strings.Join(f.Lines, "\n")), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode || len(doc.Content[0].Content) < 2 {
		return nil, nil
	}
	return doc.Content[0].Content[1], nil
}

// Get returns the value of a single-line field.
func (d *Document) Get(key string) (string, bool) {
	i := d.index(key)
	if i < 0 {
		return "", false
	}
	f := d.Fields[i]
	if n, err := decode(f); err == nil {
		if n == nil || n.Kind != yaml.ScalarNode {
			return "", true
		}
		return n.Value, true
	}
	_, v, _ := strings.Cut(f.Lines[0], ":")
	return strings.TrimSpace(v), true
}

// Lines returns the value of key as text lines. A literal block is split on
// newlines; a sequence yields one line per item, and a mapping item yields one
// "key: value" line per pair. Plain, quoted and folded scalars spanning several
// lines, and fields that are not valid YAML, return their raw lines with
// indentation removed, since decoding would fold them into one line.
func (d *Document) Lines(key string) []string {
	i := d.index(key)
	if i < 0 {
		return nil
	}
	f := d.Fields[i]
	n, err := decode(f)
	if err != nil || folds(n, f) {
		return rawLines(f)
	}
	return nodeLines(n)
}

func folds(n *yaml.Node, f Field) bool {
	if n == nil || n.Kind != yaml.ScalarNode || n.Style&yaml.LiteralStyle != 0 {
		return false
	}
	return len(rawLines(f)) > 1
}

func nodeLines(n *yaml.Node) []string {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" || n.Value == "" {
			return nil
		}
		return strings.Split(strings.TrimRight(n.Value, "\n"), "\n")
	case yaml.SequenceNode:
		var out []string
		for _, item := range n.Content {
			out = append(out, nodeLines(item)...)
		}
		return out
	case yaml.MappingNode:
		var out []string
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if v.Kind == yaml.ScalarNode {
				out = append(out, k.Value+": "+v.Value)
				continue
			}
			out = append(out, nodeLines(v)...)
		}
		return out
	case yaml.AliasNode:
		return nodeLines(n.Alias)
	}
	return nil
}

func rawLines(f Field) []string {
	var out []string
	if _, v, _ := strings.Cut(f.Lines[0], ":"); v != "" {
		v = strings.TrimSpace(v)
		if v != "" && !strings.HasPrefix(v, "|") && !strings.HasPrefix(v, ">") {
			out = append(out, v)
		}
	}
	for _, l := range f.Lines[1:] {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "#") {
			continue
		}
		out = append(out, t)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// SetScalar sets key to a single-line value.
func (d *Document) SetScalar(key, value string) {
	d.set(key, []string{key + ": " + value})
}

// SetLiteral sets key to a literal block scalar holding lines.
func (d *Document) SetLiteral(key string, lines []string) {
	if len(lines) == 0 {
		d.set(key, []string{key + `: ""`})
		return
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, key+": |")
	for _, l := range lines {
		if l == "" {
			out = append(out, l)
			continue
		}
		out = append(out, Indent+l)
	}
	d.set(key, out)
}

// set replaces the first field named key, drops later duplicates, and keeps
// trailing blank or comment lines of the replaced field. A missing key is
// appended.
func (d *Document) set(key string, lines []string) {
	i := d.index(key)
	if i < 0 {
		d.Fields = append(d.Fields, Field{Key: key, Lines: lines})
		return
	}
	d.Fields[i] = Field{Key: key, Lines: append(lines, trailer(d.Fields[i].Lines)...)}

	kept := d.Fields[:i+1]
	for _, f := range d.Fields[i+1:] {
		if f.Key != key {
			kept = append(kept, f)
		}
	}
	d.Fields = kept
}

func trailer(lines []string) []string {
	end := len(lines)
	for end > 1 {
		l := lines[end-1]
		if strings.TrimSpace(l) != "" && !strings.HasPrefix(l, "#") {
			break
		}
		end--
	}
	return append([]string(nil), lines[end:]...)
}

// Render writes the document back out. A note parsed without a block gets a
// new one only when fields were set; its body follows unchanged.
func (d *Document) Render() string {
	if !d.HasBlock && len(d.Fields) == 0 && len(d.Preamble) == 0 {
		return d.Body
	}
	var sb strings.Builder
	nl := d.newline
	sb.WriteString(delimiter + nl)
	for _, l := range d.Preamble {
		sb.WriteString(l + nl)
	}
	for _, f := range d.Fields {
		for _, l := range f.Lines {
			sb.WriteString(l + nl)
		}
	}
	sb.WriteString(d.closer)
	if d.closeNL {
		sb.WriteString(nl)
	}
	sb.WriteString(d.Body)
	return sb.String()
}

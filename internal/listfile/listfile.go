// Package listfile reads order lists from YAML documents.
//
// A list is either a plain YAML document or a Markdown file whose YAML
// frontmatter carries the items:
//
//	items:
//	  - name: Milk
//	    quantity: 2
//	    icon: Shopping
package listfile

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/orderlist/internal/models"
)

// Entry is one list row with the line it was declared on.
type Entry struct {
	models.Candidate
	Line int
}

// List is a parsed order list.
type List struct {
	Title   string
	Entries []Entry
}

type document struct {
	Title string     `yaml:"title"`
	Items []rawEntry `yaml:"items"`
}

// rawEntry keeps quantity as a node so a malformed value reaches the ledger
// as an invalid quantity instead of failing the whole document.
type rawEntry struct {
	Name     string    `yaml:"name"`
	Quantity yaml.Node `yaml:"quantity"`
	Icon     string    `yaml:"icon"`
	line     int
}

func (r *rawEntry) UnmarshalYAML(n *yaml.Node) error {
	type plain rawEntry
	if err := n.Decode((*plain)(r)); err != nil {
		return err
	}
	r.line = n.Line
	return nil
}

// Parse decodes an order list.
func Parse(data []byte) (*List, error) {
	block, offset := frontmatter(data)

	var doc document
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, fmt.Errorf("listfile: %w", err)
	}

	list := &List{Title: strings.TrimSpace(doc.Title)}
	for _, raw := range doc.Items {
		list.Entries = append(list.Entries, Entry{
			Candidate: models.Candidate{
				Name:     raw.Name,
				Quantity: quantity(raw.Quantity),
				IconID:   strings.TrimSpace(raw.Icon),
			},
			Line: raw.line + offset,
		})
	}
	return list, nil
}

// quantity returns the integer value of a scalar node, or 0.
func quantity(n yaml.Node) int {
	if n.Kind != yaml.ScalarNode {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(n.Value))
	if err != nil {
		return 0
	}
	return v
}

// frontmatter returns the YAML block between leading --- delimiters and the
// number of lines preceding it. Content without frontmatter is returned whole.
func frontmatter(data []byte) ([]byte, int) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return data, 0
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return data, 0
	}
	skipped := bytes.Count(data[:len(data)-len(rest)], []byte("\n"))
	return rest[:idx], skipped
}

package document

import (
	"fmt"
	"strings"
)

// Section is a recursive block of prose extracted from a structured text
// format (markdown headings, HTML headings, DOCX styles, PDF pages).
type Section struct {
	Title    string
	Text     string
	Children []*Section
}

// Flatten walks sections depth-first and appends their text to the mapping
// under breadcrumb-style keys built from slugified titles, e.g.
// "history/allergies". Untitled sections get a positional segment.
func Flatten(sections []*Section, m *Mapping) {
	flattenWalk(nil, sections, m)
}

func flattenWalk(crumb []string, sections []*Section, m *Mapping) {
	for i, s := range sections {
		seg := Slugify(s.Title)
		if seg == "" {
			seg = fmt.Sprintf("section-%d", i)
		}
		path := make([]string, 0, len(crumb)+1)
		path = append(path, crumb...)
		path = append(path, seg)

		if strings.TrimSpace(s.Text) != "" {
			m.Add(strings.Join(path, "/"), s.Text)
		}
		flattenWalk(path, s.Children, m)
	}
}

package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/srosato/doctran/internal/document"
)

// TextParser handles plain text files. Each paragraph becomes one section.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Mapping, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	m := document.NewMapping()
	m.Add("title", strings.TrimSuffix(filename, ".txt"))

	sections := make([]*document.Section, 0, len(paragraphs))
	for _, para := range paragraphs {
		sections = append(sections, &document.Section{Text: para})
	}
	document.Flatten(sections, m)

	return m, nil
}

package releasenotes

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/marytreat/pkg/core"
)

// ParseError reports a line that does not fit the document grammar.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse reads a release-notes document. Blank lines are ignored, and an
// indented line right after a bullet continues that bullet.
func Parse(r io.Reader) (*Document, error) {
	var (
		doc      *Document
		current  *Version
		inBullet bool
		lineNo   int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			inBullet = false

		case strings.HasPrefix(line, "# "):
			if doc != nil {
				return nil, &ParseError{Line: lineNo, Msg: "duplicate title heading"}
			}
			doc = &Document{Title: strings.TrimSpace(line[2:])}

		case doc == nil:
			return nil, &ParseError{Line: lineNo, Msg: "text before the title heading"}

		case strings.HasPrefix(line, "##"):
			if !strings.HasPrefix(line, "## ") && line != "##" {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("unexpected heading %q", trimmed)}
			}
			name := strings.TrimSpace(strings.TrimPrefix(line, "##"))
			if name == "" {
				return nil, &ParseError{Line: lineNo, Msg: "empty version heading"}
			}
			doc.Versions = append(doc.Versions, Version{Name: name, Line: lineNo})
			current = &doc.Versions[len(doc.Versions)-1]
			inBullet = false

		case trimmed == "-" || trimmed == "*":
			return nil, &ParseError{Line: lineNo, Msg: "empty bullet"}

		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			if current == nil {
				return nil, &ParseError{Line: lineNo, Msg: "bullet outside a version"}
			}
			current.Entries = append(current.Entries, strings.TrimSpace(line[2:]))
			inBullet = true

		case inBullet && (line[0] == ' ' || line[0] == '\t'):
			last := &current.Entries[len(current.Entries)-1]
			*last += " " + trimmed

		default:
			return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("unexpected text %q", trimmed)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, core.ErrMissingHeader
	}
	return doc, nil
}

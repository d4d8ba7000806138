package releasenotes

import (
	"bytes"
	_ "embed"
	"io"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

var (
	//go:embed RELEASE_NOTES.tpl.md
	releaseNotesTplFile string

	releaseNotesTemplate = template.Must(template.New("release_notes").Parse(releaseNotesTplFile))
)

// Render writes doc in canonical form. Runs of whitespace in the title,
// version names and entries become a single space and blank entries are
// dropped, so that parsing the output gives back the same structure.
func Render(w io.Writer, doc *Document) error {
	canonical, err := canonicalize(doc)
	if err != nil {
		return err
	}
	buf := bytes.NewBufferString("")
	if err := releaseNotesTemplate.Execute(buf, canonical); err != nil {
		return errors.WithStack(err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "unable to write release notes")
	}
	return nil
}

func canonicalize(doc *Document) (*Document, error) {
	out := &Document{Title: oneLine(doc.Title), Versions: make([]Version, 0, len(doc.Versions))}
	for i, v := range doc.Versions {
		cv := Version{Name: oneLine(v.Name), Line: v.Line}
		if cv.Name == "" {
			return nil, errors.Errorf("version %d has no name", i+1)
		}
		for _, e := range v.Entries {
			if e = oneLine(e); e != "" {
				cv.Entries = append(cv.Entries, e)
			}
		}
		out.Versions = append(out.Versions, cv)
	}
	return out, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

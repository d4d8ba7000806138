// Package releasenotes reads, checks, writes and drafts Markdown release
// notes of the form
//
//	# Release notes
//
//	## 1.2.0
//
//	- First change
//	- Second change
//
// Versions are listed newest first.
package releasenotes

import (
	"errors"
	"strings"
)

// DefaultTitle is the expected top heading.
const DefaultTitle = "Release notes"

// Document is a parsed release-notes file.
type Document struct {
	Title    string
	Versions []Version
}

// Version is one "## <name>" section and its bullets.
type Version struct {
	Name    string
	Entries []string
	Line    int // line of the heading, zero when not parsed from a file
}

// Version returns the section named name, or nil.
func (d *Document) Version(name string) *Version {
	for i := range d.Versions {
		if d.Versions[i].Name == name {
			return &d.Versions[i]
		}
	}
	return nil
}

// AddEntry appends entry to the version named version, inserting the
// version at the top when the document does not have it yet.
func (d *Document) AddEntry(version, entry string) error {
	version = strings.TrimSpace(version)
	entry = strings.Join(strings.Fields(entry), " ")
	if version == "" {
		return errors.New("version name cannot be empty")
	}
	if entry == "" {
		return errors.New("entry cannot be empty")
	}
	if v := d.Version(version); v != nil {
		v.Entries = append(v.Entries, entry)
		return nil
	}
	d.Versions = append([]Version{{Name: version, Entries: []string{entry}}}, d.Versions...)
	return nil
}

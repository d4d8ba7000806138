// Package dita provides a mutable model of DITA topics, maps and ISH
// metadata files.
//
// A Content wraps the parsed element tree and remembers the XML declaration
// and DOCTYPE it was read with, so that a file can be edited and written back
// without losing its header.
package dita

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

const defaultDecl = `version="1.0" encoding="UTF-8"`

// nbsp is the non-breaking space DITA authors use as placeholder text.
const nbsp = "\u00a0"

// Content is a parsed DITA document.
type Content struct {
	doc *etree.Document
}

// Parse reads a DITA document from r.
func Parse(r io.Reader) (*Content, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}

// ParseBytes parses a DITA document held in memory.
func ParseBytes(data []byte) (*Content, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Entity = map[string]string{"nbsp": nbsp}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("invalid xml: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("invalid xml: no root element")
	}
	return &Content{doc: doc}, nil
}

// Root returns the document element.
func (c *Content) Root() *etree.Element {
	return c.doc.Root()
}

// RootTag returns the name of the document element.
func (c *Content) RootTag() string {
	return c.doc.Root().Tag
}

// Header returns the XML declaration and DOCTYPE the document carries,
// one per line, or an empty string when it has neither.
func (c *Content) Header() string {
	var sb strings.Builder
	if pi := c.declaration(); pi != nil {
		sb.WriteString("<?xml " + pi.Inst + "?>\n")
	}
	if d := c.doctype(); d != nil {
		sb.WriteString("<!" + d.Data + ">\n")
	}
	return sb.String()
}

// DocType returns the DOCTYPE directive without the angle brackets.
func (c *Content) DocType() string {
	if d := c.doctype(); d != nil {
		return d.Data
	}
	return ""
}

// SetDocType replaces the DOCTYPE directive, adding one if missing.
func (c *Content) SetDocType(data string) {
	if d := c.doctype(); d != nil {
		d.Data = data
		return
	}
	c.ensureDeclaration()
	idx := c.declaration().Index() + 1
	c.doc.InsertChildAt(idx, etree.NewText("\n"))
	c.doc.InsertChildAt(idx+1, etree.NewDirective(data))
}

func (c *Content) declaration() *etree.ProcInst {
	for _, t := range c.doc.Child {
		if pi, ok := t.(*etree.ProcInst); ok && pi.Target == "xml" {
			return pi
		}
	}
	return nil
}

func (c *Content) doctype() *etree.Directive {
	for _, t := range c.doc.Child {
		if d, ok := t.(*etree.Directive); ok && strings.HasPrefix(d.Data, "DOCTYPE") {
			return d
		}
	}
	return nil
}

func (c *Content) ensureDeclaration() {
	if c.declaration() != nil {
		return
	}
	c.doc.InsertChildAt(0, etree.NewProcInst("xml", defaultDecl))
	c.doc.InsertChildAt(1, etree.NewText("\n"))
}

// WriteTo writes the document, always with an XML declaration.
func (c *Content) WriteTo(w io.Writer) (int64, error) {
	c.ensureDeclaration()
	return c.doc.WriteTo(w)
}

// Bytes serializes the document.
func (c *Content) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// innerText concatenates all character data below e.
func innerText(e *etree.Element) string {
	var sb strings.Builder
	for _, t := range e.Child {
		switch v := t.(type) {
		case *etree.CharData:
			sb.WriteString(v.Data)
		case *etree.Element:
			sb.WriteString(innerText(v))
		}
	}
	return sb.String()
}

// normalizeSpace collapses runs of whitespace, non-breaking spaces
// included, and trims the result.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clearChildren(e *etree.Element) {
	for len(e.Child) > 0 {
		e.RemoveChildAt(0)
	}
}

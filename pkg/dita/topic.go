package dita

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/aretw0/marytreat/pkg/core"
)

// Outputclass returns the outputclass attribute of the root element.
func (c *Content) Outputclass() core.OutputClass {
	return core.OutputClass(c.Root().SelectAttrValue("outputclass", ""))
}

// SetOutputclass sets the outputclass attribute of the root element.
func (c *Content) SetOutputclass(oc core.OutputClass) {
	if oc == "" {
		c.Root().RemoveAttr("outputclass")
		return
	}
	c.Root().CreateAttr("outputclass", string(oc))
}

// TitleElement returns the <title> child of the root, or nil.
func (c *Content) TitleElement() *etree.Element {
	return c.Root().SelectElement("title")
}

// Title returns the whitespace-normalized text of the title, inline
// markup included.
func (c *Content) Title() string {
	t := c.TitleElement()
	if t == nil {
		return c.Root().SelectAttrValue("title", "")
	}
	return normalizeSpace(innerText(t))
}

// TitleMissing reports whether the document has no usable title.
func (c *Content) TitleMissing() bool {
	return c.Title() == ""
}

// SetTitle replaces the title text, creating the element if needed.
func (c *Content) SetTitle(title string) {
	t := c.TitleElement()
	if t == nil {
		t = etree.NewElement("title")
		c.Root().InsertChildAt(0, t)
	}
	clearChildren(t)
	t.SetText(title)
}

// ShortdescElement returns the <shortdesc> child of the root, or nil.
func (c *Content) ShortdescElement() *etree.Element {
	return c.Root().SelectElement("shortdesc")
}

// Shortdesc returns the whitespace-normalized short description.
func (c *Content) Shortdesc() string {
	sd := c.ShortdescElement()
	if sd == nil {
		return ""
	}
	return normalizeSpace(innerText(sd))
}

// ShortdescMissing reports whether the short description is absent or blank.
func (c *Content) ShortdescMissing() bool {
	return c.Shortdesc() == ""
}

// EnsureShortdesc inserts an empty <shortdesc> right after the title when
// the topic has none. It reports whether an element was added.
func (c *Content) EnsureShortdesc() bool {
	if c.ShortdescElement() != nil {
		return false
	}
	sd := etree.NewElement("shortdesc")
	idx := 0
	if t := c.TitleElement(); t != nil {
		idx = t.Index() + 1
	}
	c.Root().InsertChildAt(idx, sd)
	return true
}

// SetShortdesc replaces the short description text.
func (c *Content) SetShortdesc(text string) {
	c.EnsureShortdesc()
	sd := c.ShortdescElement()
	clearChildren(sd)
	sd.SetText(text)
}

// DraftComments returns every <draft-comment> in the document.
func (c *Content) DraftComments() []*etree.Element {
	return c.Root().FindElements(".//draft-comment")
}

// HasDraftComments reports whether any draft comment remains.
func (c *Content) HasDraftComments() bool {
	return len(c.DraftComments()) > 0
}

// DetectType infers an output class from the root element.
func (c *Content) DetectType() core.OutputClass {
	switch core.DocType(c.RootTag()) {
	case core.DocTask:
		return core.ClassProcedure
	case core.DocReference:
		return core.ClassReferenceInformation
	default:
		return core.ClassExplanation
	}
}

// IsTopic reports whether the root is one of the renameable DITA topic types.
func (c *Content) IsTopic() bool {
	tag := core.DocType(c.RootTag())
	for _, dt := range core.DocTypes {
		if dt == tag {
			return true
		}
	}
	return false
}

// RemoveTaskContext deletes the <context> section of a task body.
func (c *Content) RemoveTaskContext() bool {
	if core.DocType(c.RootTag()) != core.DocTask {
		return false
	}
	body := c.Root().SelectElement("taskbody")
	if body == nil {
		return false
	}
	ctx := body.SelectElement("context")
	if ctx == nil {
		return false
	}
	body.RemoveChild(ctx)
	return true
}

// AddNbspAfterTables makes sure every table is followed by a paragraph
// holding a single non-breaking space, so that consecutive tables do not
// merge in the rendered output. It returns the number of paragraphs added.
func (c *Content) AddNbspAfterTables() int {
	added := 0
	for _, table := range c.Root().FindElements(".//table") {
		parent := table.Parent()
		if parent == nil {
			continue
		}
		if next := nextElement(table); next != nil && isSpacer(next) {
			continue
		}
		p := etree.NewElement("p")
		p.SetText(nbsp)
		parent.InsertChildAt(table.Index()+1, p)
		added++
	}
	return added
}

func isSpacer(e *etree.Element) bool {
	return e.Tag == "p" && len(e.ChildElements()) == 0 && strings.TrimSpace(e.Text()) == "" && e.Text() != ""
}

// nextElement returns the element sibling following e, skipping whitespace.
func nextElement(e *etree.Element) *etree.Element {
	parent := e.Parent()
	for _, t := range parent.Child[e.Index()+1:] {
		switch v := t.(type) {
		case *etree.Element:
			return v
		case *etree.CharData:
			if strings.TrimSpace(v.Data) != "" {
				return nil
			}
		}
	}
	return nil
}

package dita

import (
	"fmt"

	"github.com/beevik/etree"
)

// IsISHObject reports whether the document is an ISH metadata file.
func (c *Content) IsISHObject() bool {
	return c.RootTag() == "ishobject"
}

func (c *Content) ishField(name string) *etree.Element {
	return c.Root().FindElement(fmt.Sprintf(".//ishfields/ishfield[@name='%s']", name))
}

// FAttribute returns the value of an ISH metadata field such as FTITLE.
func (c *Content) FAttribute(name string) (string, bool) {
	f := c.ishField(name)
	if f == nil {
		return "", false
	}
	return f.Text(), true
}

// SetFAttribute sets an ISH metadata field, creating it when missing.
func (c *Content) SetFAttribute(name, value string) {
	f := c.ishField(name)
	if f == nil {
		fields := c.Root().FindElement(".//ishfields")
		if fields == nil {
			fields = c.Root().CreateElement("ishfields")
		}
		f = fields.CreateElement("ishfield")
		f.CreateAttr("name", name)
		f.CreateAttr("level", "logical")
	}
	clearChildren(f)
	f.SetText(value)
}

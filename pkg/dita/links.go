package dita

import (
	"strings"

	"github.com/beevik/etree"
)

// linkAttrs are the attributes that may point at another project file.
var linkAttrs = []string{"href", "conref"}

// isLocal reports whether a link value points inside the project folder.
func isLocal(e *etree.Element, val string) bool {
	if val == "" || strings.HasPrefix(val, "#") {
		return false
	}
	if e.SelectAttrValue("scope", "") == "external" {
		return false
	}
	if strings.Contains(val, "://") || strings.HasPrefix(val, "mailto:") {
		return false
	}
	return true
}

// splitFragment separates "file.dita#topic/el" into path and "#topic/el".
func splitFragment(val string) (string, string) {
	if i := strings.IndexByte(val, '#'); i >= 0 {
		return val[:i], val[i:]
	}
	return val, ""
}

// LocalLinks returns the distinct project-relative files referenced by the
// document, fragments removed. Image references are not included.
func (c *Content) LocalLinks() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range c.Root().FindElements(".//*") {
		if e.Tag == "image" {
			continue
		}
		for _, key := range linkAttrs {
			val := e.SelectAttrValue(key, "")
			if !isLocal(e, val) {
				continue
			}
			path, _ := splitFragment(val)
			if path == "" || seen[path] {
				continue
			}
			seen[path] = true
			out = append(out, path)
		}
	}
	return out
}

// UpdateLocalLinks points every link to oldPath at newPath, keeping any
// fragment. It returns the number of attributes changed.
func (c *Content) UpdateLocalLinks(oldPath, newPath string) int {
	if oldPath == newPath {
		return 0
	}
	changed := 0
	for _, e := range c.Root().FindElements(".//*") {
		if e.Tag == "image" {
			continue
		}
		for _, key := range linkAttrs {
			val := e.SelectAttrValue(key, "")
			if !isLocal(e, val) {
				continue
			}
			path, frag := splitFragment(val)
			if path != oldPath {
				continue
			}
			e.CreateAttr(key, newPath+frag)
			changed++
		}
	}
	return changed
}

// Topicrefs returns every topicref of a map in document order.
func (c *Content) Topicrefs() []*etree.Element {
	return c.Root().FindElements(".//topicref")
}

// UpdateTopicref points topicrefs with href oldHref at newHref.
func (c *Content) UpdateTopicref(oldHref, newHref string) int {
	if oldHref == newHref {
		return 0
	}
	changed := 0
	for _, ref := range c.Topicrefs() {
		if ref.SelectAttrValue("href", "") == oldHref {
			ref.CreateAttr("href", newHref)
			changed++
		}
	}
	return changed
}

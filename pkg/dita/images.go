package dita

import (
	"strings"

	"github.com/beevik/etree"
)

// FigureImage is an image placed in a <fig>, with the figure title.
type FigureImage struct {
	Href  string
	Title string
}

// FigureImages lists the images placed in figures.
func (c *Content) FigureImages() []FigureImage {
	var out []FigureImage
	for _, fig := range c.Root().FindElements(".//fig") {
		img := fig.SelectElement("image")
		if img == nil {
			continue
		}
		href := img.SelectAttrValue("href", "")
		if href == "" {
			continue
		}
		fi := FigureImage{Href: href}
		if t := fig.SelectElement("title"); t != nil {
			fi.Title = strings.TrimSpace(innerText(t))
		}
		out = append(out, fi)
	}
	return out
}

// SyncImageAlts sets the <alt> text of every figure image to the figure
// title, or to a non-breaking space when the figure has no title.
func (c *Content) SyncImageAlts() {
	for _, fig := range c.Root().FindElements(".//fig") {
		img := fig.SelectElement("image")
		if img == nil {
			continue
		}
		text := nbsp
		if t := fig.SelectElement("title"); t != nil {
			if title := strings.TrimSpace(innerText(t)); title != "" {
				text = title
			}
		}
		alt := img.SelectElement("alt")
		if alt == nil {
			alt = img.CreateElement("alt")
		}
		clearChildren(alt)
		alt.SetText(text)
	}
}

// ImageHrefs returns the href of every <image>, figures or not.
func (c *Content) ImageHrefs() []string {
	var out []string
	for _, img := range c.Root().FindElements(".//image") {
		if href := img.SelectAttrValue("href", ""); href != "" {
			out = append(out, href)
		}
	}
	return out
}

// UpdateImageHrefs rewrites image references from oldHref to newHref.
func (c *Content) UpdateImageHrefs(oldHref, newHref string) int {
	changed := 0
	for _, img := range c.Root().FindElements(".//image") {
		if img.SelectAttrValue("href", "") == oldHref {
			img.CreateAttr("href", newHref)
			changed++
		}
	}
	return changed
}

// WrapImagesInFig puts every image that is not already in a figure into a
// new <fig>. A paragraph that holds nothing but the image is replaced by
// the figure. It returns the number of figures created.
func (c *Content) WrapImagesInFig() int {
	var loose []*etree.Element
	for _, img := range c.Root().FindElements(".//image") {
		if p := img.Parent(); p != nil && p.Tag != "fig" {
			loose = append(loose, img)
		}
	}
	for _, img := range loose {
		target := img
		if p := img.Parent(); p.Tag == "p" && onlyChild(p, img) && p.Parent() != nil {
			target = p
		}
		parent := target.Parent()
		idx := target.Index()
		parent.RemoveChildAt(idx)
		fig := etree.NewElement("fig")
		if target != img {
			img.Parent().RemoveChild(img)
		}
		fig.AddChild(img)
		parent.InsertChildAt(idx, fig)
	}
	return len(loose)
}

// onlyChild reports whether e is the sole non-whitespace content of p.
func onlyChild(p, e *etree.Element) bool {
	for _, t := range p.Child {
		switch v := t.(type) {
		case *etree.Element:
			if v != e {
				return false
			}
		case *etree.CharData:
			if strings.TrimSpace(v.Data) != "" {
				return false
			}
		}
	}
	return true
}

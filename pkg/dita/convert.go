package dita

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/aretw0/marytreat/pkg/core"
)

var bodyTags = map[core.DocType]string{
	core.DocConcept:   "conbody",
	core.DocTask:      "taskbody",
	core.DocReference: "refbody",
}

var publicIDs = map[core.DocType]string{
	core.DocConcept:   `DOCTYPE concept PUBLIC "-//OASIS//DTD DITA Concept//EN" "concept.dtd"`,
	core.DocTask:      `DOCTYPE task PUBLIC "-//OASIS//DTD DITA Task//EN" "task.dtd"`,
	core.DocReference: `DOCTYPE reference PUBLIC "-//OASIS//DTD DITA Reference//EN" "reference.dtd"`,
}

// ConvertTo retypes the document: the root and body elements are renamed
// and the DOCTYPE is swapped. Converting to a task also turns the first
// ordered list of the body into <steps>; a taskbody allows one <steps>, so
// any later list is left alone.
func (c *Content) ConvertTo(dt core.DocType) error {
	decl, ok := publicIDs[dt]
	if !ok {
		return fmt.Errorf("unsupported topic type %q", dt)
	}
	root := c.Root()
	body := findBody(root)
	if body == nil {
		return fmt.Errorf("%s has no body element", root.Tag)
	}
	root.Tag = string(dt)
	body.Tag = bodyTags[dt]
	c.SetDocType(decl)
	if dt == core.DocTask {
		if ol := body.SelectElement("ol"); ol != nil {
			listToSteps(ol)
		}
	}
	return nil
}

func findBody(root *etree.Element) *etree.Element {
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "body", "conbody", "taskbody", "refbody":
			return child
		}
	}
	return nil
}

// listToSteps turns <ol><li>x</li></ol> into <steps><step><cmd>x</cmd></step></steps>.
func listToSteps(ol *etree.Element) {
	ol.Tag = "steps"
	for _, li := range ol.SelectElements("li") {
		li.Tag = "step"
		cmd := etree.NewElement("cmd")
		for len(li.Child) > 0 {
			cmd.AddChild(li.RemoveChildAt(0))
		}
		li.AddChild(cmd)
	}
}

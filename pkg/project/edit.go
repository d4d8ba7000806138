package project

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/beevik/etree"

	"github.com/aretw0/marytreat/pkg/core"
	"github.com/aretw0/marytreat/pkg/dita"
)

// PrintingInstructions is the title of the boilerplate topic whose tables
// get a spacer paragraph.
const PrintingInstructions = "Printing instructions"

// DefaultRootConceptTitle is the title of a root concept created without one.
const DefaultRootConceptTitle = "How-to Guide"

var (
	//go:embed templates/root_concept.dita
	rootConceptTplFile string

	rootConceptTemplate = template.Must(template.New("root_concept").Parse(rootConceptTplFile))
)

func defaultShortdescs() map[string]string {
	return map[string]string{
		"Revision history and confidentiality notice": "This chapter contains a table of revisions, printing instructions, " +
			"and a notice of document confidentiality.",
		"Revision history":   "Below is the history of the document revisions and a list of authors.",
		PrintingInstructions: "Follow these recommendations to achieve the best print quality.",
	}
}

// ApplyBoilerplateShortdescs fills the missing short descriptions of the
// standard front-matter topics. It returns the names of the files changed.
func (p *Project) ApplyBoilerplateShortdescs(ctx context.Context) ([]string, error) {
	var processed []string
	for _, t := range p.Topics {
		title := t.Content.Title()
		sd, ok := p.shortdescs[title]
		if !ok || !t.Content.ShortdescMissing() {
			continue
		}
		t.Content.SetShortdesc(sd)
		if title == PrintingInstructions {
			t.Content.AddNbspAfterTables()
		}
		if err := p.writeTopic(ctx, t); err != nil {
			return processed, err
		}
		processed = append(processed, t.Name)
	}
	return processed, nil
}

// CastFromWord converts every topic to the DITA type of its output class.
// Topics that cannot be converted are skipped. It returns the number of
// topics converted.
func (p *Project) CastFromWord(ctx context.Context) (int, error) {
	cast := 0
	for _, t := range p.Topics {
		dt := core.DocConcept
		if info, ok := t.Kind.Info(); ok {
			dt = info.DocType
		}
		if err := t.Content.ConvertTo(dt); err != nil {
			p.logger.Debug("cannot cast topic", "topic", t.Name, "type", dt, "error", err)
			continue
		}
		if err := p.writeTopic(ctx, t); err != nil {
			return cast, err
		}
		cast++
	}
	return cast, nil
}

// WrapImages puts every image that is outside a figure into one. It
// returns the number of figures created.
func (p *Project) WrapImages(ctx context.Context) (int, error) {
	total := 0
	for _, t := range p.Topics {
		n := t.Content.WrapImagesInFig()
		if n == 0 {
			continue
		}
		t.Content.SyncImageAlts()
		if err := p.writeTopic(ctx, t); err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DeleteTaskContext removes the <context> section of every procedure topic.
func (p *Project) DeleteTaskContext(ctx context.Context) (int, error) {
	removed := 0
	for _, t := range p.Topics {
		if t.Kind != core.ClassProcedure || !t.Content.RemoveTaskContext() {
			continue
		}
		if err := p.writeTopic(ctx, t); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// CreateRootConcept writes root_<map>.dita and nests the whole map body
// under a topicref to it. The map keeps its title; the topicref takes the
// map root's attributes, except id and namespace declarations.
func (p *Project) CreateRootConcept(ctx context.Context, title string) error {
	if strings.TrimSpace(title) == "" {
		title = DefaultRootConceptTitle
	}
	base := strings.TrimSuffix(p.Name, path.Ext(p.Name))
	name := "root_" + base + ".dita"
	conceptPath := p.rel(name)
	if p.store.Exists(ctx, conceptPath) {
		return fmt.Errorf("%s: %w", conceptPath, core.ErrExists)
	}

	var buf bytes.Buffer
	data := struct{ ID, Title string }{ID: "root_" + base, Title: title}
	if err := rootConceptTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render root concept: %w", err)
	}
	content, err := dita.ParseBytes(buf.Bytes())
	if err != nil {
		return err
	}
	if err := p.store.WriteFile(ctx, conceptPath, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write root concept: %w", err)
	}

	root := p.Map.Root()
	ref := etree.NewElement("topicref")
	ref.CreateAttr("href", name)
	for _, a := range root.Attr {
		if a.Key == "id" || a.Key == "xmlns" || a.Space == "xmlns" {
			continue
		}
		ref.CreateAttr(a.FullKey(), a.Value)
	}
	var mapTitle *etree.Element
	for len(root.Child) > 0 {
		tok := root.RemoveChildAt(0)
		if e, ok := tok.(*etree.Element); ok && e.Tag == "title" && mapTitle == nil {
			mapTitle = e
			continue
		}
		ref.AddChild(tok)
	}
	if mapTitle != nil {
		root.AddChild(mapTitle)
	}
	root.AddChild(ref)
	if err := p.writeMap(ctx); err != nil {
		return err
	}

	rc := &Topic{
		Path:    conceptPath,
		Name:    name,
		Href:    name,
		Kind:    core.ClassContext,
		Content: content,
	}
	for _, t := range p.Topics {
		if isChildRef(ref, t.Href) {
			rc.Children = append(rc.Children, t)
		}
	}
	p.Topics = append([]*Topic{rc}, p.Topics...)
	p.logger.Info("created root concept", "path", conceptPath, "title", title)
	return nil
}

// isChildRef reports whether href is referenced by a direct child of ref.
func isChildRef(ref *etree.Element, href string) bool {
	for _, child := range ref.SelectElements("topicref") {
		if topicrefHref(child) == href {
			return true
		}
	}
	return false
}

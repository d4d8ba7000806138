package project

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strconv"

	"github.com/aretw0/marytreat/pkg/core"
)

// RenameTopics renames every concept, task and reference topic after its
// title, then updates links in all topics, the map topicrefs and the ISH
// companions. It returns the number of topics renamed.
func (p *Project) RenameTopics(ctx context.Context) (int, error) {
	renamed := 0
	reps := make(map[string]int)
	for _, t := range p.Topics {
		if err := ctx.Err(); err != nil {
			return renamed, err
		}
		if !t.Content.IsTopic() {
			continue
		}
		if t.Content.TitleMissing() {
			p.logger.Info("skipped, title missing", "topic", t.Name)
			continue
		}
		title := t.Content.Title()
		reps[title]++

		ext := path.Ext(t.Name)
		current := t.Name[:len(t.Name)-len(ext)]
		name := topicFileName(title, t.Kind, reps[title], current)
		if name == current {
			p.logger.Debug("skipped, name unchanged", "topic", t.Name)
			continue
		}

		ok, err := p.renameTopic(ctx, t, name+ext)
		if err != nil {
			return renamed, err
		}
		if ok {
			renamed++
		}
	}
	return renamed, nil
}

// renameTopic moves a topic to newName in its folder. It reports false when
// the target is taken.
func (p *Project) renameTopic(ctx context.Context, t *Topic, newName string) (bool, error) {
	oldPath := t.Path
	newPath := path.Join(path.Dir(oldPath), newName)
	if err := p.store.Rename(ctx, oldPath, newPath); err != nil {
		if errors.Is(err, core.ErrExists) {
			p.logger.Warn("skipped, new path already exists", "topic", t.Name, "target", newPath)
			return false, nil
		}
		return false, err
	}
	p.logger.Info("renamed topic", "from", oldPath, "to", newPath)

	oldHref := t.Href
	t.Path = newPath
	t.Name = newName
	t.Href = path.Join(path.Dir(oldHref), newName)

	for _, other := range p.Topics {
		dir := path.Dir(other.Path)
		if other.Content.UpdateLocalLinks(relHref(dir, oldPath), relHref(dir, newPath)) == 0 {
			continue
		}
		if err := p.writeTopic(ctx, other); err != nil {
			return true, err
		}
	}

	if p.Map.UpdateTopicref(oldHref, t.Href) > 0 {
		if err := p.writeMap(ctx); err != nil {
			return true, err
		}
	}

	if t.ISH != nil {
		if err := p.renameISH(ctx, t.ISH, newName[:len(newName)-len(path.Ext(newName))]); err != nil {
			return true, err
		}
	}
	return true, nil
}

// renameISH moves the ISH file next to its renamed topic and records the
// new name in FTITLE.
func (p *Project) renameISH(ctx context.Context, ish *ISHFile, base string) error {
	newPath := path.Join(path.Dir(ish.Path), base+"."+ishExt)
	if err := p.store.Rename(ctx, ish.Path, newPath); err != nil {
		return fmt.Errorf("failed to rename ISH file: %w", err)
	}
	ish.Path = newPath
	ish.Content.SetFAttribute("FTITLE", base)
	return p.writeContent(ctx, ish.Path, ish.Content)
}

// relHref returns target as seen from a file in dir.
func relHref(dir, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(target))
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}

// RenameImages renames every image used in a figure to
// img_<prefix>_<name><ext> and rewrites the hrefs in the topics using it.
// Images sharing a title are numbered in order of appearance. It returns
// the number of images renamed.
func (p *Project) RenameImages(ctx context.Context, prefix string) (int, error) {
	var order []*Image
	uses := make(map[*Image][]*Topic)
	titles := make(map[string]int)
	for _, t := range p.Topics {
		for _, img := range t.Images {
			if _, seen := uses[img]; !seen {
				order = append(order, img)
				if img.Title != "" {
					titles[img.Title]++
					img.tempTitle = img.Title
					if n := titles[img.Title]; n > 1 {
						img.tempTitle += " " + strconv.Itoa(n)
					}
				}
			}
			uses[img] = append(uses[img], t)
		}
	}

	renamed := 0
	for _, img := range order {
		if err := ctx.Err(); err != nil {
			return renamed, err
		}
		newName := imageFileName(img, prefix)
		oldPath := p.rel(img.Href)
		newPath := path.Join(p.ImageFolder, newName)
		if oldPath == newPath {
			p.logger.Debug("image already renamed", "image", img.Href)
			continue
		}
		if !p.store.Exists(ctx, oldPath) {
			p.logger.Warn("image file not found, skipping", "image", oldPath)
			continue
		}
		if p.store.Exists(ctx, newPath) {
			p.logger.Warn("image target already exists, skipping", "target", newPath)
			continue
		}
		if err := p.store.Rename(ctx, oldPath, newPath); err != nil {
			return renamed, err
		}
		p.logger.Info("renamed image", "from", oldPath, "to", newPath)

		for _, t := range uses[img] {
			topicHref := relHref(path.Dir(t.Path), newPath)
			changed := 0
			for _, old := range t.imageRefs[img] {
				changed += t.Content.UpdateImageHrefs(old, topicHref)
			}
			t.imageRefs[img] = []string{topicHref}
			if changed == 0 {
				continue
			}
			if err := p.writeTopic(ctx, t); err != nil {
				return renamed, err
			}
		}
		img.Href = relHref(p.Folder, newPath)
		renamed++
	}
	return renamed, nil
}

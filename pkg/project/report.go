package project

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/aretw0/marytreat/pkg/core"
	"github.com/aretw0/marytreat/pkg/dita"
)

// Summary digests a topic.
func (t *Topic) Summary() core.TopicSummary {
	return summarize(t.Path, t.Kind, t.Content)
}

func summarize(storePath string, kind core.OutputClass, c *dita.Content) core.TopicSummary {
	s := core.TopicSummary{
		Path:             storePath,
		Title:            c.Title(),
		Class:            kind,
		MissingTitle:     c.TitleMissing(),
		MissingShortdesc: c.ShortdescMissing(),
		DraftComments:    len(c.DraftComments()),
	}
	dir := path.Dir(storePath)
	for _, link := range c.LocalLinks() {
		s.Links = append(s.Links, path.Join(dir, link))
	}
	return s
}

// Summaries returns one summary per topic, in map order.
func (p *Project) Summaries() []core.TopicSummary {
	out := make([]core.TopicSummary, 0, len(p.Topics))
	for _, t := range p.Topics {
		out = append(out, t.Summary())
	}
	return out
}

// ProblematicTopics returns the topics with a missing title, a missing
// short description or draft comments, sorted by path.
func (p *Project) ProblematicTopics() []*Topic {
	var out []*Topic
	for _, t := range p.Topics {
		if len(t.Summary().Issues()) > 0 {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Issues lists every finding on the problematic topics, sorted by path.
func (p *Project) Issues() []core.Issue {
	summaries := p.Summaries()
	sort.SliceStable(summaries, func(i, j int) bool { return summaries[i].Path < summaries[j].Path })
	var out []core.Issue
	for _, s := range summaries {
		out = append(out, s.Issues()...)
	}
	return out
}

// Check summarizes the topics of the map at mapPath without loading the
// whole project, and reports links to missing files. When the store
// implements core.SummaryCache, unchanged topics are not parsed again.
func Check(ctx context.Context, store core.Store, mapPath string) ([]core.TopicSummary, error) {
	data, err := store.ReadFile(ctx, mapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	m, err := dita.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mapPath, err)
	}
	cache, _ := store.(core.SummaryCache)
	folder := path.Dir(path.Clean(mapPath))

	var out []core.TopicSummary
	seen := make(map[string]bool)
	for _, ref := range m.Topicrefs() {
		href := topicrefHref(ref)
		if href == "" || seen[href] {
			continue
		}
		seen[href] = true
		topicPath := path.Join(folder, href)
		hasChildren := hasChildRefs(ref)

		compute := func() (core.TopicSummary, error) {
			data, err := store.ReadFile(ctx, topicPath)
			if err != nil {
				return core.TopicSummary{}, err
			}
			c, err := dita.ParseBytes(data)
			if err != nil {
				return core.TopicSummary{}, fmt.Errorf("%s: %w", topicPath, err)
			}
			kind := c.Outputclass()
			if kind != "" {
				return summarize(topicPath, kind, c), nil
			}
			s := summarize(topicPath, c.DetectType(), c)
			s.Inferred = true
			return s, nil
		}

		var s core.TopicSummary
		if cache != nil {
			s, err = cache.CachedSummary(ctx, topicPath, compute)
		} else {
			s, err = compute()
		}
		if err != nil {
			return nil, err
		}
		// Nesting lives in the map, so it is applied after the cache.
		if s.Inferred && hasChildren {
			s.Class = core.ClassContext
		}
		s.BrokenLinks = nil
		for _, link := range s.Links {
			if !store.Exists(ctx, link) {
				s.BrokenLinks = append(s.BrokenLinks, link)
			}
		}
		out = append(out, s)
	}

	if cache != nil {
		if err := cache.FlushCache(ctx); err != nil {
			return out, fmt.Errorf("failed to save summary cache: %w", err)
		}
	}
	return out, nil
}

// Package project loads a local DITA project (a map, its topics, their
// ISH companions and the image folder) and runs bulk edits on it.
//
// A Project is not safe for concurrent use. All file access goes through a
// core.Store, so the same operations run on a plain folder, a Git-versioned
// folder or an in-memory store in tests.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/aretw0/marytreat/pkg/core"
	"github.com/aretw0/marytreat/pkg/dita"
)

const (
	topicExt = "dita"
	ishExt   = "3sish"
)

// imageExts are matched case-insensitively.
var imageExts = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"svg":  true,
}

// imageFolders are the folders the Word converter puts images in, in the
// order they are tried. The last one present wins.
var imageFolders = []string{"media", "images"}

// Project is a loaded DITA map with its topics and images.
type Project struct {
	Path        string // store path of the map
	Folder      string // store path of the folder holding the map
	Name        string // file name of the map
	Source      core.Source
	ImageFolder string // store path of the image folder
	Map         *dita.Content
	Topics      []*Topic
	Images      []*Image

	store      core.Store
	logger     *slog.Logger
	shortdescs map[string]string
}

// Topic is a topic referenced from the map.
type Topic struct {
	Path     string // store path
	Name     string // file name
	Href     string // href of the topicref, relative to the map folder
	Kind     core.OutputClass
	Content  *dita.Content
	Children []*Topic
	ISH      *ISHFile
	Images   []*Image

	imageRefs map[*Image][]string // hrefs as written in the topic
}

// String implements fmt.Stringer.
func (t *Topic) String() string {
	return t.Name
}

// ISHFile is the .3sish metadata companion of a Cheetah topic.
type ISHFile struct {
	Path    string
	Content *dita.Content
}

// Image is an image file in the image folder.
type Image struct {
	Href  string // relative to the map folder
	Title string // title of the figure it appears in, if any
	Ext   string // with the leading dot

	tempTitle string
}

// Option configures a Project.
type Option func(*Project)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Project) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithShortdescs adds boilerplate short descriptions keyed by topic title.
// Entries override the built-in ones with the same title.
func WithShortdescs(m map[string]string) Option {
	return func(p *Project) {
		for title, sd := range m {
			p.shortdescs[title] = sd
		}
	}
}

// Open loads the map at mapPath and every topic it references.
func Open(ctx context.Context, store core.Store, mapPath string, opts ...Option) (*Project, error) {
	p := &Project{
		Path:       path.Clean(mapPath),
		Folder:     path.Dir(path.Clean(mapPath)),
		Name:       path.Base(mapPath),
		store:      store,
		logger:     slog.Default(),
		shortdescs: defaultShortdescs(),
	}
	for _, opt := range opts {
		opt(p)
	}

	data, err := store.ReadFile(ctx, p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	p.Map, err = dita.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path, err)
	}

	groups, err := p.scanFolder(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.detectSource(groups); err != nil {
		return nil, err
	}
	p.ImageFolder = p.Folder
	if p.Source == core.SourceWord {
		for _, name := range imageFolders {
			if p.store.Exists(ctx, p.rel(name)) {
				p.ImageFolder = p.rel(name)
			}
		}
	}

	if err := p.Refresh(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Refresh reloads the images and the topics from the store.
func (p *Project) Refresh(ctx context.Context) error {
	images, err := p.loadImages(ctx)
	if err != nil {
		return err
	}
	p.Images = images

	topics, err := p.loadTopics(ctx)
	if err != nil {
		return err
	}
	p.Topics = topics
	return nil
}

// rel joins a path relative to the map folder into a store path.
func (p *Project) rel(name string) string {
	return path.Join(p.Folder, name)
}

// scanFolder groups the base names of the files in the map folder by
// extension. The last dot of a name separates the extension.
func (p *Project) scanFolder(ctx context.Context) (map[string][]string, error) {
	entries, err := p.store.ReadDir(ctx, p.Folder)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project folder: %w", err)
	}
	groups := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		i := strings.LastIndex(e.Name(), ".")
		if i < 0 {
			continue
		}
		ext := e.Name()[i+1:]
		groups[ext] = append(groups[ext], e.Name()[:i])
	}
	return groups, nil
}

// detectSource decides whether the folder came from Cheetah (every topic
// paired with a .3sish file) or from Word.
func (p *Project) detectSource(groups map[string][]string) error {
	ish, ok := groups[ishExt]
	if !ok {
		p.Source = core.SourceWord
		p.logger.Debug("project derived from a Word file", "map", p.Path)
		return nil
	}
	if unpaired := symmetricDifference(groups[topicExt], ish); len(unpaired) > 0 {
		return fmt.Errorf("%w: %s", core.ErrUnpairedISH, strings.Join(unpaired, ", "))
	}
	p.Source = core.SourceCheetah
	p.logger.Debug("project derived from a Cheetah file", "map", p.Path)
	return nil
}

func symmetricDifference(a, b []string) []string {
	count := make(map[string]int)
	for _, s := range a {
		count[s] |= 1
	}
	for _, s := range b {
		count[s] |= 2
	}
	var out []string
	for s, c := range count {
		if c != 3 {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func (p *Project) loadImages(ctx context.Context) ([]*Image, error) {
	entries, err := p.store.ReadDir(ctx, p.ImageFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	var images []*Image
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		if !imageExts[strings.ToLower(strings.TrimPrefix(ext, "."))] {
			continue
		}
		href := e.Name()
		if p.ImageFolder != p.Folder {
			href = path.Base(p.ImageFolder) + "/" + e.Name()
		}
		images = append(images, &Image{Href: href, Ext: ext})
	}
	return images, nil
}

// loadTopics walks every topicref of the map in document order. A topic
// referenced more than once is loaded once.
func (p *Project) loadTopics(ctx context.Context) ([]*Topic, error) {
	var topics []*Topic
	byHref := make(map[string]*Topic)
	refs := make(map[*Topic]*etree.Element)

	for _, ref := range p.Map.Topicrefs() {
		href := topicrefHref(ref)
		if href == "" {
			continue
		}
		if _, ok := byHref[href]; ok {
			continue
		}
		p.logger.Debug("loading topic", "href", href)
		t, err := p.loadTopic(ctx, href, hasChildRefs(ref))
		if err != nil {
			return nil, err
		}
		byHref[href] = t
		refs[t] = ref
		topics = append(topics, t)
	}

	for _, t := range topics {
		if !t.Kind.IsContext() {
			continue
		}
		for _, child := range refs[t].SelectElements("topicref") {
			if c, ok := byHref[topicrefHref(child)]; ok {
				t.Children = append(t.Children, c)
			}
		}
	}
	return topics, nil
}

func (p *Project) loadTopic(ctx context.Context, href string, hasChildren bool) (*Topic, error) {
	t := &Topic{
		Path: p.rel(href),
		Name: path.Base(href),
		Href: href,
	}
	data, err := p.store.ReadFile(ctx, t.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topic: %w", err)
	}
	t.Content, err = dita.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Path, err)
	}

	t.Kind = t.Content.Outputclass()
	if t.Kind != "" && !t.Kind.Known() {
		p.logger.Warn("unknown outputclass",
			"topic", t.Path, "outputclass", t.Kind, "known", core.OutputClasses())
	}
	if t.Kind == "" {
		if hasChildren {
			t.Kind = core.ClassContext
		} else {
			t.Kind = t.Content.DetectType()
		}
		t.Content.SetOutputclass(t.Kind)
	}
	t.Content.EnsureShortdesc()
	t.Images = p.topicImages(t)

	if p.Source == core.SourceCheetah {
		t.ISH, err = p.loadISH(ctx, strings.TrimSuffix(t.Path, path.Ext(t.Path))+"."+ishExt)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (p *Project) loadISH(ctx context.Context, ishPath string) (*ISHFile, error) {
	data, err := p.store.ReadFile(ctx, ishPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ISH file: %w", err)
	}
	c, err := dita.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ishPath, err)
	}
	if !c.IsISHObject() {
		return nil, fmt.Errorf("%s: %w", ishPath, core.ErrMalformedISH)
	}
	return &ISHFile{Path: ishPath, Content: c}, nil
}

// topicImages matches the figures of a topic against the project images,
// recording figure titles on the images and syncing <alt> texts. An href
// is resolved from the topic's folder; a bare file name of the map folder
// also matches by basename.
func (p *Project) topicImages(t *Topic) []*Image {
	var out []*Image
	t.imageRefs = make(map[*Image][]string)
	dir := path.Dir(t.Path)
	for _, fi := range t.Content.FigureImages() {
		resolved := path.Join(dir, fi.Href)
		for _, img := range p.Images {
			if resolved != p.rel(img.Href) && path.Base(fi.Href) != img.Href {
				continue
			}
			if fi.Title != "" {
				img.Title = fi.Title
			}
			if _, seen := t.imageRefs[img]; !seen {
				out = append(out, img)
			}
			if !slices.Contains(t.imageRefs[img], fi.Href) {
				t.imageRefs[img] = append(t.imageRefs[img], fi.Href)
			}
		}
	}
	t.Content.SyncImageAlts()
	return out
}

func topicrefHref(ref *etree.Element) string {
	if ref.SelectAttrValue("scope", "") == "external" {
		return ""
	}
	return ref.SelectAttrValue("href", "")
}

func hasChildRefs(ref *etree.Element) bool {
	return len(ref.SelectElements("topicref")) > 0
}

// Topic returns the topic stored at path, or nil.
func (p *Project) Topic(storePath string) *Topic {
	for _, t := range p.Topics {
		if t.Path == storePath {
			return t
		}
	}
	return nil
}

func (p *Project) writeContent(ctx context.Context, storePath string, c *dita.Content) error {
	data, err := c.Bytes()
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", storePath, err)
	}
	if err := p.store.WriteFile(ctx, storePath, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", storePath, err)
	}
	return nil
}

func (p *Project) writeTopic(ctx context.Context, t *Topic) error {
	return p.writeContent(ctx, t.Path, t.Content)
}

func (p *Project) writeMap(ctx context.Context) error {
	return p.writeContent(ctx, p.Path, p.Map)
}

// Commit records the changes made so far when the store is versioned.
func (p *Project) Commit(ctx context.Context, msg string) error {
	v, ok := p.store.(core.Versioned)
	if !ok {
		return nil
	}
	return v.Commit(ctx, msg)
}

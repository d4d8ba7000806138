package project

import (
	"github.com/aretw0/introspection"
)

// ProjectState exposes the loaded project for observability.
type ProjectState struct {
	Map         string `json:"map"`
	Source      string `json:"source"`
	ImageFolder string `json:"image_folder"`
	Topics      int    `json:"topics"`
	Images      int    `json:"images"`
	Problems    int    `json:"problems"`
	StoreType   string `json:"store_type"`
}

// State implements introspection.Introspectable.
func (p *Project) State() any {
	storeType := "store"
	if comp, ok := p.store.(introspection.Component); ok {
		storeType = comp.ComponentType()
	}
	return ProjectState{
		Map:         p.Path,
		Source:      string(p.Source),
		ImageFolder: p.ImageFolder,
		Topics:      len(p.Topics),
		Images:      len(p.Images),
		Problems:    len(p.ProblematicTopics()),
		StoreType:   storeType,
	}
}

// ComponentType implements introspection.Component.
func (p *Project) ComponentType() string {
	return "project"
}

var _ introspection.Introspectable = (*Project)(nil)
var _ introspection.Component = (*Project)(nil)

// Package core holds the vocabulary shared by every marytreat component:
// output classes, project sources, issues and the storage port.
package core

import (
	"sort"
	"strconv"
)

// OutputClass is the value of the outputclass attribute on a topic root.
// It decides the filename prefix and the DITA type a topic is cast to.
type OutputClass string

const (
	ClassContext              OutputClass = "context"
	ClassLPContext            OutputClass = "lpcontext"
	ClassExplanation          OutputClass = "explanation"
	ClassProcedure            OutputClass = "procedure"
	ClassReferenceInformation OutputClass = "referenceinformation"
	ClassLegalInformation     OutputClass = "legalinformation"
)

// DocType is a DITA topic type (the root element name).
type DocType string

const (
	DocConcept   DocType = "concept"
	DocTask      DocType = "task"
	DocReference DocType = "reference"
)

// DocTypes lists the root elements eligible for renaming.
var DocTypes = []DocType{DocConcept, DocTask, DocReference}

// ClassInfo describes how a topic of a given class is named and typed.
type ClassInfo struct {
	Prefix  string
	DocType DocType
}

var classes = map[OutputClass]ClassInfo{
	ClassContext:              {Prefix: "c_", DocType: DocConcept},
	ClassLPContext:            {Prefix: "c_", DocType: DocConcept},
	ClassExplanation:          {Prefix: "e_", DocType: DocConcept},
	ClassProcedure:            {Prefix: "t_", DocType: DocTask},
	ClassReferenceInformation: {Prefix: "r_", DocType: DocReference},
	ClassLegalInformation:     {Prefix: "e_", DocType: DocReference},
}

// Info returns the naming and typing rules for the class.
func (c OutputClass) Info() (ClassInfo, bool) {
	info, ok := classes[c]
	return info, ok
}

// Known reports whether c is one of the recognized output classes.
func (c OutputClass) Known() bool {
	_, ok := classes[c]
	return ok
}

// IsContext reports whether topics of this class group child topics.
func (c OutputClass) IsContext() bool {
	return c == ClassContext || c == ClassLPContext
}

// OutputClasses returns the recognized classes in a stable order.
func OutputClasses() []OutputClass {
	out := make([]OutputClass, 0, len(classes))
	for c := range classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Source identifies which converter produced a project folder.
type Source string

const (
	// SourceWord is the output of the Oxygen batch Word-to-DITA converter.
	SourceWord Source = "word"
	// SourceCheetah is the output of the Cheetah-to-DITA converter; every
	// topic has a .3sish metadata companion.
	SourceCheetah Source = "cheetah"
)

// IssueKind classifies a finding on a topic.
type IssueKind string

const (
	IssueMissingTitle     IssueKind = "missing-title"
	IssueMissingShortdesc IssueKind = "missing-shortdesc"
	IssueDraftComment     IssueKind = "draft-comment"
	IssueBrokenLink       IssueKind = "broken-link"
)

// Issue is a single problem found in a project file.
type Issue struct {
	Path   string    `json:"path"`
	Kind   IssueKind `json:"kind"`
	Detail string    `json:"detail,omitempty"`
}

// TopicSummary is the cacheable digest of a topic.
type TopicSummary struct {
	Path             string      `json:"path"`
	Title            string      `json:"title,omitempty"`
	Class            OutputClass `json:"outputclass,omitempty"`
	Inferred         bool        `json:"inferred,omitempty"` // Class comes from the root element, not the outputclass attribute
	MissingTitle     bool        `json:"missing_title,omitempty"`
	MissingShortdesc bool        `json:"missing_shortdesc,omitempty"`
	DraftComments    int         `json:"draft_comments,omitempty"`
	Links            []string    `json:"links,omitempty"`        // store paths of linked files
	BrokenLinks      []string    `json:"broken_links,omitempty"` // links whose file is missing
}

// Issues expands the summary into individual findings.
func (s TopicSummary) Issues() []Issue {
	var out []Issue
	if s.MissingTitle {
		out = append(out, Issue{Path: s.Path, Kind: IssueMissingTitle})
	}
	if s.MissingShortdesc {
		out = append(out, Issue{Path: s.Path, Kind: IssueMissingShortdesc})
	}
	if s.DraftComments > 0 {
		out = append(out, Issue{Path: s.Path, Kind: IssueDraftComment, Detail: pluralize(s.DraftComments, "draft comment")})
	}
	for _, link := range s.BrokenLinks {
		out = append(out, Issue{Path: s.Path, Kind: IssueBrokenLink, Detail: link})
	}
	return out
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// EventType represents the type of change in a watched project.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in a watched project folder.
type Event struct {
	Type      EventType
	Path      string // relative to the project folder, slash separated
	Timestamp int64  // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + e.Path
}

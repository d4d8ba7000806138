package releasenotes

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"github.com/tsuyoshiwada/go-gitlog"
)

var refRegex = regexp.MustCompile(`\s*\(#\d+\)`)

// Draft builds a version from the commits of the Git repository at path
// between from (exclusive) and to. An empty from takes the whole history
// of to. Each commit subject becomes an entry, newest first; merge commits
// are skipped. The version is named after to, without a leading "v" when
// to is a semantic version.
func Draft(path, from, to string) (*Version, error) {
	if to == "" {
		to = "HEAD"
	}
	var rev gitlog.RevArgs = &gitlog.Rev{Ref: to}
	if from != "" {
		rev = &gitlog.RevRange{Old: from, New: to}
	}

	git := gitlog.New(&gitlog.Config{Path: path})
	commits, err := git.Log(rev, nil)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get commits")
	}

	v := &Version{Name: versionName(to)}
	for _, c := range commits {
		if strings.HasPrefix(c.Subject, "Merge ") {
			continue
		}
		if entry := trimSubject(c.Subject); entry != "" {
			v.Entries = append(v.Entries, entry)
		}
	}
	return v, nil
}

func trimSubject(subject string) string {
	return strings.TrimSpace(refRegex.ReplaceAllString(subject, ""))
}

func versionName(ref string) string {
	if sv, err := semver.NewVersion(ref); err == nil {
		return sv.String()
	}
	return ref
}

package scan

import (
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Filter decides which paths the importer keeps. Rules, highest priority first:
//  1. excludes (force-exclude)
//  2. includes (force-include, overrides gitignore)
//  3. .gitignore rules registered with AddGitignore
type Filter struct {
	gitignore bool
	includes  []string
	excludes  []string
	matchers  []scopedMatcher
}

type scopedMatcher struct {
	dirPrefix string
	ignore    *ignore.GitIgnore
}

// NewFilter creates a filter. Includes and excludes are slash paths relative
// to the import root; a rule matches the path itself and everything below it.
func NewFilter(gitignore bool, includes, excludes []string) *Filter {
	return &Filter{
		gitignore: gitignore,
		includes:  trimRules(includes),
		excludes:  trimRules(excludes),
	}
}

// AddGitignore registers the rules of a .gitignore found in relDir ("" for
// the import root). It is a no-op when gitignore filtering is disabled.
func (f *Filter) AddGitignore(relDir string, data []byte) {
	if !f.gitignore {
		return
	}
	lines := strings.Split(string(data), "\n")
	f.matchers = append(f.matchers, scopedMatcher{
		dirPrefix: relDir,
		ignore:    ignore.CompileIgnoreLines(lines...),
	})
}

// Allow reports whether relPath should be imported.
func (f *Filter) Allow(relPath string, isDir bool) bool {
	for _, exc := range f.excludes {
		if underRule(relPath, exc) {
			return false
		}
	}
	for _, inc := range f.includes {
		if underRule(relPath, inc) {
			return true
		}
	}
	return !f.ignored(relPath, isDir)
}

func (f *Filter) ignored(relPath string, isDir bool) bool {
	checkPath := relPath
	if isDir {
		checkPath = relPath + "/"
	}

	for _, sm := range f.matchers {
		pathToCheck := checkPath
		if sm.dirPrefix != "" {
			prefix := sm.dirPrefix + "/"
			if !strings.HasPrefix(relPath, prefix) {
				continue
			}
			pathToCheck = strings.TrimPrefix(checkPath, prefix)
		}
		if sm.ignore.MatchesPath(pathToCheck) {
			return true
		}
	}
	return false
}

func underRule(relPath, rule string) bool {
	return relPath == rule || strings.HasPrefix(relPath, rule+"/")
}

func trimRules(rules []string) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		r = strings.Trim(strings.TrimSpace(r), "/")
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

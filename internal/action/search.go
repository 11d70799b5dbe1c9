package action

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"strings"

	"github.com/Cyclone1070/nyx/internal/sandbox"
	"github.com/sahilm/fuzzy"
)

type SearchMatch struct {
	Path  string
	IsDir bool
}

type SearchResponse struct {
	Query   string
	Matches []SearchMatch
	Total   int
}

func (r *SearchResponse) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d matches for '%s':", r.Total, r.Query)
	for _, m := range r.Matches {
		if m.IsDir {
			fmt.Fprintf(&sb, "\n  %s/", m.Path)
		} else {
			fmt.Fprintf(&sb, "\n  %s", m.Path)
		}
	}
	if r.Total > len(r.Matches) {
		fmt.Fprintf(&sb, "\n  ... showing first %d", len(r.Matches))
	}
	return sb.String()
}

// SearchTool finds files and directories whose name contains the query,
// ignoring case. Matches are ranked by how tightly the query fits the name
// and capped at maxResults.
type SearchTool struct {
	fs         treeWalker
	ignore     ignoreMatcher
	policy     *sandbox.Policy
	maxResults int
}

func NewSearchTool(fs treeWalker, ignore ignoreMatcher, policy *sandbox.Policy, maxResults int) *SearchTool {
	if fs == nil {
		panic("fs is required")
	}
	if ignore == nil {
		panic("ignore is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &SearchTool{fs: fs, ignore: ignore, policy: policy, maxResults: maxResults}
}

func (t *SearchTool) Authorize(req SearchRequest) (*Search, error) {
	abs, rel, err := resolveDir(t.fs.Stat, t.policy, req.Path)
	if err != nil {
		return nil, err
	}
	return &Search{query: strings.TrimSpace(req.Query), abs: abs, rel: rel}, nil
}

func (t *SearchTool) Run(ctx context.Context, op *Search) (*SearchResponse, error) {
	needle := strings.ToLower(op.query)
	var found []SearchMatch
	var names []string

	err := t.fs.Walk(op.abs, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			// entries vanishing mid-walk are skipped
			if errors.Is(err, iofs.ErrNotExist) || p != op.abs {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == op.abs {
			return nil
		}
		rel := t.policy.Rel(p)
		if t.policy.Reserved(rel) || t.ignore.ShouldIgnore(rel, d.IsDir()) {
			if d.IsDir() {
				return iofs.SkipDir
			}
			return nil
		}
		name := strings.ToLower(d.Name())
		if strings.Contains(name, needle) {
			found = append(found, SearchMatch{Path: rel, IsDir: d.IsDir()})
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SearchResponse{Query: op.query, Matches: rank(needle, names, found, t.maxResults), Total: len(found)}, nil
}

// rank orders found by fuzzy score of the query against each name. Ties
// keep walk order, which is lexical.
func rank(needle string, names []string, found []SearchMatch, limit int) []SearchMatch {
	ranked := make([]SearchMatch, 0, len(found))
	seen := make([]bool, len(found))
	for _, m := range fuzzy.Find(needle, names) {
		ranked = append(ranked, found[m.Index])
		seen[m.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			ranked = append(ranked, found[i])
		}
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

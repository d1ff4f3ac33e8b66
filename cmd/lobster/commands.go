package main

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// command is one REPL verb.
type command struct {
	name    string
	aliases []string
	usage   string
	help    string
	run     func(r *repl, args []string) error
}

// registry resolves typed words to commands, forgiving small typos.
type registry struct {
	cmds  []command
	index map[string]int
}

func newRegistry(cmds []command) *registry {
	r := &registry{cmds: cmds, index: make(map[string]int)}
	for i, c := range cmds {
		r.index[c.name] = i
		for _, a := range c.aliases {
			r.index[a] = i
		}
	}
	return r
}

// resolve returns the command for word. fuzzy is true when the match came
// from edit distance rather than an exact name or alias.
func (r *registry) resolve(word string) (cmd command, fuzzy, ok bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if i, found := r.index[word]; found {
		return r.cmds[i], false, true
	}
	if len(word) < 3 {
		return command{}, false, false
	}

	type cand struct {
		key  string
		dist int
	}
	var cands []cand
	for key := range r.index {
		if len(key) < 3 {
			continue
		}
		d := levenshtein.ComputeDistance(word, key)
		if d <= distanceLimit(len(key)) {
			cands = append(cands, cand{key, d})
		}
	}
	if len(cands) == 0 {
		return command{}, false, false
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].key < cands[j].key
	})
	// two different commands equally close is a guess, not a match
	if len(cands) > 1 && cands[0].dist == cands[1].dist && r.index[cands[0].key] != r.index[cands[1].key] {
		return command{}, false, false
	}
	return r.cmds[r.index[cands[0].key]], true, true
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// names lists the canonical command names in registry order.
func (r *registry) names() []string {
	out := make([]string, len(r.cmds))
	for i, c := range r.cmds {
		out[i] = c.name
	}
	return out
}

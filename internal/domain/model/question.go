package model

import (
	"sort"
	"strings"
)

// NoSelection is the answer recorded when a multi-select question is
// confirmed with nothing selected.
const NoSelection = "(no selection)"

type Option struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

type Question struct {
	Prompt      string   `json:"question"`
	Header      string   `json:"header"`
	Options     []Option `json:"options"`
	MultiSelect bool     `json:"multiSelect"`
}

// Selection is the toggle state of a multi-select question. It is owned by a
// single question wait and thrown away once the question is answered.
type Selection map[int]struct{}

// Toggle flips option i and returns the new selection. The receiver is left
// untouched.
func (s Selection) Toggle(i int) Selection {
	next := make(Selection, len(s)+1)
	for k := range s {
		next[k] = struct{}{}
	}
	if _, ok := next[i]; ok {
		delete(next, i)
	} else {
		next[i] = struct{}{}
	}
	return next
}

// Has reports whether option i is selected.
func (s Selection) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Indices returns the selected option indices in ascending order.
func (s Selection) Indices() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Answer joins the labels of the selected options in option order. An empty
// selection yields NoSelection, never an empty string.
func (s Selection) Answer(q Question) string {
	labels := make([]string, 0, len(s))
	for _, i := range s.Indices() {
		if i >= 0 && i < len(q.Options) {
			labels = append(labels, q.Options[i].Label)
		}
	}
	if len(labels) == 0 {
		return NoSelection
	}
	return strings.Join(labels, ", ")
}

package lesson

import (
	"fmt"
	"sort"
)

// registry holds all registered lessons by ID.
// Populated by init() in seed files; read-only afterwards.
var registry = make(map[int]*Lesson)

// register validates and adds a lesson to the registry.
// Panics on invalid content: lesson data is compiled in, so a bad
// lesson is a programming error, not a runtime condition.
func register(l Lesson) {
	if err := Validate(l); err != nil {
		panic(fmt.Sprintf("invalid lesson %d: %v", l.ID, err))
	}
	if _, dup := registry[l.ID]; dup {
		panic(fmt.Sprintf("duplicate lesson ID: %d", l.ID))
	}
	registry[l.ID] = &l
}

// Get returns the lesson with the given ID.
func Get(id int) (*Lesson, error) {
	l, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("lesson %d not found", id)
	}
	return l, nil
}

// All returns all registered lessons ordered by ID.
func All() []*Lesson {
	out := make([]*Lesson, 0, len(registry))
	for _, l := range registry {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

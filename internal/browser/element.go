package browser

import (
	"strings"

	"github.com/dinerozz/behavior-monitor/pkg/tracker"
)

type Element struct {
	tag    string
	attrs  map[string]string
	parent *Element
}

func NewElement(tag string, attrs map[string]string) *Element {
	copied := make(map[string]string, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	return &Element{tag: tag, attrs: copied}
}

// Append attaches child under e and returns the child.
func (e *Element) Append(child *Element) *Element {
	child.parent = e
	return child
}

func (e *Element) TagName() string {
	return strings.ToUpper(e.tag)
}

func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *Element) Parent() tracker.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

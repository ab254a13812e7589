// Package address converts nodes to selector chains and back.
//
// A chain has one entry per tree the node lives in, outermost first: the
// first entry locates a node in the document, each following entry locates
// a node inside the shadow root of the node before it.
package address

import (
	"strconv"
	"strings"

	"github.com/aretw0/domrec/pkg/dom"
	"github.com/aretw0/domrec/pkg/domain"
)

// ElementSelector returns the child-combinator path of el within its own
// tree, e.g. "html > body > div:nth-child(2)[part=toolbar]".
func ElementSelector(el *dom.Element) string {
	var parts []string
	for el != nil {
		part := el.TagName()
		parent := el.Parent()
		if parent != nil {
			// nth-child indexes are 1-based
			if children := parent.Children(); len(children) > 1 {
				if i := el.Index(); i >= 0 {
					part += ":nth-child(" + strconv.Itoa(i+1) + ")"
				}
			}
		}
		if v, ok := el.Attribute("part"); ok {
			part += "[part=" + v + "]"
		}
		parts = append(parts, part)

		next, _ := parent.(*dom.Element)
		el = next
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

// ToSelectors returns the selector chain of t. The window maps to
// ["window"]; targets that are not elements yield nil.
func ToSelectors(t dom.EventTarget) []string {
	switch n := t.(type) {
	case *dom.Window:
		return []string{domain.WindowSelector}
	case *dom.Element:
		return elementChain(n)
	default:
		return nil
	}
}

func elementChain(el *dom.Element) []string {
	var chain []string
	for el != nil {
		chain = append(chain, ElementSelector(el))
		root, ok := el.GetRootNode().(*dom.ShadowRoot)
		if !ok {
			break
		}
		el = root.Host()
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// ToNode resolves a chain on w. Each entry is matched against the current
// root and resolution descends into the match's shadow root for the next
// entry. It reports false when any entry fails to match, including an entry
// left over after a match without a shadow root.
func ToNode(w *dom.Window, selectors []string) (dom.EventTarget, bool) {
	if len(selectors) == 0 {
		return nil, false
	}
	if selectors[0] == domain.WindowSelector {
		return w, true
	}
	var root dom.ParentNode = w.Document()
	var current *dom.Element
	for _, sel := range selectors {
		if root == nil {
			return nil, false
		}
		el, err := root.QuerySelector(sel)
		if err != nil || el == nil {
			return nil, false
		}
		current = el
		if shadow := el.ShadowRoot(); shadow != nil {
			root = shadow
		} else {
			root = nil
		}
	}
	return current, true
}

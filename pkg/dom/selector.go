package dom

import (
	"fmt"
	"strconv"
	"strings"
)

type combinator int

const (
	combDescendant combinator = iota
	combChild
)

type attrMatch struct {
	name  string
	value string
	exact bool
}

// compound is a single compound selector, e.g. div:nth-child(2)[part=x].
type compound struct {
	tag      string
	nthChild int
	id       string
	classes  []string
	attrs    []attrMatch
	// combinator linking this compound to the one on its left
	comb combinator
}

// Selector is a parsed complex selector limited to what the recorder emits:
// type selectors, :nth-child(n), [attr] and [attr=value], #id, .class,
// joined by the child (>) or descendant (whitespace) combinators.
type Selector struct {
	parts []compound
	src   string
}

// String returns the selector source.
func (s *Selector) String() string { return s.src }

// ParseSelector parses a complex selector.
func ParseSelector(src string) (*Selector, error) {
	p := &selectorParser{src: src}
	sel, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", src, err)
	}
	return sel, nil
}

type selectorParser struct {
	src string
	pos int
}

func (p *selectorParser) parse() (*Selector, error) {
	sel := &Selector{src: p.src}
	comb := combDescendant
	for {
		sawSpace := p.skipSpace()
		if p.pos >= len(p.src) {
			break
		}
		if p.src[p.pos] == '>' {
			if len(sel.parts) == 0 {
				return nil, fmt.Errorf("leading combinator")
			}
			p.pos++
			p.skipSpace()
			if p.pos >= len(p.src) {
				return nil, fmt.Errorf("trailing combinator")
			}
			comb = combChild
		} else if len(sel.parts) > 0 && !sawSpace {
			return nil, fmt.Errorf("unexpected %q at %d", p.src[p.pos], p.pos)
		}
		c, err := p.compound()
		if err != nil {
			return nil, err
		}
		c.comb = comb
		sel.parts = append(sel.parts, c)
		comb = combDescendant
	}
	if len(sel.parts) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	return sel, nil
}

func (p *selectorParser) skipSpace() bool {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
	return p.pos > start
}

func (p *selectorParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		if ch == '-' || ch == '_' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *selectorParser) compound() (compound, error) {
	var c compound
	universal := false
	if p.pos < len(p.src) && p.src[p.pos] == '*' {
		universal = true
		p.pos++
	} else {
		c.tag = strings.ToLower(p.ident())
	}
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ':':
			p.pos++
			name := p.ident()
			if name != "nth-child" {
				return c, fmt.Errorf("unsupported pseudo-class %q", name)
			}
			if !strings.HasPrefix(p.src[p.pos:], "(") {
				return c, fmt.Errorf("expected ( after nth-child")
			}
			end := strings.IndexByte(p.src[p.pos:], ')')
			if end < 0 {
				return c, fmt.Errorf("unterminated nth-child")
			}
			n, err := strconv.Atoi(strings.TrimSpace(p.src[p.pos+1 : p.pos+end]))
			if err != nil || n < 1 {
				return c, fmt.Errorf("bad nth-child index")
			}
			c.nthChild = n
			p.pos += end + 1
		case '[':
			end := strings.IndexByte(p.src[p.pos:], ']')
			if end < 0 {
				return c, fmt.Errorf("unterminated attribute selector")
			}
			body := p.src[p.pos+1 : p.pos+end]
			p.pos += end + 1
			name, value, exact := strings.Cut(body, "=")
			name = strings.TrimSpace(name)
			if name == "" {
				return c, fmt.Errorf("empty attribute name")
			}
			value = strings.Trim(strings.TrimSpace(value), `"'`)
			c.attrs = append(c.attrs, attrMatch{name: name, value: value, exact: exact})
		case '#':
			p.pos++
			c.id = p.ident()
		case '.':
			p.pos++
			c.classes = append(c.classes, p.ident())
		default:
			if c.tag == "" && c.nthChild == 0 && len(c.attrs) == 0 && c.id == "" && len(c.classes) == 0 && !universal {
				return c, fmt.Errorf("unexpected %q at %d", p.src[p.pos], p.pos)
			}
			return c, nil
		}
	}
	return c, nil
}

func (c *compound) matches(el *Element) bool {
	if c.tag != "" && c.tag != el.tag {
		return false
	}
	if c.nthChild > 0 && el.Index()+1 != c.nthChild {
		return false
	}
	if c.id != "" {
		if v, ok := el.Attribute("id"); !ok || v != c.id {
			return false
		}
	}
	if len(c.classes) > 0 {
		v, _ := el.Attribute("class")
		have := strings.Fields(v)
		for _, want := range c.classes {
			found := false
			for _, h := range have {
				if h == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, a := range c.attrs {
		v, ok := el.Attribute(a.name)
		if !ok || a.exact && v != a.value {
			return false
		}
	}
	return true
}

// Matches reports whether el matches the selector. Ancestors are only
// considered up to the root of el's tree.
func (s *Selector) Matches(el *Element) bool {
	return s.matchAt(el, len(s.parts)-1)
}

func (s *Selector) matchAt(el *Element, i int) bool {
	c := &s.parts[i]
	if !c.matches(el) {
		return false
	}
	if i == 0 {
		return true
	}
	switch c.comb {
	case combChild:
		parent := parentElement(el)
		return parent != nil && s.matchAt(parent, i-1)
	default:
		for anc := parentElement(el); anc != nil; anc = parentElement(anc) {
			if s.matchAt(anc, i-1) {
				return true
			}
		}
		return false
	}
}

func parentElement(el *Element) *Element {
	p, _ := el.parent.(*Element)
	return p
}

func querySelector(root ParentNode, src string) (*Element, error) {
	sel, err := ParseSelector(src)
	if err != nil {
		return nil, err
	}
	var found *Element
	walk(root, func(el *Element) bool {
		if sel.Matches(el) {
			found = el
			return false
		}
		return true
	})
	return found, nil
}

func querySelectorAll(root ParentNode, src string) ([]*Element, error) {
	sel, err := ParseSelector(src)
	if err != nil {
		return nil, err
	}
	var out []*Element
	walk(root, func(el *Element) bool {
		if sel.Matches(el) {
			out = append(out, el)
		}
		return true
	})
	return out, nil
}

// QuerySelector returns the first light-tree descendant matching selector.
func (d *Document) QuerySelector(selector string) (*Element, error) {
	return querySelector(d, selector)
}

// QuerySelectorAll returns every light-tree descendant matching selector.
func (d *Document) QuerySelectorAll(selector string) ([]*Element, error) {
	return querySelectorAll(d, selector)
}

// QuerySelector returns the first shadow-tree descendant matching selector.
func (s *ShadowRoot) QuerySelector(selector string) (*Element, error) {
	return querySelector(s, selector)
}

// QuerySelectorAll returns every shadow-tree descendant matching selector.
func (s *ShadowRoot) QuerySelectorAll(selector string) ([]*Element, error) {
	return querySelectorAll(s, selector)
}

// QuerySelector returns the first descendant of el matching selector.
func (el *Element) QuerySelector(selector string) (*Element, error) {
	return querySelector(el, selector)
}

// QuerySelectorAll returns every descendant of el matching selector.
func (el *Element) QuerySelectorAll(selector string) ([]*Element, error) {
	return querySelectorAll(el, selector)
}

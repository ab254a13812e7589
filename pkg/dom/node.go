package dom

import "strings"

// EventTarget is implemented by *Window, *Document, *Element and *ShadowRoot.
type EventTarget interface {
	AddEventListener(typ string, l Listener, opts ListenerOptions)
	RemoveEventListener(typ string, l Listener, opts ListenerOptions)
	DispatchEvent(e *Event) bool
	ListenerCount(typ string) int

	owner() *Window
	listeners() *listenerList
	eventParent(e *Event) EventTarget
}

// ParentNode is a node that holds element children: a Document, a
// ShadowRoot or an Element.
type ParentNode interface {
	EventTarget
	Children() []*Element
	AppendChild(child *Element) *Element
	QuerySelector(selector string) (*Element, error)
	QuerySelectorAll(selector string) ([]*Element, error)

	childList() *[]*Element
}

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

type childNodes struct {
	children []*Element
}

func (c *childNodes) Children() []*Element {
	return append([]*Element(nil), c.children...)
}

func (c *childNodes) childList() *[]*Element { return &c.children }

func appendChild(p ParentNode, child *Element) *Element {
	if child.parent != nil {
		child.Remove()
	}
	list := p.childList()
	*list = append(*list, child)
	child.parent = p
	return child
}

// Document is the root of the light tree.
type Document struct {
	listenerList
	childNodes
	win *Window
}

// Window returns the page the document belongs to.
func (d *Document) Window() *Window { return d.win }

// CreateElement creates a detached element owned by d.
func (d *Document) CreateElement(tag string) *Element {
	return &Element{tag: strings.ToLower(tag), doc: d}
}

// AppendChild appends child to the document, moving it if already attached.
func (d *Document) AppendChild(child *Element) *Element { return appendChild(d, child) }

// DocumentElement returns the root element, or nil.
func (d *Document) DocumentElement() *Element {
	if len(d.children) == 0 {
		return nil
	}
	return d.children[0]
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *Element {
	if root := d.DocumentElement(); root != nil {
		for _, c := range root.children {
			if c.tag == "body" {
				return c
			}
		}
	}
	return nil
}

// GetElementByID returns the first light-tree element with the given id.
func (d *Document) GetElementByID(id string) *Element {
	var found *Element
	walk(d, func(el *Element) bool {
		if v, ok := el.Attribute("id"); ok && v == id {
			found = el
			return false
		}
		return true
	})
	return found
}

func (d *Document) AddEventListener(typ string, l Listener, opts ListenerOptions) {
	register(d.win, &d.listenerList, typ, l, opts)
}

func (d *Document) RemoveEventListener(typ string, l Listener, opts ListenerOptions) {
	unregister(d.win, &d.listenerList, typ, l, opts)
}

func (d *Document) DispatchEvent(e *Event) bool { return dispatch(d, e, false) }

func (d *Document) ListenerCount(typ string) int { return d.count(typ) }

func (d *Document) owner() *Window           { return d.win }
func (d *Document) listeners() *listenerList { return &d.listenerList }
func (d *Document) eventParent(*Event) EventTarget {
	return d.win
}

// ShadowRoot is the root of a tree attached to a host element.
type ShadowRoot struct {
	listenerList
	childNodes
	host *Element
}

// Host returns the element the shadow root is attached to.
func (s *ShadowRoot) Host() *Element { return s.host }

// AppendChild appends child to the shadow tree.
func (s *ShadowRoot) AppendChild(child *Element) *Element { return appendChild(s, child) }

func (s *ShadowRoot) AddEventListener(typ string, l Listener, opts ListenerOptions) {
	register(s.owner(), &s.listenerList, typ, l, opts)
}

func (s *ShadowRoot) RemoveEventListener(typ string, l Listener, opts ListenerOptions) {
	unregister(s.owner(), &s.listenerList, typ, l, opts)
}

func (s *ShadowRoot) DispatchEvent(e *Event) bool { return dispatch(s, e, false) }

func (s *ShadowRoot) ListenerCount(typ string) int { return s.count(typ) }

func (s *ShadowRoot) owner() *Window           { return s.host.owner() }
func (s *ShadowRoot) listeners() *listenerList { return &s.listenerList }

// Non-composed events stop at the shadow root that contains their target.
func (s *ShadowRoot) eventParent(e *Event) EventTarget {
	if e.Composed {
		return s.host
	}
	return nil
}

// Element is a tagged node with attributes, children and an optional
// shadow root.
type Element struct {
	listenerList
	childNodes
	tag    string
	attrs  []Attr
	parent ParentNode
	shadow *ShadowRoot
	doc    *Document
}

// TagName returns the lower-case tag name.
func (el *Element) TagName() string { return el.tag }

// Parent returns the parent node, or nil when detached.
func (el *Element) Parent() ParentNode { return el.parent }

// OwnerDocument returns the document that created the element.
func (el *Element) OwnerDocument() *Document { return el.doc }

// Attribute returns the value of the named attribute.
func (el *Element) Attribute(name string) (string, bool) {
	for _, a := range el.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether the named attribute is present.
func (el *Element) HasAttribute(name string) bool {
	_, ok := el.Attribute(name)
	return ok
}

// SetAttribute sets or replaces an attribute and returns el.
func (el *Element) SetAttribute(name, value string) *Element {
	for i, a := range el.attrs {
		if a.Name == name {
			el.attrs[i].Value = value
			return el
		}
	}
	el.attrs = append(el.attrs, Attr{Name: name, Value: value})
	return el
}

// RemoveAttribute removes the named attribute.
func (el *Element) RemoveAttribute(name string) {
	for i, a := range el.attrs {
		if a.Name == name {
			el.attrs = append(el.attrs[:i], el.attrs[i+1:]...)
			return
		}
	}
}

// Attributes returns a copy of the attribute list.
func (el *Element) Attributes() []Attr { return append([]Attr(nil), el.attrs...) }

// AppendChild appends child to el, moving it if already attached.
func (el *Element) AppendChild(child *Element) *Element { return appendChild(el, child) }

// Remove detaches el from its parent.
func (el *Element) Remove() {
	if el.parent == nil {
		return
	}
	list := el.parent.childList()
	for i, c := range *list {
		if c == el {
			*list = append((*list)[:i], (*list)[i+1:]...)
			break
		}
	}
	el.parent = nil
}

// Index returns the 0-based position of el among its parent's children,
// or -1 when detached.
func (el *Element) Index() int {
	if el.parent == nil {
		return -1
	}
	for i, c := range *el.parent.childList() {
		if c == el {
			return i
		}
	}
	return -1
}

// AttachShadow attaches an open shadow root, or returns the existing one.
func (el *Element) AttachShadow() *ShadowRoot {
	if el.shadow == nil {
		el.shadow = &ShadowRoot{host: el}
	}
	return el.shadow
}

// ShadowRoot returns the attached shadow root, or nil.
func (el *Element) ShadowRoot() *ShadowRoot { return el.shadow }

// GetRootNode returns the Document or ShadowRoot at the top of el's tree,
// or the topmost element when el is detached.
func (el *Element) GetRootNode() ParentNode {
	var cur ParentNode = el
	for {
		switch n := cur.(type) {
		case *Element:
			if n.parent == nil {
				return n
			}
			cur = n.parent
		default:
			return cur
		}
	}
}

// IsConnected reports whether el is reachable from its document, crossing
// shadow hosts.
func (el *Element) IsConnected() bool {
	switch root := el.GetRootNode().(type) {
	case *Document:
		return true
	case *ShadowRoot:
		return root.host.IsConnected()
	default:
		return false
	}
}

func (el *Element) AddEventListener(typ string, l Listener, opts ListenerOptions) {
	register(el.owner(), &el.listenerList, typ, l, opts)
}

func (el *Element) RemoveEventListener(typ string, l Listener, opts ListenerOptions) {
	unregister(el.owner(), &el.listenerList, typ, l, opts)
}

func (el *Element) DispatchEvent(e *Event) bool { return dispatch(el, e, false) }

// Fire dispatches e as a trusted event, as if produced by user input.
func (el *Element) Fire(e *Event) bool { return dispatch(el, e, true) }

func (el *Element) ListenerCount(typ string) int { return el.count(typ) }

func (el *Element) owner() *Window {
	if el.doc == nil {
		return nil
	}
	return el.doc.win
}

func (el *Element) listeners() *listenerList { return &el.listenerList }

func (el *Element) eventParent(*Event) EventTarget {
	if el.parent == nil {
		return nil
	}
	return el.parent
}

// walk visits the light-tree descendants of root in document order until
// fn returns false. Shadow trees are not entered.
func walk(root ParentNode, fn func(el *Element) bool) bool {
	for _, c := range *root.childList() {
		if !fn(c) {
			return false
		}
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

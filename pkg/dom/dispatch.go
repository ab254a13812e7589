package dom

type pathEntry struct {
	target   EventTarget
	retarget EventTarget
}

func dispatch(t EventTarget, e *Event, trusted bool) bool {
	if e == nil || e.dispatching {
		return false
	}
	e.dispatching = true
	e.trusted = trusted
	e.stop, e.stopNow = false, false
	defer func() {
		e.dispatching = false
		e.phase = PhaseNone
		e.currentTarget = nil
		e.target = t
	}()

	var path []pathEntry
	for cur := t; cur != nil; cur = cur.eventParent(e) {
		path = append(path, pathEntry{target: cur, retarget: retarget(t, cur)})
	}

	for i := len(path) - 1; i >= 0 && !e.stop; i-- {
		p := path[i]
		e.target = p.retarget
		if p.retarget == p.target {
			e.phase = PhaseAtTarget
		} else {
			e.phase = PhaseCapturing
		}
		invoke(p.target, e, true)
	}

	for i := 0; i < len(path) && !e.stop; i++ {
		p := path[i]
		e.target = p.retarget
		if p.retarget == p.target {
			e.phase = PhaseAtTarget
		} else {
			if !e.Bubbles {
				continue
			}
			e.phase = PhaseBubbling
		}
		invoke(p.target, e, false)
	}

	return !e.canceled
}

func invoke(t EventTarget, e *Event, capture bool) {
	e.currentTarget = t
	ll := t.listeners()
	for _, r := range ll.snapshot() {
		if r.removed || r.typ != e.Type || r.capture != capture {
			continue
		}
		if r.once {
			ll.remove(r.typ, r.l, r.capture)
		}
		r.l.HandleEvent(e)
		if e.stopNow {
			return
		}
	}
}

// retarget returns the target as seen from observer: while the target lives
// in a shadow tree that does not contain observer, it is replaced by the
// shadow host.
func retarget(target, observer EventTarget) EventTarget {
	for {
		root, ok := rootOf(target).(*ShadowRoot)
		if !ok || containsInclusive(root, observer) {
			return target
		}
		target = root.host
	}
}

func rootOf(t EventTarget) EventTarget {
	switch n := t.(type) {
	case *Element:
		return n.GetRootNode()
	default:
		return t
	}
}

// containsInclusive reports whether ancestor is observer or one of its
// shadow-including ancestors.
func containsInclusive(ancestor, observer EventTarget) bool {
	for cur := observer; cur != nil; {
		if cur == ancestor {
			return true
		}
		switch n := cur.(type) {
		case *Element:
			if n.parent == nil {
				return false
			}
			cur = n.parent
		case *ShadowRoot:
			cur = n.host
		default:
			return false
		}
	}
	return false
}

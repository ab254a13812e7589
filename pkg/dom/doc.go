/*
Package dom models a live user-interface surface as an event target tree.

A Window owns one Document; Documents, Elements and open ShadowRoots form the
tree. Listener registration and dispatch follow the DOM rules the recorder
depends on: listeners are deduplicated on (type, listener, capture), events
travel capture -> target -> bubble, composed events cross shadow boundaries to
the host, and listeners outside a shadow tree observe a retargeted target.

Every registration on a Window's tree can be routed through a single
RegistrationHook, which is how the interception layer observes dispatch
without call sites opting in.

The tree is not safe for concurrent use. Like a page, drive it from one
goroutine.
*/
package dom

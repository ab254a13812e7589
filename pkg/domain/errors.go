package domain

import "errors"

// ErrActionsNotFound is returned when no script is stored under a key.
var ErrActionsNotFound = errors.New("actions not found")

// ErrUnresolvable is returned when a selector chain no longer resolves to a node.
var ErrUnresolvable = errors.New("selectors no longer resolve")

// ErrMissingConstructor is returned when a saved event kind has no constructor.
var ErrMissingConstructor = errors.New("missing event constructor")

// ErrEmptySelectors is returned when a captured selector chain is empty.
var ErrEmptySelectors = errors.New("no selectors")

// ErrAlreadyInstalled is returned when a different registration hook already owns the page.
var ErrAlreadyInstalled = errors.New("registration hook already installed")

// ErrIndexOutOfRange is returned when a single-action replay names a missing index.
var ErrIndexOutOfRange = errors.New("action index out of range")

// ErrReplaying is returned when an operation requires replay to be stopped.
var ErrReplaying = errors.New("replay in progress")

// ErrKeyNotFound is returned by key/value stores for an absent key.
var ErrKeyNotFound = errors.New("key not found")

package middleware

import "github.com/aretw0/domrec/pkg/ports"

// Middleware allows wrapping an ActionStore to add behavior.
type Middleware func(ports.ActionStore) ports.ActionStore

// ValueMiddleware allows wrapping a KeyValueStore to add behavior.
type ValueMiddleware func(ports.KeyValueStore) ports.KeyValueStore

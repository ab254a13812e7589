/*
Package persistence composes the store ports.

NewActionStore turns any KeyValueStore into an ActionStore by encoding
action lists as the JSON array served by the store endpoint. The middleware
subpackage wraps stores with at-rest encryption and keystroke masking.
*/
package persistence

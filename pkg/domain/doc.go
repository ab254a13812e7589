/*
Package domain contains the core data model of the recorder.

It defines what a recorded interaction looks like once it leaves the live
surface: the Action (a selector chain plus a serialized event), the closed
set of event families that can be reconstructed, and the fixed grouping of
event types that user filters operate on. The package is pure and free of
I/O so that every adapter and the scheduler can share it.

# Key Entities

  - Action: one recorded interaction, addressable by its selector chain.
  - SavedEvent: the serialized form of an interaction event.
  - Kind: the event family tag used to pick a constructor on replay.
  - Group: a named set of event types (misc, pointer, mouse, keyboard).
*/
package domain

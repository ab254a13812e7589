/*
Package ports defines the driven ports (interfaces) of the recorder.

These interfaces decouple the recorder from the places scripts and
preferences live, so the same controller runs against memory, a file
directory, Redis or a remote HTTP store.

# Key Interfaces

  - KeyValueStore: raw JSON values by key, as served by the store endpoint.
  - ActionStore: typed load/save of a recorded action list.
  - SettingsStore: string preferences, the equivalent of the page's local storage.
  - Watchable: backends that can signal external changes (e.g. an edited settings file).
*/
package ports

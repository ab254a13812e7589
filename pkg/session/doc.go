/*
Package session owns the action list of a recording.

A Session consumes the Actions captured by the interception layer while
recording is on and decides which ones to keep:

  - actions produced by the recorder's own surface are discarded silently;
  - actions whose type or group is filtered out are counted as skipped;
  - an action identical to the one retained just before it is dropped, which
    absorbs listeners that observe the same dispatch twice.

When recording stops, the tail of the list is trimmed of the pointer noise
left by the user reaching for the stop control.
*/
package session

/*
Package domrec records user interactions on a page and replays them later with their original timing.

A page is modelled by package dom: a window, a document and elements that may host shadow roots. Installing a Recorder hooks listener registration for the whole page, so every listener the page adds is observed. While recording, each event a listener sees becomes an Action: the event's replayable fields plus a selector chain that finds the listening node again, across shadow boundaries.

# Concept

Recording is filtered by event type and group, deduplicated, and trimmed of trailing pointer noise when it stops. Scripts are saved to an ActionStore (in-memory, file, Redis or a remote HTTP store). Replay dispatches the reconstructed events in order, waiting for the original gaps: short gaps are aligned to rendering frames, long ones use a timer. Actions whose nodes no longer exist are skipped, and a replay can repeat in a loop or start automatically once the page goes idle.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/domrec"
		"github.com/aretw0/domrec/pkg/dom"
	)

	func main() {
		win, err := dom.ParseHTMLString(`<html><body><button>go</button></body></html>`)
		if err != nil {
			log.Fatal(err)
		}

		rec, err := domrec.New(win)
		if err != nil {
			log.Fatal(err)
		}
		defer rec.Close()

		if err := rec.StartRecording(); err != nil {
			log.Fatal(err)
		}
		// ... the page's listeners observe user input ...
		rec.StopRecording()

		ctx := context.Background()
		if err := rec.PostActions(ctx); err != nil {
			log.Fatal(err)
		}
		if err := rec.StartReplaying(ctx); err != nil {
			log.Fatal(err)
		}
	}

# Packages

  - pkg/dom: the page model and event dispatch.
  - pkg/event, pkg/address: event serialization and selector chains.
  - pkg/intercept: the page-wide registration hook that captures actions.
  - pkg/session: filtering, deduplication and trimming of a recording.
  - pkg/replay: the timed replay scheduler.
  - pkg/idle, pkg/settings: autoplay idle detection and preferences.
  - pkg/adapters: stores (memory, redis, http) and the MCP server.
  - pkg/persistence: script encoding and store middleware (encryption, key masking).
*/
package domrec

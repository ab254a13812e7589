package domrec_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/domrec"
	"github.com/aretw0/domrec/pkg/dom"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/replay"
)

// ExampleRecorder records a click and replays it against the same page.
func ExampleRecorder() {
	win, err := dom.ParseHTMLString(`<html><body><button id="go">go</button></body></html>`)
	if err != nil {
		log.Fatal(err)
	}

	// Replay without waiting for frames or timers.
	rec, err := domrec.New(win, domrec.WithPacer(replay.InstantPacer{}))
	if err != nil {
		log.Fatal(err)
	}
	defer rec.Close()

	button := win.Document().GetElementByID("go")
	clicks := 0
	button.AddEventListener("click", dom.ListenerFunc(func(*dom.Event) { clicks++ }), dom.ListenerOptions{})

	if err := rec.StartRecording(); err != nil {
		log.Fatal(err)
	}
	button.Fire(win.NewEvent(domain.KindPointer, "click", dom.EventInit{Bubbles: true, Composed: true}))
	rec.StopRecording()

	ctx := context.Background()
	if err := rec.PostActions(ctx); err != nil {
		log.Fatal(err)
	}
	if err := rec.StartReplaying(ctx); err != nil {
		log.Fatal(err)
	}

	fmt.Println(rec.Status())
	fmt.Println("clicks:", clicks)
	// Output:
	// 1 actions, 0 skipped
	// clicks: 2
}

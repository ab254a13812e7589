package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/replay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []domain.Action {
	return []domain.Action{
		{Selectors: []string{"html > body > div > button"}, Event: domain.SavedEvent{Type: "click", TimeStamp: 10}},
		{Selectors: []string{"html > body > x-app", "div[part=a|b]"}, Event: domain.SavedEvent{Type: "keydown", TimeStamp: 60}},
		{Selectors: []string{"window"}, Event: domain.SavedEvent{Type: "pointermove", TimeStamp: 90}},
	}
}

func TestActionsMarkdown(t *testing.T) {
	md := ActionsMarkdown("recorder-actions", sample())
	assert.Contains(t, md, "# recorder-actions")
	assert.Contains(t, md, "3 actions")
	assert.Contains(t, md, "| 0 | 0 | click | `button` | 1 |")
	assert.Contains(t, md, "| 1 | 50 | keydown | `div[part=a\\|b]` | 2 |")

	assert.Contains(t, ActionsMarkdown("empty", nil), "_no actions_")
}

func TestRenderActions_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderActions(&buf, "k", sample(), false))
	assert.Equal(t, "0 click button\n50 keydown div[part=a|b]\n80 pointermove window\n", buf.String())
}

func TestPrintReport_Plain(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sample(), replay.Report{
		Replayed:       1,
		Skipped:        1,
		SkippedIndexes: []int{1},
		Duration:       1500 * time.Millisecond,
		Aborted:        true,
	}, false)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ok     0 0 click button", lines[0])
	assert.Equal(t, "skip   1 50 keydown div[part=a|b]", lines[1])
	assert.Equal(t, "--     2 80 pointermove window", lines[2])
	assert.Equal(t, "1 replayed, 1 skipped, 3 total in 1.5s (aborted)", lines[3])
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0\n")
	assert.Contains(t, buf.String(), "v0.1.0")
}

package address_test

import (
	"testing"

	"github.com/aretw0/domrec/pkg/address"
	"github.com/aretw0/domrec/pkg/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head></head><body>
<div id="a"></div>
<div id="b"><span></span><span id="target"></span><span></span></div>
<x-panel id="host"><template shadowrootmode="open">
  <header part="bar"><button>one</button><button id="inner">two</button></header>
  <x-nested id="nested"><template shadowrootmode="open"><i></i></template></x-nested>
</template></x-panel>
</body></html>`

func load(t *testing.T) *dom.Window {
	t.Helper()
	w, err := dom.ParseHTMLString(page)
	require.NoError(t, err)
	return w
}

func TestToSelectors_NthChild(t *testing.T) {
	w := load(t)
	target := w.Document().GetElementByID("target")

	chain := address.ToSelectors(target)

	require.Len(t, chain, 1)
	assert.Equal(t, "html > body:nth-child(2) > div:nth-child(2) > span:nth-child(2)", chain[0])
	got, ok := address.ToNode(w, chain)
	require.True(t, ok)
	assert.Same(t, target, got)
}

func TestToSelectors_OnlyChildHasNoQualifier(t *testing.T) {
	w := dom.NewWindow()
	doc := w.Document()
	root := doc.AppendChild(doc.CreateElement("html"))
	body := root.AppendChild(doc.CreateElement("body"))

	assert.Equal(t, []string{"html > body"}, address.ToSelectors(body))
}

func TestToSelectors_AcrossShadowRoots(t *testing.T) {
	w := load(t)
	host := w.Document().GetElementByID("host")
	inner, err := host.ShadowRoot().QuerySelector("#inner")
	require.NoError(t, err)
	require.NotNil(t, inner)

	chain := address.ToSelectors(inner)

	assert.Equal(t, []string{
		"html > body:nth-child(2) > x-panel:nth-child(3)",
		"header:nth-child(1)[part=bar] > button:nth-child(2)",
	}, chain)
	got, ok := address.ToNode(w, chain)
	require.True(t, ok)
	assert.Same(t, inner, got)
}

func TestToSelectors_NestedShadowRoots(t *testing.T) {
	w := load(t)
	host := w.Document().GetElementByID("host")
	nested, err := host.ShadowRoot().QuerySelector("#nested")
	require.NoError(t, err)
	leaf, err := nested.ShadowRoot().QuerySelector("i")
	require.NoError(t, err)

	chain := address.ToSelectors(leaf)

	require.Len(t, chain, 3)
	assert.Equal(t, "i", chain[2])
	got, ok := address.ToNode(w, chain)
	require.True(t, ok)
	assert.Same(t, leaf, got)
}

func TestWindow(t *testing.T) {
	w := load(t)

	assert.Equal(t, []string{"window"}, address.ToSelectors(w))
	got, ok := address.ToNode(w, []string{"window"})
	require.True(t, ok)
	assert.Same(t, w, got)
}

func TestToNode_Unresolvable(t *testing.T) {
	w := load(t)

	tests := map[string][]string{
		"empty":             nil,
		"missing element":   {"html > body > table"},
		"invalid selector":  {"html >"},
		"no shadow to open": {"html > body:nth-child(2) > div:nth-child(1)", "span"},
		"missing inner hop": {"html > body:nth-child(2) > x-panel:nth-child(3)", "footer"},
	}
	for name, chain := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := address.ToNode(w, chain)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestToNode_StructuralChangeBreaksChain(t *testing.T) {
	w := load(t)
	target := w.Document().GetElementByID("target")
	chain := address.ToSelectors(target)

	w.Document().GetElementByID("b").Remove()

	got, ok := address.ToNode(w, chain)
	if ok {
		assert.NotSame(t, target, got)
	}
}

func TestToSelectors_NonElementTargets(t *testing.T) {
	w := load(t)
	assert.Empty(t, address.ToSelectors(w.Document()))
}

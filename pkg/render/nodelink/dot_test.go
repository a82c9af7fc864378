package nodelink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/hyperkey/pkg/hyper"
)

func testLayers() []hyper.Layer {
	return []hyper.Layer{
		{Key: "a", Name: "Applications", Bindings: []hyper.Binding{
			hyper.Bind("m", hyper.App("Spotify")),
		}},
		{Key: "d", Bindings: []hyper.Binding{
			hyper.Bind("f", hyper.Window(hyper.WindowMaximize)),
			hyper.Bind("u", hyper.Emit("page_down")),
		}},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testLayers(), Options{})

	for _, want := range []string{
		"digraph G {",
		`"hyper" [label="hyper ;"`,
		`"layer:a" [label="a\nApplications"`,
		`"layer:d" [label="d"`,
		`"a/m" [label="m: Spotify", fillcolor="#dbeafe"]`,
		`"d/f" [label="f: Window: maximize", fillcolor="#dcfce7"]`,
		`"d/u" [label="u: page_down", fillcolor=white]`,
		`"hyper" -> "layer:a";`,
		`"layer:d" -> "d/u";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}

	if strings.Index(dot, `"hyper" -> "layer:a"`) > strings.Index(dot, `"hyper" -> "layer:d"`) {
		t.Error("edges should follow declaration order")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testLayers(), Options{Detailed: true, HyperKey: "caps_lock"})

	for _, want := range []string{
		`label="hyper ⇪"`,
		`kind: app\nopen -a 'Spotify.app'`,
		`kind: window\nopen -g rectangle://execute-action?name=maximize`,
		`kind: keys"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed DOT missing %s\n%s", want, dot)
		}
	}
}

func TestToDOTDeterministic(t *testing.T) {
	a := ToDOT(hyper.DefaultLayers(), Options{Detailed: true})
	b := ToDOT(hyper.DefaultLayers(), Options{Detailed: true})
	if a != b {
		t.Error("ToDOT() should be deterministic")
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(nil, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("ToDOT(nil) = %q", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(testLayers(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("RenderSVG() output is not SVG:\n%s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.25 200.00"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.25 200.00" width="100" height="200"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() =\n%s\nwant\n%s", out, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Errorf("normalizeViewBox() without viewBox = %s", got)
	}
}

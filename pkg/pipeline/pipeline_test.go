package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/hyperkey/pkg/cache"
	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/hyper"
	"github.com/matzehuels/hyperkey/pkg/karabiner"
)

func newTestRunner() *Runner {
	return NewRunner(nil, nil)
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options should be valid: %v", err)
	}
	if opts.Profile != DefaultProfile {
		t.Errorf("Profile = %q, want %q", opts.Profile, DefaultProfile)
	}
	if opts.Rules.Hyper != hyper.DefaultHyperKey() {
		t.Errorf("Hyper = %+v, want default", opts.Rules.Hyper)
	}
	if opts.Rules.DoubleTap != hyper.DefaultDoubleTap() {
		t.Errorf("DoubleTap = %+v, want default", opts.Rules.DoubleTap)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}
	if !opts.Rules.Expand.Sublayers {
		t.Error("sub-layer variables should be on unless Flat is set")
	}
}

func TestOptionsDefaultsKeepSetFields(t *testing.T) {
	opts := Options{Rules: hyper.Options{
		Hyper:     hyper.HyperKey{Alone: "escape"},
		DoubleTap: hyper.DoubleTap{Emit: "escape", Delay: 400 * time.Millisecond},
	}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}

	want := hyper.HyperKey{Key: "semicolon", Alone: "escape"}
	if opts.Rules.Hyper != want {
		t.Errorf("Hyper = %+v, want %+v", opts.Rules.Hyper, want)
	}
	wantTap := hyper.DoubleTap{Key: "left_shift", Emit: "escape", Delay: 400 * time.Millisecond}
	if opts.Rules.DoubleTap != wantTap {
		t.Errorf("DoubleTap = %+v, want %+v", opts.Rules.DoubleTap, wantTap)
	}

	partial := Options{Rules: hyper.Options{DoubleTap: hyper.DoubleTap{Key: "right_shift"}}}
	if err := partial.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if got := partial.Rules.DoubleTap; got.Emit != "caps_lock" || got.Delay != 250*time.Millisecond {
		t.Errorf("DoubleTap = %+v, want caps_lock after 250ms", got)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad output extension", Options{Output: "/tmp/karabiner.yaml"}, errors.ErrCodeInvalidPath},
		{"bad hyper key", Options{Rules: hyper.Options{Hyper: hyper.HyperKey{Key: "Semi Colon"}}}, errors.ErrCodeInvalidKey},
		{"hyper equals double-tap", Options{Rules: hyper.Options{
			Hyper:     hyper.HyperKey{Key: "left_shift"},
			DoubleTap: hyper.DefaultDoubleTap(),
		}}, errors.ErrCodeDuplicateKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestGenerateFixedRulesFirst(t *testing.T) {
	trees := map[string][]hyper.Layer{
		"empty":   {},
		"builtin": hyper.DefaultLayers(),
		"single":  {{Key: "z", Bindings: []hyper.Binding{hyper.Bind("q", hyper.Emit("escape"))}}},
	}
	for name, layers := range trees {
		t.Run(name, func(t *testing.T) {
			res, err := newTestRunner().Generate(context.Background(), Options{Layers: layers})
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}
			rules := res.Config.Rules()
			if len(rules) != len(layers)+2 {
				t.Fatalf("got %d rules, want %d", len(rules), len(layers)+2)
			}
			if rules[0].Description != hyper.HyperKeyDescription {
				t.Errorf("rules[0] = %q, want hyper key rule", rules[0].Description)
			}
			if rules[1].Description != "Double-tap left_shift -> caps_lock" {
				t.Errorf("rules[1] = %q, want double-tap rule", rules[1].Description)
			}
		})
	}
}

func TestGenerateLaunchesApp(t *testing.T) {
	layers := []hyper.Layer{{Key: "a", Bindings: []hyper.Binding{hyper.Bind("m", hyper.App("Spotify"))}}}

	res, err := newTestRunner().Generate(context.Background(), Options{Layers: layers})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	rules := res.Config.Rules()[2:]
	if len(rules) != 1 {
		t.Fatalf("got %d layer rules, want 1", len(rules))
	}
	if !strings.Contains(rules[0].Description, `"a"`) {
		t.Errorf("rule description %q should reference trigger a", rules[0].Description)
	}
	if len(rules[0].Manipulators) != 2 {
		t.Fatalf("got %d manipulators, want the layer toggle and one binding", len(rules[0].Manipulators))
	}
	if toggle := rules[0].Manipulators[0]; toggle.From.KeyCode != "a" {
		t.Errorf("toggle from.key_code = %q, want a", toggle.From.KeyCode)
	}

	m := rules[0].Manipulators[1]
	if m.From.KeyCode != "m" {
		t.Errorf("from.key_code = %q, want m", m.From.KeyCode)
	}
	wantConds := []karabiner.Condition{
		karabiner.VariableIf(hyper.VarHyper, 1),
		karabiner.VariableIf(hyper.SublayerVariable("a"), 1),
	}
	if !reflect.DeepEqual(m.Conditions, wantConds) {
		t.Errorf("conditions = %+v, want %+v", m.Conditions, wantConds)
	}
	if len(m.To) != 1 || !strings.Contains(m.To[0].ShellCommand, "Spotify") {
		t.Errorf("to = %+v, want an open command naming Spotify", m.To)
	}
}

func TestGenerateWindowCommand(t *testing.T) {
	layers := []hyper.Layer{{Key: "d", Bindings: []hyper.Binding{hyper.Bind("f", hyper.Window(hyper.WindowMaximize))}}}

	res, err := newTestRunner().Generate(context.Background(), Options{Layers: layers})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	m := res.Config.Rules()[2].Manipulators[1]
	want := "open -g rectangle://execute-action?name=maximize"
	if len(m.To) != 1 || m.To[0].ShellCommand != want {
		t.Errorf("to = %+v, want %q", m.To, want)
	}
}

func TestGenerateStats(t *testing.T) {
	res, err := newTestRunner().Generate(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	s := res.Stats
	if s.Layers != 5 || s.Bindings != 35 {
		t.Errorf("layers/bindings = %d/%d, want 5/35", s.Layers, s.Bindings)
	}
	if s.Rules != 7 {
		t.Errorf("rules = %d, want 7", s.Rules)
	}
	// one toggle per layer, two hyper key and two double-tap manipulators
	if s.Manipulators != 35+5+4 {
		t.Errorf("manipulators = %d, want 44", s.Manipulators)
	}
	if s.Bytes != len(res.Data) || s.Bytes == 0 {
		t.Errorf("bytes = %d, data = %d", s.Bytes, len(res.Data))
	}
	if res.Source != SourceBuiltin {
		t.Errorf("source = %q, want %q", res.Source, SourceBuiltin)
	}
}

func TestGenerateBindingsReachable(t *testing.T) {
	res, err := newTestRunner().Generate(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	seen := make(map[string]string)
	for _, r := range res.Config.Rules() {
		for _, m := range r.Manipulators {
			key, err := json.Marshal(struct {
				From       karabiner.From
				Conditions []karabiner.Condition
			}{m.From, m.Conditions})
			if err != nil {
				t.Fatal(err)
			}
			if prev, ok := seen[string(key)]; ok {
				t.Errorf("%s / key %s is shadowed by %s", r.Description, m.From.KeyCode, prev)
				continue
			}
			seen[string(key)] = r.Description
		}
	}
}

func TestGenerateFlat(t *testing.T) {
	layers := []hyper.Layer{{Key: "a", Bindings: []hyper.Binding{hyper.Bind("m", hyper.App("Spotify"))}}}
	res, err := newTestRunner().Generate(context.Background(), Options{Layers: layers, Flat: true})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	m := res.Config.Rules()[2].Manipulators
	if len(m) != 1 || len(m[0].Conditions) != 1 || m[0].Conditions[0] != karabiner.VariableIf(hyper.VarHyper, 1) {
		t.Errorf("flat manipulators = %+v, want one guarded by hyper == 1 alone", m)
	}

	_, err = newTestRunner().Generate(context.Background(), Options{Flat: true})
	if !errors.Is(err, errors.ErrCodeDuplicateKey) {
		t.Errorf("flat built-in tree = %v, want DUPLICATE_KEY for shared sub-keys", err)
	}
}

func TestGenerateRejectsDuplicates(t *testing.T) {
	layers := []hyper.Layer{
		{Key: "a", Bindings: []hyper.Binding{hyper.Bind("m", hyper.App("Spotify"))}},
		{Key: "a", Bindings: []hyper.Binding{hyper.Bind("f", hyper.App("Finder"))}},
	}
	_, err := newTestRunner().Generate(context.Background(), Options{Layers: layers})
	if !errors.Is(err, errors.ErrCodeDuplicateKey) {
		t.Errorf("Generate() = %v, want DUPLICATE_KEY", err)
	}
}

func TestGenerateFromLayerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layers.yaml")
	content := "layers:\n  - key: a\n    bindings:\n      - {key: m, app: Spotify}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := newTestRunner().Generate(context.Background(), Options{LayersPath: path})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if res.Source != path || res.Stats.Bindings != 1 {
		t.Errorf("source = %q, bindings = %d", res.Source, res.Stats.Bindings)
	}

	_, err = newTestRunner().Generate(context.Background(), Options{LayersPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing layer file = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecuteDeterministic(t *testing.T) {
	out := filepath.Join(t.TempDir(), "karabiner", "karabiner.json")
	r := newTestRunner()

	if _, err := r.Execute(context.Background(), Options{Output: out}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Execute(context.Background(), Options{Output: out}); err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("rerunning on unchanged input should reproduce the file byte for byte")
	}
	if !bytes.HasSuffix(first, []byte("}\n")) {
		t.Error("output should end with a newline")
	}

	cfg, err := karabiner.ImportJSON(out)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if len(cfg.Rules()) != 7 {
		t.Errorf("written file has %d rules, want 7", len(cfg.Rules()))
	}
}

func TestExecuteWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := newTestRunner().Execute(context.Background(), Options{Output: filepath.Join(blocker, "karabiner.json")})
	if !errors.Is(err, errors.ErrCodeWriteFailed) {
		t.Errorf("Execute() = %v, want WRITE_FAILED", err)
	}
}

func TestExecuteRequiresOutput(t *testing.T) {
	_, err := newTestRunner().Execute(context.Background(), Options{})
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Execute() without output = %v, want INVALID_PATH", err)
	}
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "karabiner.json")
	r := newTestRunner()

	check, err := r.Check(ctx, Options{Output: out})
	if !errors.Is(err, errors.ErrCodeOutOfDate) {
		t.Fatalf("Check() on missing file = %v, want OUT_OF_DATE", err)
	}
	if !check.Missing || len(check.Changes) != 7 {
		t.Errorf("missing file: Missing=%v, %d changes", check.Missing, len(check.Changes))
	}

	if _, err := r.Execute(ctx, Options{Output: out}); err != nil {
		t.Fatal(err)
	}
	check, err = r.Check(ctx, Options{Output: out})
	if err != nil {
		t.Fatalf("Check() after Execute = %v", err)
	}
	if !check.UpToDate || len(check.Changes) != 0 {
		t.Errorf("fresh file: UpToDate=%v, changes=%v", check.UpToDate, check.Changes)
	}

	layers := hyper.DefaultLayers()
	layers[0].Bindings = layers[0].Bindings[1:]
	check, err = r.Check(ctx, Options{Output: out, Layers: layers})
	if !errors.Is(err, errors.ErrCodeOutOfDate) {
		t.Fatalf("Check() with edited layers = %v, want OUT_OF_DATE", err)
	}
	if len(check.Changes) != 1 || check.Changes[0].Kind != karabiner.RuleChanged {
		t.Errorf("changes = %+v, want one changed rule", check.Changes)
	}
}

func TestCheckSettingsOnly(t *testing.T) {
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "karabiner.json")
	r := newTestRunner()

	if _, err := r.Execute(ctx, Options{Output: out}); err != nil {
		t.Fatal(err)
	}
	check, err := r.Check(ctx, Options{Output: out, ShowInMenuBar: true})
	if !errors.Is(err, errors.ErrCodeOutOfDate) {
		t.Fatalf("Check() = %v, want OUT_OF_DATE", err)
	}
	if check.UpToDate || len(check.Changes) != 0 {
		t.Errorf("settings change: UpToDate=%v, changes=%v", check.UpToDate, check.Changes)
	}
}

func TestCheckUnreadableFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "karabiner.json")
	if err := os.WriteFile(out, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := newTestRunner().Check(context.Background(), Options{Output: out})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Check() = %v, want INVALID_FORMAT", err)
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", true},
		{"SVG", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}

	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "bmp"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormats() = %v, want INVALID_FORMAT", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"layers.svg", FormatSVG, false},
		{"out/layers.PNG", FormatPNG, false},
		{"layers.gv", FormatDOT, false},
		{"/tmp/v1.2/layers.dot", FormatDOT, false},
		{"layers", "", true},
		{"layers.txt", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, %v", tt.path, got, err)
		}
	}
}

func TestRenderDOT(t *testing.T) {
	artifacts, err := newTestRunner().Render(context.Background(), hyper.DefaultLayers(), RenderOptions{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.HasPrefix(string(artifacts[FormatDOT]), "digraph G {") {
		t.Errorf("dot artifact = %q", artifacts[FormatDOT])
	}

	if _, err := newTestRunner().Render(context.Background(), nil, RenderOptions{Formats: []string{"bmp"}}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(bmp) = %v, want INVALID_FORMAT", err)
	}
}

func TestRenderUsesCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil)
	layers := hyper.DefaultLayers()

	dot, err := r.Render(ctx, layers, RenderOptions{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatal(err)
	}
	key := cache.ArtifactKey(string(dot[FormatDOT]), FormatSVG)
	if err := c.Set(ctx, key, []byte("<svg>cached</svg>"), 0); err != nil {
		t.Fatal(err)
	}

	artifacts, err := r.Render(ctx, layers, RenderOptions{})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(artifacts[FormatSVG]) != "<svg>cached</svg>" {
		t.Errorf("svg should come from the cache, got %.40q", artifacts[FormatSVG])
	}
}

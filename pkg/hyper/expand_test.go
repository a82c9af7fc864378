package hyper

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/karabiner"
)

func hasHyperGuard(m karabiner.Manipulator) bool {
	for _, c := range m.Conditions {
		if c.Type == karabiner.ConditionVariableIf && c.Name == VarHyper && c.Value == 1 {
			return true
		}
	}
	return false
}

func TestExpandSpotify(t *testing.T) {
	layers := []Layer{{Key: "a", Bindings: []Binding{Bind("m", App("Spotify"))}}}

	rules := Expand(layers, ExpandOptions{})
	if len(rules) != 1 {
		t.Fatalf("len(rules) = %d, want 1", len(rules))
	}
	r := rules[0]
	if !strings.Contains(r.Description, `"a"`) {
		t.Errorf("description %q should reference trigger a", r.Description)
	}
	if len(r.Manipulators) != 1 {
		t.Fatalf("len(manipulators) = %d, want 1", len(r.Manipulators))
	}

	m := r.Manipulators[0]
	if m.Type != karabiner.TypeBasic {
		t.Errorf("type = %q, want basic", m.Type)
	}
	if m.From.KeyCode != "m" {
		t.Errorf("from.key_code = %q, want m", m.From.KeyCode)
	}
	if !hasHyperGuard(m) {
		t.Errorf("conditions %v should require hyper == 1", m.Conditions)
	}
	if len(m.To) != 1 || !strings.Contains(m.To[0].ShellCommand, "Spotify") || !strings.HasPrefix(m.To[0].ShellCommand, "open -a") {
		t.Errorf("to = %+v, want an open -a action naming Spotify", m.To)
	}
}

func TestExpandRectangleMaximize(t *testing.T) {
	layers := []Layer{{Key: "d", Bindings: []Binding{Bind("f", Window(WindowMaximize))}}}

	m := Expand(layers, ExpandOptions{})[0].Manipulators[0]
	want := "open -g rectangle://execute-action?name=maximize"
	if len(m.To) != 1 || m.To[0].ShellCommand != want {
		t.Errorf("to = %+v, want shell_command %q", m.To, want)
	}
	if m.From.KeyCode != "f" {
		t.Errorf("from.key_code = %q, want f", m.From.KeyCode)
	}
}

func TestExpandCounts(t *testing.T) {
	tests := []struct {
		name   string
		layers []Layer
	}{
		{"empty", nil},
		{"one empty layer", []Layer{{Key: "x"}}},
		{"defaults", DefaultLayers()},
		{"mixed", []Layer{
			{Key: "a", Bindings: []Binding{Bind("1", App("One")), Bind("2", App("Two"))}},
			{Key: "b", Bindings: []Binding{Bind("z", Emit("escape"))}},
			{Key: "c"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := Expand(tt.layers, ExpandOptions{})
			if len(rules) != len(tt.layers) {
				t.Fatalf("len(rules) = %d, want %d", len(rules), len(tt.layers))
			}
			for i, l := range tt.layers {
				if got := len(rules[i].Manipulators); got != len(l.Bindings) {
					t.Errorf("layer %q: %d manipulators, want %d", l.Key, got, len(l.Bindings))
				}
				for _, m := range rules[i].Manipulators {
					if !hasHyperGuard(m) {
						t.Errorf("layer %q key %q: missing hyper guard", l.Key, m.From.KeyCode)
					}
				}
			}
		})
	}
}

func TestExpandPreservesOrder(t *testing.T) {
	layers := []Layer{
		{Key: "z", Bindings: []Binding{Bind("q", Emit("a")), Bind("b", Emit("b")), Bind("m", Emit("c"))}},
		{Key: "a", Bindings: []Binding{Bind("y", Emit("d")), Bind("c", Emit("e"))}},
	}

	rules := Expand(layers, ExpandOptions{})
	var got []string
	for _, r := range rules {
		for _, m := range r.Manipulators {
			got = append(got, m.From.KeyCode)
		}
	}
	want := []string{"q", "b", "m", "y", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("manipulator order = %v, want %v", got, want)
	}
	if rules[0].Description != `Hyper Key sublayer "z"` || rules[1].Description != `Hyper Key sublayer "a"` {
		t.Errorf("rule order = %q, %q", rules[0].Description, rules[1].Description)
	}
}

func TestExpandExplicitManipulatorPassthrough(t *testing.T) {
	custom := karabiner.Manipulator{
		Description: "Window: Next Tab",
		To:          []karabiner.Event{karabiner.Key("tab", "right_control")},
		ToIfAlone:   []karabiner.Event{karabiner.Key("escape")},
		Conditions:  []karabiner.Condition{karabiner.VariableUnless("locked", 1)},
		Parameters:  map[string]int{"basic.to_if_alone_timeout_milliseconds": 300},
	}
	layers := []Layer{{Key: "d", Bindings: []Binding{Bind("i", Keys(custom))}}}

	m := Expand(layers, ExpandOptions{})[0].Manipulators[0]

	if m.Description != custom.Description {
		t.Errorf("description = %q, want %q", m.Description, custom.Description)
	}
	if !reflect.DeepEqual(m.To, custom.To) || !reflect.DeepEqual(m.ToIfAlone, custom.ToIfAlone) {
		t.Errorf("to/to_if_alone changed: %+v", m)
	}
	if !reflect.DeepEqual(m.Parameters, custom.Parameters) {
		t.Errorf("parameters = %v, want %v", m.Parameters, custom.Parameters)
	}
	wantConds := []karabiner.Condition{karabiner.VariableIf(VarHyper, 1), karabiner.VariableUnless("locked", 1)}
	if !reflect.DeepEqual(m.Conditions, wantConds) {
		t.Errorf("conditions = %v, want %v", m.Conditions, wantConds)
	}
	if len(custom.Conditions) != 1 {
		t.Error("Expand must not modify the input manipulator")
	}
}

func TestExpandBuilderAndRawAgree(t *testing.T) {
	viaBuilder := Expand([]Layer{{Key: "a", Bindings: []Binding{Bind("m", App("Spotify"))}}}, ExpandOptions{})
	viaRaw := Expand([]Layer{{Key: "a", Bindings: []Binding{Bind("m", Keys(OpenApp("Spotify")))}}}, ExpandOptions{})
	if !reflect.DeepEqual(viaBuilder, viaRaw) {
		t.Errorf("builder and raw manipulator should expand identically:\n%+v\n%+v", viaBuilder, viaRaw)
	}
}

func TestExpandDeterministic(t *testing.T) {
	first := Expand(DefaultLayers(), ExpandOptions{})
	for i := 0; i < 5; i++ {
		if again := Expand(DefaultLayers(), ExpandOptions{}); !reflect.DeepEqual(first, again) {
			t.Fatalf("Expand() not deterministic on run %d", i)
		}
	}
}

func TestExpandSublayers(t *testing.T) {
	layers := []Layer{
		{Key: "a", Bindings: []Binding{Bind("m", App("Spotify")), Bind("f", App("Finder"))}},
		{Key: "d", Bindings: []Binding{Bind("f", Window(WindowMaximize))}},
	}

	rules := Expand(layers, ExpandOptions{Sublayers: true})
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(rules))
	}
	if got := len(rules[0].Manipulators); got != 3 {
		t.Fatalf("layer a: %d manipulators, want toggle + 2", got)
	}

	toggle := rules[0].Manipulators[0]
	if toggle.From.KeyCode != "a" {
		t.Errorf("toggle from = %q, want a", toggle.From.KeyCode)
	}
	if !reflect.DeepEqual(toggle.To, []karabiner.Event{karabiner.SetVar("hyper_sublayer_a", 1)}) {
		t.Errorf("toggle to = %+v", toggle.To)
	}
	if !reflect.DeepEqual(toggle.ToAfterKeyUp, []karabiner.Event{karabiner.SetVar("hyper_sublayer_a", 0)}) {
		t.Errorf("toggle to_after_key_up = %+v", toggle.ToAfterKeyUp)
	}
	wantToggleConds := []karabiner.Condition{
		karabiner.VariableIf("hyper_sublayer_d", 0),
		karabiner.VariableIf(VarHyper, 1),
	}
	if !reflect.DeepEqual(toggle.Conditions, wantToggleConds) {
		t.Errorf("toggle conditions = %v, want %v", toggle.Conditions, wantToggleConds)
	}

	binding := rules[0].Manipulators[1]
	wantConds := []karabiner.Condition{
		karabiner.VariableIf(VarHyper, 1),
		karabiner.VariableIf("hyper_sublayer_a", 1),
	}
	if !reflect.DeepEqual(binding.Conditions, wantConds) {
		t.Errorf("binding conditions = %v, want %v", binding.Conditions, wantConds)
	}

	for _, r := range rules {
		for _, m := range r.Manipulators {
			if !hasHyperGuard(m) {
				t.Errorf("%s: manipulator %q missing hyper guard", r.Description, m.From.KeyCode)
			}
		}
	}
}

func TestExpandLayerName(t *testing.T) {
	rules := Expand([]Layer{{Key: "a", Name: "Applications"}}, ExpandOptions{})
	if want := `Hyper Key sublayer "a" (Applications)`; rules[0].Description != want {
		t.Errorf("description = %q, want %q", rules[0].Description, want)
	}
}

// triggerKey is what Karabiner matches a manipulator on: the from event
// and every condition.
func triggerKey(t *testing.T, m karabiner.Manipulator) string {
	t.Helper()
	data, err := json.Marshal(struct {
		From       karabiner.From
		Conditions []karabiner.Condition
	}{m.From, m.Conditions})
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestDefaultLayersReachable(t *testing.T) {
	rules := Rules(DefaultLayers(), DefaultOptions())

	seen := make(map[string]string)
	for _, r := range rules {
		for _, m := range r.Manipulators {
			k := triggerKey(t, m)
			if prev, ok := seen[k]; ok {
				t.Errorf("%s / key %s is shadowed by %s", r.Description, m.From.KeyCode, prev)
				continue
			}
			seen[k] = r.Description
		}
	}

	for i, l := range DefaultLayers() {
		rule := rules[i+2]
		guard := karabiner.VariableIf(SublayerVariable(l.Key), 1)
		for j, b := range l.Bindings {
			m := rule.Manipulators[j+1]
			if m.From.KeyCode != b.Key {
				t.Fatalf("%s: manipulator %d from = %q, want %q", rule.Description, j+1, m.From.KeyCode, b.Key)
			}
			found := false
			for _, c := range m.Conditions {
				found = found || c == guard
			}
			if !found {
				t.Errorf("hyper+%s+%s not guarded by %s", l.Key, b.Key, SublayerVariable(l.Key))
			}
		}
	}
}

func TestValidateExpansion(t *testing.T) {
	shared := []Layer{
		{Key: "a", Bindings: []Binding{Bind("f", App("Finder")), Bind("m", App("Spotify"))}},
		{Key: "d", Bindings: []Binding{Bind("f", Window(WindowMaximize))}},
	}
	distinct := []Layer{
		{Key: "a", Bindings: []Binding{Bind("f", App("Finder"))}},
		{Key: "d", Bindings: []Binding{Bind("k", Window(WindowTopHalf))}},
	}

	tests := []struct {
		name   string
		layers []Layer
		opts   ExpandOptions
		code   errors.Code
	}{
		{"shared sub-key flat", shared, ExpandOptions{}, errors.ErrCodeDuplicateKey},
		{"shared sub-key with sublayers", shared, ExpandOptions{Sublayers: true}, ""},
		{"distinct sub-keys flat", distinct, ExpandOptions{}, ""},
		{"builtin flat", DefaultLayers(), ExpandOptions{}, errors.ErrCodeDuplicateKey},
		{"builtin with sublayers", DefaultLayers(), DefaultOptions().Expand, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExpansion(tt.layers, tt.opts)
			if tt.code == "" {
				if err != nil {
					t.Errorf("ValidateExpansion() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateExpansion() = %v, want %s", err, tt.code)
			}
		})
	}

	err := ValidateExpansion(shared, ExpandOptions{})
	if err == nil || !strings.Contains(err.Error(), `sub-key "f" in layer "d"`) {
		t.Errorf("error should name the shadowed binding, got %v", err)
	}
}

package karabiner

import (
	"reflect"
	"testing"
)

func rule(desc, key string) Rule {
	return Rule{
		Description:  desc,
		Manipulators: []Manipulator{{Type: TypeBasic, From: FromKey(key), To: []Event{Key(key)}}},
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		old  []Rule
		new  []Rule
		want []Change
	}{
		{
			name: "identical",
			old:  []Rule{rule("a", "a"), rule("b", "b")},
			new:  []Rule{rule("a", "a"), rule("b", "b")},
			want: nil,
		},
		{
			name: "added and removed",
			old:  []Rule{rule("a", "a"), rule("b", "b")},
			new:  []Rule{rule("a", "a"), rule("c", "c")},
			want: []Change{{RuleAdded, "c"}, {RuleRemoved, "b"}},
		},
		{
			name: "changed",
			old:  []Rule{rule("a", "a")},
			new:  []Rule{rule("a", "x")},
			want: []Change{{RuleChanged, "a"}},
		},
		{
			name: "insert at front is not a move",
			old:  []Rule{rule("a", "a"), rule("b", "b")},
			new:  []Rule{rule("z", "z"), rule("a", "a"), rule("b", "b")},
			want: []Change{{RuleAdded, "z"}},
		},
		{
			name: "swapped",
			old:  []Rule{rule("a", "a"), rule("b", "b")},
			new:  []Rule{rule("b", "b"), rule("a", "a")},
			want: []Change{{RuleMoved, "a"}},
		},
		{
			name: "duplicate descriptions",
			old:  []Rule{rule("d", "1"), rule("d", "2")},
			new:  []Rule{rule("d", "1"), rule("d", "3")},
			want: []Change{{RuleChanged, "d"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(NewConfig("Default", false, tt.old), NewConfig("Default", false, tt.new))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiffNilAndEmptyListsAreEqual(t *testing.T) {
	a := rule("a", "a")
	b := rule("a", "a")
	b.Manipulators[0].Conditions = []Condition{}

	if got := Diff(NewConfig("Default", false, []Rule{a}), NewConfig("Default", false, []Rule{b})); got != nil {
		t.Errorf("Diff() = %v, want no changes", got)
	}
}

func TestManipulatorCount(t *testing.T) {
	rules := []Rule{rule("a", "a"), rule("b", "b"), {Description: "empty"}}
	if got := ManipulatorCount(rules); got != 2 {
		t.Errorf("ManipulatorCount() = %d, want 2", got)
	}
}

func TestConfigRulesWithoutProfiles(t *testing.T) {
	if got := (Config{}).Rules(); got != nil {
		t.Errorf("Rules() = %v, want nil", got)
	}
}

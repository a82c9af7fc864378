package karabiner

import (
	"bytes"
	"encoding/json"
)

// ChangeKind classifies a rule difference.
type ChangeKind string

// Rule change kinds reported by Diff.
const (
	RuleAdded   ChangeKind = "added"
	RuleRemoved ChangeKind = "removed"
	RuleChanged ChangeKind = "changed"
	RuleMoved   ChangeKind = "moved"
)

// Change is one rule-level difference between two configurations.
type Change struct {
	Kind        ChangeKind
	Description string
}

// Diff compares the first-profile rules of old and new by description.
//
// Rules present only in new are added, rules present only in old are removed,
// rules whose encoded form differs are changed, and identical rules that now
// come before a rule they used to follow are moved (order matters to
// Karabiner). Changes are listed in new's rule order, followed by removals in
// old's order. Duplicate descriptions are matched first to first.
func Diff(old, new Config) []Change {
	oldRules := old.Rules()
	newRules := new.Rules()

	oldIndex := make(map[string][]int, len(oldRules))
	for i, r := range oldRules {
		oldIndex[r.Description] = append(oldIndex[r.Description], i)
	}
	matched := make([]bool, len(oldRules))

	var changes []Change
	last := -1
	for _, r := range newRules {
		idx := oldIndex[r.Description]
		if len(idx) == 0 {
			changes = append(changes, Change{Kind: RuleAdded, Description: r.Description})
			continue
		}
		j := idx[0]
		oldIndex[r.Description] = idx[1:]
		matched[j] = true

		switch {
		case !sameRule(oldRules[j], r):
			changes = append(changes, Change{Kind: RuleChanged, Description: r.Description})
		case j < last:
			changes = append(changes, Change{Kind: RuleMoved, Description: r.Description})
		}
		if j > last {
			last = j
		}
	}
	for j, r := range oldRules {
		if !matched[j] {
			changes = append(changes, Change{Kind: RuleRemoved, Description: r.Description})
		}
	}
	return changes
}

// sameRule compares encoded forms so nil and empty optional lists are equal.
func sameRule(a, b Rule) bool {
	ea, errA := json.Marshal(a)
	eb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ea, eb)
}

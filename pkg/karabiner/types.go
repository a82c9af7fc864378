package karabiner

// Manipulator types and condition kinds understood by Karabiner.
const (
	TypeBasic = "basic"

	ConditionVariableIf     = "variable_if"
	ConditionVariableUnless = "variable_unless"
)

// ParamDelayedActionDelay is the parameter key controlling how long Karabiner
// waits before firing to_delayed_action.
const ParamDelayedActionDelay = "basic.to_delayed_action_delay_milliseconds"

// ModifierAny matches any modifier combination in From.Modifiers.Optional.
const ModifierAny = "any"

// Config is the top-level karabiner.json document.
type Config struct {
	Global   Global    `json:"global"`
	Profiles []Profile `json:"profiles"`
}

// Global holds application-wide settings.
type Global struct {
	ShowInMenuBar bool `json:"show_in_menu_bar"`
}

// Profile is a named set of modifications.
type Profile struct {
	Name                 string               `json:"name"`
	ComplexModifications ComplexModifications `json:"complex_modifications"`
}

// ComplexModifications wraps the ordered rule list. Karabiner evaluates rules
// in order and the first matching manipulator wins.
type ComplexModifications struct {
	Rules []Rule `json:"rules"`
}

// Rule is a described group of manipulators.
type Rule struct {
	Description  string        `json:"description"`
	Manipulators []Manipulator `json:"manipulators"`
}

// Manipulator maps a key event to actions.
type Manipulator struct {
	Type            string         `json:"type"`
	Description     string         `json:"description,omitempty"`
	From            From           `json:"from"`
	To              []Event        `json:"to,omitempty"`
	ToIfAlone       []Event        `json:"to_if_alone,omitempty"`
	ToAfterKeyUp    []Event        `json:"to_after_key_up,omitempty"`
	ToDelayedAction *DelayedAction `json:"to_delayed_action,omitempty"`
	Conditions      []Condition    `json:"conditions,omitempty"`
	Parameters      map[string]int `json:"parameters,omitempty"`
}

// From describes the triggering key.
type From struct {
	KeyCode   string         `json:"key_code"`
	Modifiers *FromModifiers `json:"modifiers,omitempty"`
}

// FromModifiers lists modifiers that must or may be held with From.KeyCode.
type FromModifiers struct {
	Mandatory []string `json:"mandatory,omitempty"`
	Optional  []string `json:"optional,omitempty"`
}

// Event is one entry of a to, to_if_alone or to_after_key_up list.
// Exactly one of KeyCode, ShellCommand or SetVariable is set.
type Event struct {
	KeyCode      string       `json:"key_code,omitempty"`
	Modifiers    []string     `json:"modifiers,omitempty"`
	ShellCommand string       `json:"shell_command,omitempty"`
	SetVariable  *SetVariable `json:"set_variable,omitempty"`
}

// SetVariable assigns a Karabiner variable.
type SetVariable struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Condition guards a manipulator on a variable value.
type Condition struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DelayedAction fires after ParamDelayedActionDelay unless another key is
// pressed first.
type DelayedAction struct {
	ToIfInvoked  []Event `json:"to_if_invoked,omitempty"`
	ToIfCanceled []Event `json:"to_if_canceled,omitempty"`
}

// NewConfig wraps rules in a single-profile document.
func NewConfig(profile string, showInMenuBar bool, rules []Rule) Config {
	if rules == nil {
		rules = []Rule{}
	}
	return Config{
		Global: Global{ShowInMenuBar: showInMenuBar},
		Profiles: []Profile{{
			Name:                 profile,
			ComplexModifications: ComplexModifications{Rules: rules},
		}},
	}
}

// Rules returns the rules of the first profile, or nil when there is none.
func (c Config) Rules() []Rule {
	if len(c.Profiles) == 0 {
		return nil
	}
	return c.Profiles[0].ComplexModifications.Rules
}

// ManipulatorCount returns the total number of manipulators across rules.
func ManipulatorCount(rules []Rule) int {
	n := 0
	for _, r := range rules {
		n += len(r.Manipulators)
	}
	return n
}

// FromKey returns a From matching code with any modifiers held.
func FromKey(code string) From {
	return From{KeyCode: code, Modifiers: &FromModifiers{Optional: []string{ModifierAny}}}
}

// FromKeyWith returns a From that requires the given modifiers.
func FromKeyWith(code string, mandatory ...string) From {
	return From{KeyCode: code, Modifiers: &FromModifiers{Mandatory: mandatory}}
}

// Key returns an event pressing code with optional modifiers.
func Key(code string, modifiers ...string) Event {
	return Event{KeyCode: code, Modifiers: modifiers}
}

// Shell returns an event running cmd through the shell.
func Shell(cmd string) Event {
	return Event{ShellCommand: cmd}
}

// SetVar returns an event assigning value to the variable name.
func SetVar(name string, value int) Event {
	return Event{SetVariable: &SetVariable{Name: name, Value: value}}
}

// VariableIf returns a condition requiring name == value.
func VariableIf(name string, value int) Condition {
	return Condition{Type: ConditionVariableIf, Name: name, Value: value}
}

// VariableUnless returns a condition requiring name != value.
func VariableUnless(name string, value int) Condition {
	return Condition{Type: ConditionVariableUnless, Name: name, Value: value}
}

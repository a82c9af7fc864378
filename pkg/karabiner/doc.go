// Package karabiner models the Karabiner-Elements configuration file and
// reads and writes it as JSON.
//
// # Overview
//
// Karabiner-Elements loads its settings from a single JSON document. This
// package covers the part of that document the generator produces:
//
//	{
//	  "global": { "show_in_menu_bar": false },
//	  "profiles": [
//	    {
//	      "name": "Default",
//	      "complex_modifications": {
//	        "rules": [
//	          { "description": "...", "manipulators": [ ... ] }
//	        ]
//	      }
//	    }
//	  ]
//	}
//
// The schema is owned by Karabiner, not by this repository. Field names and
// nesting must match it exactly or Karabiner refuses the file.
//
// # Manipulators
//
// A [Manipulator] maps one [From] key event to a list of [Event] values.
// Optional fields cover tap-vs-hold handling ([Manipulator.ToIfAlone],
// [Manipulator.ToAfterKeyUp]), delayed actions ([DelayedAction]) and
// variable guards ([Condition]). Variables such as "hyper" are plain data
// here; they only have state inside Karabiner at runtime.
//
// Small constructors keep rule definitions terse:
//
//	m := karabiner.Manipulator{
//	    Type: karabiner.TypeBasic,
//	    From: karabiner.FromKey("m"),
//	    To:   []karabiner.Event{karabiner.Shell("open -a 'Spotify.app'")},
//	    Conditions: []karabiner.Condition{
//	        karabiner.VariableIf("hyper", 1),
//	    },
//	}
//
// # Export
//
// Use [ExportJSON] to write a [Config] to a file, or [WriteJSON] to write to
// any io.Writer. Output is indented with two spaces, does not escape HTML
// characters and ends with a newline, so the same Config always yields the
// same bytes. [ExportJSON] writes to a temporary file next to the target and
// renames it into place, so the target is either fully replaced or left
// untouched.
//
// # Import
//
// [ImportJSON] and [ReadJSON] decode an existing file. Fields outside the
// modelled subset (devices, virtual keyboard settings) are ignored. [Diff]
// compares the rules of two configurations by description.
package karabiner

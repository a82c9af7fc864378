package hyper

import "github.com/matzehuels/hyperkey/pkg/karabiner"

// DefaultLayers returns the built-in layer tree used when no layer file is
// configured. A fresh copy is returned on every call.
func DefaultLayers() []Layer {
	return []Layer{
		{
			Key:  "a",
			Name: "Applications",
			Bindings: []Binding{
				Bind("b", App("Arc")),
				Bind("m", App("Spotify")),
				Bind("c", App("Calendar")),
				Bind("v", App("Visual Studio Code")),
				Bind("t", App("Alacritty")),
				Bind("f", App("Finder")),
			},
		},
		{
			Key:  "d",
			Name: "Display",
			Bindings: []Binding{
				Bind("y", Window(WindowPreviousDisplay)),
				Bind("o", Window(WindowNextDisplay)),
				Bind("k", Window(WindowTopHalf)),
				Bind("j", Window(WindowBottomHalf)),
				Bind("h", Window(WindowLeftHalf)),
				Bind("l", Window(WindowRightHalf)),
				Bind("f", Window(WindowMaximize)),
				Bind("u", described("Window: Previous Tab", "tab", "right_control", "right_shift")),
				Bind("i", described("Window: Next Tab", "tab", "right_control")),
				Bind("n", described("Window: Next Window", "grave_accent_and_tilde", "right_command")),
				Bind("b", described("Window: Back", "open_bracket", "right_command")),
				// f and n are taken, so forward sits next to back.
				Bind("m", described("Window: Forward", "close_bracket", "right_command")),
			},
		},
		{
			Key:  "s",
			Name: "System",
			Bindings: []Binding{
				Bind("u", Emit("volume_increment")),
				Bind("j", Emit("volume_decrement")),
				Bind("i", Emit("display_brightness_increment")),
				Bind("k", Emit("display_brightness_decrement")),
				Bind("l", Emit("q", "right_control", "right_command")),
			},
		},
		{
			// moVe: kept on the left hand so hjkl match vim.
			Key:  "v",
			Name: "Move",
			Bindings: []Binding{
				Bind("h", Emit("left_arrow")),
				Bind("j", Emit("down_arrow")),
				Bind("k", Emit("up_arrow")),
				Bind("l", Emit("right_arrow")),
				Bind("m", Emit("f", "right_control")), // Homerow click mode
				Bind("s", Emit("j", "right_control")), // Homerow scroll mode
				Bind("d", Emit("d", "right_shift", "right_command")),
				Bind("u", Emit("page_down")),
				Bind("i", Emit("page_up")),
			},
		},
		{
			// musiC: left hand as well.
			Key:  "c",
			Name: "Music",
			Bindings: []Binding{
				Bind("k", Emit("play_or_pause")),
				Bind("l", Emit("fastforward")),
				Bind("j", Emit("rewind")),
			},
		},
	}
}

func described(description, code string, modifiers ...string) Action {
	return Keys(karabiner.Manipulator{
		Description: description,
		To:          []karabiner.Event{karabiner.Key(code, modifiers...)},
	})
}

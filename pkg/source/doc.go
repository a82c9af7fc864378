// Package source reads and writes hyper layer trees as YAML, TOML or JSON.
//
// A layer file lists layers in the order they are expanded:
//
//	layers:
//	  - key: a
//	    name: Applications
//	    bindings:
//	      - key: m
//	        app: Spotify
//	  - key: d
//	    bindings:
//	      - key: f
//	        window: maximize
//	  - key: s
//	    bindings:
//	      - key: u
//	        to:
//	          - key_code: volume_increment
//	      - key: l
//	        description: Lock screen
//	        to:
//	          - key_code: q
//	            modifiers: [right_control, right_command]
//
// Each binding sets exactly one of app, window or to. Window names are
// Rectangle action names such as "left-half" or "next-display".
package source

// Package config loads the board presets a server offers.
//
// A preset is a JSON file in the configs directory:
//
//	{
//	  "name": "classic",
//	  "description": "The standard 4x4 board",
//	  "grid_size": 4,
//	  "max_edit_value": 2048,
//	  "messages": {
//	    "welcome": "...",
//	    "game_over": "Game Over!",
//	    "no_moves": "No possible moves. Game Over!",
//	    "ai_selected": "AI selected move: %s",
//	    "score": "Score: %d"
//	  }
//	}
//
// Presets are validated with engine.ValidateGameConfig on first load and
// cached afterwards. The default preset is classic when present, otherwise
// the smallest valid preset, otherwise the built-in classic board.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mini, err := manager.LoadConfig("mini")
//	presets, err := manager.ListConfigs()
package config

// Package config provides round configuration management for Coin Crate.
//
// The config package handles:
//   - Loading round configurations from JSON and YAML files
//   - Validation through engine.ValidateRoundConfig
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Each file in the configs directory describes how rounds are built:
//
//	{
//	  "name": "Classic",
//	  "description": "Classic 10x30 board",
//	  "rows": 10,
//	  "cols": 30,
//	  "obstacle_count": 10,
//	  "coin_count": 5,
//	  "seed": 0
//	}
//
// The same keys are used in .yaml and .yml files. A non-zero seed makes every
// session built from the file replay the same sequence of rounds.
//
// Lookup:
//
// A name without extension is resolved as name.json, then name.yaml, then
// name.yml. When a directory holds more than one of them, ListConfigs reports
// the first in that order.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	roundConfig, err := manager.LoadConfig("small")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default is classic when present, otherwise the first valid file, and
// finally engine.DefaultRoundConfig when the directory has nothing usable.
package config

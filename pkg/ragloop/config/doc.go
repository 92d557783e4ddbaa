// Package config provides configuration loading for the ragloop pipeline.
//
// Configuration flows one way: a file or map is parsed into a Config, a
// typed Settings value is projected from it with SettingsFrom, and the
// Settings are handed to the pipeline at construction time. Nothing in the
// pipeline consults configuration globals afterwards.
//
// Example:
//
//	cfg, err := config.FromFile("ragloop.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	settings := config.SettingsFrom(cfg)
//	pipe, err := ragloop.New(settings, collaborators)
package config

package config

import "go.uber.org/fx"

// Env is the name of the selected environment (see Environment).
type Env string

var Module = fx.Module("config", fx.Provide(
	// Configuration files are read relative to the project directory, which
	// isn't known until the CLI has parsed --dir, so only the environment is
	// resolved here.
	func() Env {
		return Env(Environment())
	},
))

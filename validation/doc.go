// Package validation checks host-side inputs before the engine runs.
//
// It supports both struct tag validation (using the validator library)
// and programmatic validation with error collection. Struct tag
// validation covers configuration structs; the programmatic form suits
// command-line flags assembled at startup.
//
// # Struct Tag Validation
//
//	type RuntimeConfig struct {
//	    Threads int `mapstructure:"threads" validate:"min=0,max=4096"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    OneOf("log-level", level, []string{"debug", "info", "warn", "error"}).
//	    Range("threads", threads, 0, 4096).
//	    Validate()
package validation

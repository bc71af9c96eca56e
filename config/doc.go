// Package config loads the shell's runtime configuration.
//
// Configuration comes from a YAML file (./shale.yml, ./config/shale.yml,
// or the user config directory), an optional .env file, and SHALE_*
// environment variables, in rising precedence. Defaults apply last so a
// missing file still yields a working shell.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	threads := cfg.WorkerThreads()
//
// Environment variables use the SHALE_ prefix with underscore-separated
// paths (e.g., SHALE_LOG_LEVEL=debug, SHALE_ERRORS_CONTEXT_LINES=4).
package config

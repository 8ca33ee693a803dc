// Package config holds the SDK configuration and loads it from the process
// environment.
//
// A Config carries the public API key, the base URL of the hosted Parcelvoy
// instance and a debug switch, plus a few tuning knobs. It is a plain value:
// the SDK copies it on construction so later changes to the caller's copy
// have no effect.
//
// Configuration can be built in code:
//
//	cfg, err := config.New("pk_live_123", "https://parcelvoy.example.com",
//	    config.WithDebug(true),
//	)
//
// or read from the environment. Load first reads `.env` files with
// github.com/joho/godotenv (missing files are ignored) and then parses the
// environment with github.com/caarlos0/env/v11:
//
//	PARCELVOY_API_KEY=pk_live_123
//	PARCELVOY_URL=https://parcelvoy.example.com
//	PARCELVOY_DEBUG=true
//
//	cfg, err := config.Load()
//
// Every constructor validates the result; errors wrap ErrInvalidConfig or
// ErrParsingConfig.
package config

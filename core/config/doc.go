// Package config provides configuration management for the catalog service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from 'default' struct tags on the
// partial config structs, and environment variables map onto nested keys
// (e.g. RESILIENCE_WINDOW -> resilience.window).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port)
//   - Log: logging level and format
//   - Database: MySQL connection details
//   - Cache: in-process cache store sizing and TTLs
//   - Collector: external collector endpoint and page size
//   - Resilience: circuit breaker and retry policy
//   - Sync: reconciliation schedule and page budget
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config

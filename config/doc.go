// Package config loads riv configuration and exposes typed value lookups.
//
// Load uses Viper to read an optional YAML file, a .env file and RIV_*
// environment variables, then applies command-line flags on top.
//
//	var cfg CLIConfig
//	err := config.Load(&cfg, config.WithConfigFile("riv.yml"), config.WithFlags(fs))
//
// Environment variables use underscore-separated paths
// (e.g., RIV_SINK_DB_PATH sets sink.db_path).
//
// Values is the loose name/value form used for ad hoc component settings:
//
//	delim, ok := cfg.Values.String("delimiter")
package config

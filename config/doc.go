// Package config loads service configuration from a YAML file, an optional
// .env file, and the process environment using Viper and godotenv.
//
// Environment variables override file values. A variable such as
// TRANSCRIPTION_OPENAI_API_KEY is bound to every nested key it could name
// (transcription.openai.api_key among them), and explicit aliases can map
// well-known variables like OPENAI_API_KEY onto a config key:
//
//	var cfg AppConfig
//	err := config.LoadConfig("whispersrt", &cfg,
//	    config.WithConfigFile(path),
//	    config.WithEnvAlias("transcription.openai.api_key", "OPENAI_API_KEY"))
package config

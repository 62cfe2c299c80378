// Package config loads typed configuration structs from environment
// variables via caarlos0/env tags, with godotenv support for local
// development. Every package that needs configuration declares its own
// Config struct and the composition layer loads them at startup.
package config

// Package config loads and validates service configuration.
//
// Configuration comes from three layers, later layers overriding earlier
// ones: a YAML config file, a .env file, and process environment
// variables. Services embed ServiceConfig in their own config struct and
// load it with LoadConfig.
package config

// Package config loads and validates the questlog configuration file.
package config

// Package config loads client configuration for the sweet shop frontends.
//
// Configuration comes from a TOML file (default
// $XDG_CONFIG_HOME/sweetshop/config.toml), with a .env file and SWEETSHOP_*
// environment variables layered on top. Every field has a working default, so
// a missing config file is not an error; the frontends run against
// http://localhost:8000 out of the box.
package config

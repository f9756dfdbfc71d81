// Package config declares the command-line surface parsed by kong.
package config

import "github.com/Alia5/interopgen/internal/cmd"

// Log holds the logging options shared by every command.
type Log struct {
	Level  string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error" env:"INTEROPGEN_LOG_LEVEL"`
	File   string `help:"Write logs to this file instead of stdout/stderr" env:"INTEROPGEN_LOG_FILE"`
	Format string `help:"Console log format; auto picks text on a terminal and json otherwise" default:"auto" enum:"auto,text,json" env:"INTEROPGEN_LOG_FORMAT"`
}

type CLI struct {
	Config string `help:"Configuration file (json, yaml or toml)" env:"INTEROPGEN_CONFIG"`
	Log    Log    `embed:"" prefix:"log."`

	Generate  cmd.Generate      `cmd:"" help:"Generate declarations, bindings and serializer registrations"`
	Verify    cmd.Verify        `cmd:"" help:"Fail when the generated files on disk are out of date"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}

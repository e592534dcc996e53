package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rlch/neointrospect"
)

// resolveConfig loads the config file, if any, and applies flag and
// environment overrides on top.
func resolveConfig(cmd *cli.Command) (*neointrospect.Config, error) {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	setString := func(flag string, dst *string) {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}

	setString("uri", &cfg.Neo4j.URI)
	setString("username", &cfg.Neo4j.Username)
	setString("password", &cfg.Neo4j.Password)
	setString("database", &cfg.Neo4j.Database)
	setString("driver-log-level", &cfg.Neo4j.LogLevel)
	setString("out", &cfg.Output)
	setString("graph-out", &cfg.GraphOutput)

	if cmd.IsSet("encrypted") {
		cfg.Neo4j.Encrypted = cmd.Bool("encrypted")
	}

	if cmd.IsSet("always-include-relationships") {
		cfg.Inference.AlwaysIncludeRelationships = cmd.Bool("always-include-relationships")
	}

	if cfg.Output == "" {
		cfg.Output = neointrospect.DefaultOutputPath
	}

	if err := cfg.Neo4j.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfig reads path when given, otherwise the nearest config file from
// the working directory. No config file at all yields the defaults.
func loadConfig(path string) (*neointrospect.Config, error) {
	if path != "" {
		cfg, err := neointrospect.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		return cfg, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}

	cfg, err := neointrospect.LoadConfig(cwd)
	if errors.Is(err, neointrospect.ErrConfigNotFound) {
		return neointrospect.DefaultConfig(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

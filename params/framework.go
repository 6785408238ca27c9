// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"slices"
	"strings"

	"github.com/choria-io/scafgen"
)

// Framework is a supported server framework
type Framework string

const (
	Gin    Framework = "gin"
	GoZero Framework = "go-zero"
	None   Framework = "none"
)

// DefaultGRPCPort is the port of generated gRPC services
const DefaultGRPCPort = 9000

var frameworkLanguage = map[Framework]Language{
	Gin:    Go,
	GoZero: Go,
}

var frameworkPorts = map[Framework]int{
	Gin:    8080,
	GoZero: 8888,
}

// DatabaseTypes are the database drivers frameworks can be configured for
var DatabaseTypes = []string{"postgres", "mysql", "sqlite"}

// ParseFramework parses framework names and aliases case insensitively, empty is None
func ParseFramework(s string) (Framework, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gin":
		return Gin, nil
	case "go-zero", "gozero", "go_zero":
		return GoZero, nil
	case "", "none":
		return None, nil
	default:
		return "", &scafgen.ValidationError{Field: "framework", Value: s, Reason: "must be one of gin, go-zero or none"}
	}
}

// FrameworksFor lists the frameworks available for lang, None is always last
func FrameworksFor(lang Language) []Framework {
	var res []Framework
	for _, f := range []Framework{Gin, GoZero} {
		if frameworkLanguage[f] == lang {
			res = append(res, f)
		}
	}

	return append(res, None)
}

// Language is the language the framework is built on, empty for None
func (f Framework) Language() Language {
	return frameworkLanguage[f]
}

// DefaultPort is the port the framework listens on by default
func (f Framework) DefaultPort() int {
	p, ok := frameworkPorts[f]
	if !ok {
		return DefaultPort
	}

	return p
}

func (f Framework) String() string {
	return string(f)
}

// FrameworkParams holds the server framework feature flags
type FrameworkParams struct {
	Framework Framework

	EnableCORS      bool
	EnableJWT       bool
	EnableLogging   bool
	EnableRecovery  bool
	EnableRateLimit bool
	EnableDatabase  bool
	DatabaseType    string
	EnableRedis     bool

	EnableAPI      bool
	EnableRPC      bool
	EnableProtoGen bool
	GRPCPort       int
}

// NewFramework creates the framework layer with the defaults of f
func NewFramework(f Framework) *FrameworkParams {
	return &FrameworkParams{
		Framework:      f,
		EnableCORS:     true,
		EnableLogging:  true,
		EnableRecovery: true,
		EnableAPI:      f == GoZero,
		GRPCPort:       DefaultGRPCPort,
	}
}

func (f *FrameworkParams) Validate() error {
	if _, err := ParseFramework(string(f.Framework)); err != nil {
		return err
	}

	if f.EnableDatabase {
		if f.DatabaseType == "" {
			return &scafgen.ValidationError{Field: "database type", Reason: "is required when the database is enabled"}
		}

		if !slices.Contains(DatabaseTypes, f.DatabaseType) {
			return &scafgen.ValidationError{Field: "database type", Value: f.DatabaseType, Reason: "must be one of " + strings.Join(DatabaseTypes, ", ")}
		}
	}

	if f.EnableRPC {
		err := ValidatePort(f.GRPCPort)
		if err != nil {
			return &scafgen.ValidationError{Field: "grpc port", Value: f.GRPCPort, Reason: "must be between 1024 and 65535"}
		}
	}

	if f.EnableProtoGen && !f.EnableRPC {
		return &scafgen.ValidationError{Field: "proto generation", Reason: "requires rpc to be enabled"}
	}

	return nil
}

// CompatibleWith fails when the framework cannot be used with lang
func (f *FrameworkParams) CompatibleWith(lang Language) error {
	if f.Framework == None || f.Framework == "" {
		return nil
	}

	if f.Framework.Language() != lang {
		return &scafgen.ValidationError{Field: "framework", Value: string(f.Framework), Reason: "is not available for " + string(lang)}
	}

	return nil
}

func (f *FrameworkParams) ToContext() scafgen.Context {
	framework := f.Framework
	if framework == "" {
		framework = None
	}

	return scafgen.Context{
		"framework":         string(framework),
		"enable_cors":       f.EnableCORS,
		"enable_jwt":        f.EnableJWT,
		"enable_logging":    f.EnableLogging,
		"enable_recovery":   f.EnableRecovery,
		"enable_rate_limit": f.EnableRateLimit,
		"enable_database":   f.EnableDatabase,
		"database_type":     f.DatabaseType,
		"enable_redis":      f.EnableRedis,
		"enable_api":        f.EnableAPI,
		"enable_rpc":        f.EnableRPC,
		"enable_proto_gen":  f.EnableProtoGen,
		"grpc_port":         f.GRPCPort,
	}
}

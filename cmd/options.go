// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/choria-io/scafgen"
	"github.com/choria-io/scafgen/generators"
	"github.com/choria-io/scafgen/internal/settings"
	"github.com/choria-io/scafgen/params"
	"github.com/choria-io/scafgen/templates"
	"github.com/spf13/cast"
)

// answers are the form values given on the command line
func (c *newCommand) answers() map[string]any {
	res := map[string]any{}

	set := func(k string, v string) {
		if v != "" {
			res[k] = v
		}
	}

	set("module_path", c.modulePath)
	set("description", c.description)
	set("author", c.author)
	set("enable_precommit", c.precommit)
	set("enable_swagger", c.swagger)
	set("enable_git", c.git)
	set("host", c.host)
	set("enable_api", c.api)
	set("enable_rpc", c.rpc)
	set("enable_proto_gen", c.protoGen)
	set("enable_cors", c.cors)
	set("enable_jwt", c.jwt)
	set("enable_rate_limit", c.rateLimit)
	set("enable_logging", c.logging)
	set("enable_recovery", c.recovery)
	set("enable_redis", c.redis)

	if c.port != 0 {
		res["port"] = c.port
	}
	if c.grpcPort != 0 {
		res["grpc_port"] = c.grpcPort
	}

	switch {
	case c.database == "none":
		res["enable_database"] = "false"
	case c.database != "":
		res["enable_database"] = "true"
		res["database_type"] = c.database
	}

	// canonical names where known, anything else is rejected by the form
	if l, err := params.ParseLanguage(c.language); err == nil {
		res["language"] = string(l)
	} else {
		set("language", c.language)
	}

	if c.framework != "" {
		if f, err := params.ParseFramework(c.framework); err == nil {
			res["framework"] = string(f)
		} else {
			set("framework", c.framework)
		}
	}

	if c.license != "" {
		if l, err := params.ParseLicense(c.license); err == nil {
			res["license"] = l
		} else {
			set("license", c.license)
		}
	}

	return res
}

// formEnv are the values form defaults and descriptions are rendered with
func formEnv(name string, cfg *settings.Settings) map[string]any {
	lang := string(params.Go)
	if l, err := params.ParseLanguage(cfg.Language); err == nil {
		lang = string(l)
	}

	license := params.DefaultLicense
	if l, err := params.ParseLicense(cfg.License); err == nil {
		license = l
	}

	ports := map[string]any{}
	for _, f := range params.FrameworksFor(params.Go) {
		ports[string(f)] = f.DefaultPort()
	}

	return map[string]any{
		"project_name":     name,
		"default_language": lang,
		"module_prefix":    firstNonEmpty(cfg.ModulePrefix, params.DefaultModulePrefix),
		"author":           firstNonEmpty(cfg.Author, params.DefaultAuthor),
		"license":          license,
		"enable_precommit": cfg.EnablePrecommit,
		"host":             firstNonEmpty(cfg.Host, params.DefaultHost),
		"grpc_port":        params.DefaultGRPCPort,
		"framework_ports":  ports,
	}
}

// options builds the generation request from the form answers, the flags and the settings
func (c *newCommand) options(answers map[string]any, cfg *settings.Settings) (*generators.Options, error) {
	base, err := params.NewBase(c.name)
	if err != nil {
		return nil, err
	}

	lang, err := params.ParseLanguage(cast.ToString(answers["language"]))
	if err != nil {
		return nil, err
	}

	fw, err := params.ParseFramework(firstNonEmpty(cast.ToString(answers["framework"]), c.framework))
	if err != nil {
		return nil, err
	}

	base.Host = firstNonEmpty(cast.ToString(answers["host"]), c.host, cfg.Host, params.DefaultHost)
	base.Port = fw.DefaultPort()
	if v, ok := answers["port"]; ok {
		base.Port = cast.ToInt(v)
	}
	base.EnablePrecommit = cast.ToBool(answers["enable_precommit"])
	base.EnableSwagger = cast.ToBool(answers["enable_swagger"])
	base.EnableGit = cast.ToBool(answers["enable_git"])

	project := params.NewProject(c.name)
	project.Description = firstNonEmpty(cast.ToString(answers["description"]), project.Description)
	project.Author = firstNonEmpty(cast.ToString(answers["author"]), project.Author)
	project.License, err = params.ParseLicense(cast.ToString(answers["license"]))
	if err != nil {
		return nil, err
	}

	language := params.NewLanguage(lang, c.name)
	language.ModulePath = cast.ToString(answers["module_path"])
	language.ModulePrefix = firstNonEmpty(cfg.ModulePrefix, params.DefaultModulePrefix)
	if v := cfg.LanguageVersion(string(lang)); v != "" {
		language.Version = v
	}

	framework := params.NewFramework(fw)
	setBool := func(dst *bool, k string) {
		if v, ok := answers[k]; ok {
			*dst = cast.ToBool(v)
		}
	}

	setBool(&framework.EnableAPI, "enable_api")
	setBool(&framework.EnableRPC, "enable_rpc")
	setBool(&framework.EnableProtoGen, "enable_proto_gen")
	setBool(&framework.EnableCORS, "enable_cors")
	setBool(&framework.EnableJWT, "enable_jwt")
	setBool(&framework.EnableRateLimit, "enable_rate_limit")
	setBool(&framework.EnableLogging, "enable_logging")
	setBool(&framework.EnableRecovery, "enable_recovery")
	setBool(&framework.EnableDatabase, "enable_database")
	setBool(&framework.EnableRedis, "enable_redis")
	framework.DatabaseType = cast.ToString(answers["database_type"])
	if v, ok := answers["grpc_port"]; ok {
		framework.GRPCPort = cast.ToInt(v)
	}

	target := firstNonEmpty(c.path, c.name)

	return &generators.Options{
		Target:    target,
		Base:      base,
		Project:   project,
		Language:  language,
		Framework: framework,
		DryRun:    c.dryRun,
		SkipPost:  c.noPost,
	}, nil
}

// selectEngine picks the template engine, the built in templates only render with their own
func (c *newCommand) selectEngine(cfg *settings.Settings) (scafgen.Engine, error) {
	engine, err := scafgen.ParseEngine(firstNonEmpty(c.engine, cfg.Engine))
	if err != nil {
		return engine, err
	}

	if c.templates == "" && engine != templates.Engine {
		return engine, fmt.Errorf("the built in templates are written for the %s engine, the %s engine requires --templates", templates.Engine, engine)
	}

	return engine, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}

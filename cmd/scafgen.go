// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	_ "embed"
	"os"
	"os/signal"
	"syscall"

	"github.com/choria-io/fisk"
	"github.com/choria-io/scafgen"
	"github.com/choria-io/scafgen/forms"
	"github.com/choria-io/scafgen/generators"
	"github.com/choria-io/scafgen/internal/settings"
	"github.com/choria-io/scafgen/templates"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

//go:embed new.yaml
var newForm []byte

var version = "development"

type newCommand struct {
	name        string
	path        string
	language    string
	framework   string
	host        string
	port        int
	grpcPort    int
	license     string
	author      string
	description string
	modulePath  string
	precommit   string
	swagger     string
	git         string
	api         string
	rpc         string
	protoGen    string
	cors        string
	jwt         string
	rateLimit   string
	logging     string
	recovery    string
	database    string
	redis       string
	templates   string
	engine      string
	config      string
	dryRun      bool
	noPost      bool
	yes         bool
	verbose     bool
}

func main() {
	cmd := &newCommand{}

	app := fisk.New("scafgen", "Creates new projects from built in templates")
	app.Version(version)

	app.Help = `
Creates a runnable starter project for Go, Python or Rust.

Values not given on the command line are asked for interactively, use --yes
to accept the defaults instead. Defaults can be set in $XDG_CONFIG_HOME/scafgen/config.yaml
which defaults to ~/.config/scafgen/config.yaml.
`

	n := app.Command("new", "Creates a new project").Action(cmd.newAction)
	n.Arg("name", "The name of the project").Required().StringVar(&cmd.name)
	n.Flag("path", "Directory to create the project in, defaults to the project name").PlaceHolder("DIR").StringVar(&cmd.path)
	n.Flag("language", "The language to use (go, python, rust)").Short('l').StringVar(&cmd.language)
	n.Flag("framework", "The server framework to use (gin, go-zero, none)").Short('f').StringVar(&cmd.framework)
	n.Flag("host", "The address generated services listen on").StringVar(&cmd.host)
	n.Flag("port", "The port generated services listen on").IntVar(&cmd.port)
	n.Flag("license", "The license to generate").StringVar(&cmd.license)
	n.Flag("author", "The author of the project").StringVar(&cmd.author)
	n.Flag("description", "A short description of the project").StringVar(&cmd.description)
	n.Flag("module", "The Go module path").PlaceHolder("PATH").StringVar(&cmd.modulePath)
	n.Flag("precommit", "Adds a pre-commit configuration").EnumVar(&cmd.precommit, "true", "false")
	n.Flag("swagger", "Generates swagger documentation for gin projects").EnumVar(&cmd.swagger, "true", "false")
	n.Flag("git", "Initializes a git repository").EnumVar(&cmd.git, "true", "false")
	n.Flag("grpc-port", "The port generated go-zero gRPC services listen on").PlaceHolder("PORT").IntVar(&cmd.grpcPort)
	n.Flag("api", "Adds a REST API definition to go-zero projects").EnumVar(&cmd.api, "true", "false")
	n.Flag("rpc", "Adds a gRPC service to go-zero projects").EnumVar(&cmd.rpc, "true", "false")
	n.Flag("proto-gen", "Generates gRPC code using goctl for go-zero projects").EnumVar(&cmd.protoGen, "true", "false")
	n.Flag("cors", "Adds CORS middleware to gin projects").EnumVar(&cmd.cors, "true", "false")
	n.Flag("jwt", "Adds JWT authentication to gin projects").EnumVar(&cmd.jwt, "true", "false")
	n.Flag("rate-limit", "Adds rate limiting to gin projects").EnumVar(&cmd.rateLimit, "true", "false")
	n.Flag("logging", "Adds request logging to gin projects").EnumVar(&cmd.logging, "true", "false")
	n.Flag("recovery", "Adds panic recovery to gin projects").EnumVar(&cmd.recovery, "true", "false")
	n.Flag("database", "Adds a database connection to gin projects (postgres, mysql, sqlite, none)").EnumVar(&cmd.database, "postgres", "mysql", "sqlite", "none")
	n.Flag("redis", "Adds a redis client to framework projects").EnumVar(&cmd.redis, "true", "false")
	n.Flag("templates", "Use templates from a directory instead of the built in ones").PlaceHolder("DIR").ExistingDirVar(&cmd.templates)
	n.Flag("engine", "The template engine the templates are written for (jet, go), go needs --templates").EnumVar(&cmd.engine, "jet", "go")
	n.Flag("config", "Configuration file to read defaults from").PlaceHolder("FILE").StringVar(&cmd.config)
	n.Flag("dry-run", "Shows what would be generated without writing anything").BoolVar(&cmd.dryRun)
	n.Flag("no-post", "Writes the files but does not run post processing steps").BoolVar(&cmd.noPost)
	n.Flag("yes", "Accepts defaults for values not given on the command line").Short('y').BoolVar(&cmd.yes)
	n.Flag("verbose", "Enables debug logging").Short('v').BoolVar(&cmd.verbose)

	app.MustParseWithUsage(os.Args[1:])
}

func (c *newCommand) newAction(_ *fisk.ParseContext) error {
	log := newLogger(c.verbose)

	cfg, err := settings.Load(c.config)
	if err != nil {
		return err
	}
	if cfg.File != "" {
		log.Debugf("Loaded settings from %s", cfg.File)
	}

	engine, err := c.selectEngine(cfg)
	if err != nil {
		return err
	}

	var formOpts []forms.ProcessOption
	formOpts = append(formOpts, forms.WithAnswers(c.answers()))
	if c.yes || !term.IsTerminal(int(os.Stdin.Fd())) {
		formOpts = append(formOpts, forms.WithDefaults())
	}

	answers, err := forms.ProcessBytes(newForm, formEnv(c.name, cfg), formOpts...)
	if err != nil {
		return err
	}

	opts, err := c.options(answers, cfg)
	if err != nil {
		return err
	}

	store := scafgen.Store(templates.Store())
	if c.templates != "" {
		store = scafgen.NewDirStore(c.templates)
	}

	var procOpts []scafgen.ProcessorOption
	for _, f := range cfg.Format {
		procOpts = append(procOpts, scafgen.WithFilePost(scafgen.FilePost{Glob: f.Glob, Command: f.Command}))
	}

	proc := scafgen.NewProcessor(store, scafgen.NewRenderer(scafgen.WithEngine(engine)), procOpts...)

	runner := &spinnerRunner{
		next:    &generators.ExecRunner{},
		enabled: term.IsTerminal(int(os.Stderr.Fd())) && !c.verbose,
	}

	orch := generators.New(proc, runner)
	orch.Logger(log.WithField("project", c.name))

	run, err := orch.Prepare(*opts)
	if err != nil {
		return err
	}

	if !run.DryRun && !run.SkipPost {
		for _, w := range probeEnvironment(run.Context) {
			log.Warn(w)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := orch.Generate(ctx, run)
	if res != nil {
		showResult(os.Stdout, res, run)
	}

	return err
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)

	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"net"
	"runtime"
	"strconv"
	"time"

	"github.com/choria-io/scafgen"
)

const (
	// DefaultHost is the listen address of generated services
	DefaultHost = "0.0.0.0"
	// DefaultPort is the port of generated services when the framework has no preference
	DefaultPort = 8080
)

// Base holds the values every generated project has
type Base struct {
	ProjectName     string
	Host            string
	Port            int
	EnablePrecommit bool
	EnableSwagger   bool
	EnableGit       bool

	now func() time.Time
}

// NewBase creates the base layer with defaults, the name is validated immediately
func NewBase(name string) (*Base, error) {
	err := ValidateProjectName(name)
	if err != nil {
		return nil, err
	}

	return &Base{
		ProjectName: name,
		Host:        DefaultHost,
		Port:        DefaultPort,
		EnableGit:   true,
		now:         time.Now,
	}, nil
}

func (b *Base) Validate() error {
	err := ValidateProjectName(b.ProjectName)
	if err != nil {
		return err
	}

	err = ValidateHost(b.Host)
	if err != nil {
		return err
	}

	return ValidatePort(b.Port)
}

func (b *Base) ToContext() scafgen.Context {
	names := NamesFor(b.ProjectName)

	now := time.Now
	if b.now != nil {
		now = b.now
	}

	return scafgen.Context{
		"project_name":        b.ProjectName,
		"project_name_pascal": names.Pascal,
		"project_name_snake":  names.Snake,
		"project_name_kebab":  names.Kebab,
		"host":                b.Host,
		"port":                b.Port,
		"server_addr":         net.JoinHostPort(b.Host, strconv.Itoa(b.Port)),
		"enable_precommit":    b.EnablePrecommit,
		"enable_swagger":      b.EnableSwagger,
		"enable_git":          b.EnableGit,
		"year":                now().UTC().Year(),
		"os":                  runtime.GOOS,
		"arch":                runtime.GOARCH,
	}
}

package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/shelfview/internal/cli"
	"github.com/rshade/shelfview/internal/library"
	"github.com/rshade/shelfview/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		assert.Equal(t, "shelfview", root.Use)
		assert.Equal(t, version.GetVersion(), root.Version)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error returns 0", nil, cli.ExitCodeOK},
		{"generic error", errors.New("boom"), cli.ExitCodeError},
		{"missing book", fmt.Errorf("show: %w", library.ErrBookNotFound), cli.ExitCodeNotFound},
		{"exit error", &cli.ExitError{Code: cli.ExitCodeUsage, Err: errors.New("need --yes")}, cli.ExitCodeUsage},
		{
			"wrapped exit error",
			errors.Join(errors.New("outer"), &cli.ExitError{Code: cli.ExitCodeConfig, Err: errors.New("bad yaml")}),
			cli.ExitCodeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

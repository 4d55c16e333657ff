package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_Version(t *testing.T) {
	code := run(context.Background(), []string{"deskshell", "--version"})
	assert.Equal(t, 0, code)
}

func TestRun_InvalidConfigFile(t *testing.T) {
	code := run(context.Background(), []string{"deskshell", "--config", "testdata/invalid.json", "run"})
	assert.Equal(t, 1, code)
}

func TestCliMap_CoversRunFlags(t *testing.T) {
	for _, flag := range runCmd.Flags {
		name := flag.Names()[0]
		assert.Contains(t, cliMap, name, "flag %q is not mapped to a config key", name)
	}
}

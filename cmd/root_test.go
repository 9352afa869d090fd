package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmdRegistersMountSubcommand(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "mount" {
			found = true
		}
	}
	assert.True(t, found, "expected a registered \"mount\" subcommand")
}

func TestBindFlagsSucceeded(t *testing.T) {
	assert.NoError(t, bindErr)
}

func TestKVEndpointFlagRegistered(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("kv-endpoint")
	assert.NotNil(t, f)
	assert.Equal(t, "", f.DefValue)
}

func TestRootModeFlagDefault(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("root-mode")
	assert.NotNil(t, f)
	assert.Equal(t, "0755", f.DefValue)
}

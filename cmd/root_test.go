package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/monument-map/internal/config"
)

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "import", "imports", "classify", "rank"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestServeCmd_Flags(t *testing.T) {
	for _, name := range []string{"port", "from-files", "regions", "monuments", "mapping"} {
		assert.NotNil(t, serveCmd.Flags().Lookup(name), name)
	}
}

func TestApplyOverrides(t *testing.T) {
	c := &config.Config{Log: config.LogConfig{Level: "info"}}
	applyOverrides(c)
	assert.Equal(t, "info", c.Log.Level)

	logLevel = "debug"
	defer func() { logLevel = "" }()
	applyOverrides(c)
	assert.Equal(t, "debug", c.Log.Level)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}

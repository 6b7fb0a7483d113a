package root_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/budgea-salary/cmd/root"
	"fjacquet/budgea-salary/internal/console"
	"fjacquet/budgea-salary/internal/container"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "budgea-salary", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "Budgea")
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.True(t, root.Cmd.SilenceUsage)
}

func TestInit_Flags(t *testing.T) {
	root.Init()
	root.Init()

	for _, name := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, root.Cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCommand_InitializesContainer(t *testing.T) {
	root.Init()
	t.Setenv("GEMINI_API_KEY", "")

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("log:\n  level: warn\npdf:\n  converter: none\n"), 0600))

	original := root.ContainerOptions
	root.ContainerOptions = []container.Option{
		container.WithConsole(console.New(strings.NewReader(""), &bytes.Buffer{})),
		container.WithLogOutput(&bytes.Buffer{}),
	}
	defer func() {
		root.ContainerOptions = original
		require.NoError(t, root.Close())
		root.AppContainer = nil
		root.AppConfig = nil
	}()

	var seen *container.Container
	probe := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			seen = root.GetContainer()
			return nil
		},
	}
	root.Cmd.AddCommand(probe)
	defer root.Cmd.RemoveCommand(probe)

	root.Cmd.SetArgs([]string{"probe", "--config", configFile, "--log-level", "debug"})
	require.NoError(t, root.Cmd.ExecuteContext(context.Background()))

	require.NotNil(t, seen)
	assert.Equal(t, "debug", root.GetConfig().Log.Level, "flags win over the config file")
	assert.Equal(t, "none", root.GetConfig().PDF.Converter)
	assert.NotNil(t, root.GetLogger())
}

func TestRootCommand_BadConfigFile(t *testing.T) {
	root.Init()

	probe := &cobra.Command{Use: "probe2", RunE: func(*cobra.Command, []string) error { return nil }}
	root.Cmd.AddCommand(probe)
	defer root.Cmd.RemoveCommand(probe)

	root.Cmd.SetArgs([]string{"probe2", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	err := root.Cmd.ExecuteContext(context.Background())
	assert.Error(t, err)
}

func TestClose_WithoutContainer(t *testing.T) {
	assert.NoError(t, root.Close())
	assert.NotNil(t, root.GetLogger())
}

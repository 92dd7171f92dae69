// pkg/cobrax/topics/topics_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: fstest.MapFS
// PURPOSE: Test loading help topics and the topic-aware help command

package topics

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"dry-run.txt":       {Data: []byte("Information about dry-run mode")},
		"guide/document.md": {Data: []byte("# Document\n\nsystem.toml")},
		"option-format.md":  {Data: []byte("Output formats")},
		"notes.json":        {Data: []byte("{}")},
	}
}

func TestLoad(t *testing.T) {
	m := New(Options{})
	require.NoError(t, m.Load(testFS()))

	assert.Equal(t, []string{"document", "dry-run", "option-format"}, m.Names())

	topic, ok := m.Get("document")
	require.True(t, ok)
	assert.Equal(t, ".md", topic.Ext)
	assert.Equal(t, "# Document\n\nsystem.toml", topic.Content)

	_, ok = m.Get("notes")
	assert.False(t, ok)
}

func TestLoad_CustomExtensions(t *testing.T) {
	m := New(Options{Extensions: []string{".json"}})
	require.NoError(t, m.Load(testFS()))
	assert.Equal(t, []string{"notes"}, m.Names())
}

func TestGet_OptionPrefix(t *testing.T) {
	m := New(Options{})
	require.NoError(t, m.Load(testFS()))

	topic, ok := m.Get("format")
	require.True(t, ok)
	assert.Equal(t, "option-format", topic.Name)
}

func TestAdd(t *testing.T) {
	m := New(Options{})
	m.Add("generated", "# Generated")

	topic, ok := m.Get("generated")
	require.True(t, ok)
	assert.Equal(t, "# Generated", m.Render(topic))
}

func newRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	root := &cobra.Command{Use: "app", Short: "Test app"}
	root.AddCommand(&cobra.Command{Use: "run", Short: "Run things", Run: func(*cobra.Command, []string) {}})

	m := New(Options{})
	require.NoError(t, m.Load(testFS()))
	m.Install(root)

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	return root, out
}

func TestInstall_ShowsTopic(t *testing.T) {
	root, out := newRoot(t)
	root.SetArgs([]string{"help", "dry-run"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "Information about dry-run mode", out.String())
}

func TestInstall_ListsTopics(t *testing.T) {
	root, out := newRoot(t)
	root.SetArgs([]string{"help", "topics"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "General topics:\n  document\n  dry-run\n")
	assert.Contains(t, out.String(), "Option topics:\n  --format\n")
	assert.Contains(t, out.String(), "app help <topic>")
}

func TestInstall_FallsBackToCommandHelp(t *testing.T) {
	root, out := newRoot(t)
	root.SetArgs([]string{"help", "run"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Run things")
}

func TestInstall_UnknownTopic(t *testing.T) {
	root, _ := newRoot(t)
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetArgs([]string{"help", "nope"})

	err := root.Execute()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown help topic"))
}

func TestGlamourRenderer_PassesThroughNonMarkdown(t *testing.T) {
	r := &GlamourRenderer{Style: "notty"}
	assert.Equal(t, "plain", r.Render("plain", ".txt"))
	assert.Contains(t, r.Render("# Title", ".md"), "Title")
}

// Package topics adds help topics to a cobra application: "app help <topic>"
// prints a document that is not tied to any command. Topics are read from an
// fs.FS, usually embedded in the binary, or added programmatically.
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Topic is one help document
type Topic struct {
	Name    string
	Ext     string
	Content string
}

// Options configures a Manager
type Options struct {
	// Extensions lists the file extensions read as topics; default .md and .txt
	Extensions []string

	// Renderer formats topics; default PlainRenderer
	Renderer Renderer
}

// Manager holds the topics of one application
type Manager struct {
	topics     map[string]Topic
	extensions []string
	renderer   Renderer
}

// New creates an empty Manager.
func New(opts Options) *Manager {
	m := &Manager{
		topics:     make(map[string]Topic),
		extensions: opts.Extensions,
		renderer:   opts.Renderer,
	}
	if len(m.extensions) == 0 {
		m.extensions = []string{".md", ".txt"}
	}
	if m.renderer == nil {
		m.renderer = &PlainRenderer{}
	}
	return m
}

// Load adds every file in fsys with a known extension, named after the file
// without its extension. Subdirectories are walked.
func (m *Manager) Load(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := path.Ext(p)
		if !m.supported(ext) {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), ext)
		m.topics[name] = Topic{Name: name, Ext: ext, Content: string(content)}
		return nil
	})
}

func (m *Manager) supported(ext string) bool {
	for _, e := range m.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Add registers a generated markdown topic, replacing any topic of that name.
func (m *Manager) Add(name, content string) {
	m.topics[name] = Topic{Name: name, Ext: ".md", Content: content}
}

// Get returns a topic. Flag topics may be stored as "option-<flag>" and
// looked up by the flag name alone.
func (m *Manager) Get(name string) (Topic, bool) {
	if t, ok := m.topics[name]; ok {
		return t, true
	}
	t, ok := m.topics["option-"+name]
	return t, ok
}

// Names returns the topic names, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render returns a topic formatted by the manager's renderer.
func (m *Manager) Render(t Topic) string {
	return m.renderer.Render(t.Content, t.Ext)
}

// Install replaces root's help command with one that also knows the topics.
// "help topics" lists them.
func (m *Manager) Install(root *cobra.Command) {
	originalHelp := root.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: "Help provides help for any command or topic.\n\nTo list the topics:\n  " +
			root.Name() + " help topics",
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range root.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.Names()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				originalHelp(root, nil)
				return nil
			}
			if args[0] == "topics" {
				return m.list(out, root.Name())
			}
			if t, ok := m.Get(args[0]); ok {
				_, err := fmt.Fprint(out, m.Render(t))
				return err
			}

			target, _, err := root.Find(args)
			if err != nil || target == nil {
				return fmt.Errorf("unknown help topic %q; run '%s help topics'", args[0], root.Name())
			}
			originalHelp(target, nil)
			return nil
		},
	}

	for _, c := range root.Commands() {
		if c.Name() == "help" {
			root.RemoveCommand(c)
			break
		}
	}
	root.SetHelpCommand(helpCmd)
}

func (m *Manager) list(out io.Writer, app string) error {
	names := m.Names()
	if len(names) == 0 {
		_, err := fmt.Fprintln(out, "No help topics available.")
		return err
	}

	var general, options []string
	for _, name := range names {
		if strings.HasPrefix(name, "option-") {
			options = append(options, "--"+strings.TrimPrefix(name, "option-"))
		} else {
			general = append(general, name)
		}
	}

	var b strings.Builder
	b.WriteString("Available help topics:\n")
	if len(general) > 0 {
		b.WriteString("\nGeneral topics:\n")
		for _, name := range general {
			b.WriteString("  " + name + "\n")
		}
	}
	if len(options) > 0 {
		b.WriteString("\nOption topics:\n")
		for _, name := range options {
			b.WriteString("  " + name + "\n")
		}
	}
	fmt.Fprintf(&b, "\nUse '%s help <topic>' to read about a specific topic.\n", app)

	_, err := io.WriteString(out, b.String())
	return err
}

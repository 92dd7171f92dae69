package main

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/arthur-debert/omiros/pkg/cobrax/topics"
	"github.com/arthur-debert/omiros/pkg/system"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

func installTopics(root *cobra.Command) {
	m := topics.New(topics.Options{Renderer: topics.NewGlamourRenderer()})

	sub, err := fs.Sub(topicFiles, "topics")
	if err == nil {
		err = m.Load(sub)
	}
	if err != nil {
		// embedded files only fail to load if the binary was built wrong
		panic(err)
	}
	m.Add("macos-settings", macOSSettingsTopic())
	m.Install(root)
}

// macOSSettingsTopic documents the [macos.<section>] catalog.
func macOSSettingsTopic() string {
	var b strings.Builder
	b.WriteString("# macOS settings\n\n")
	b.WriteString("Named settings go under `[macos.<section>]` in system.toml. ")
	b.WriteString("Anything else can be set with a raw `[[defaults]]` entry.\n")

	for _, section := range system.Sections() {
		fmt.Fprintf(&b, "\n## [macos.%s]\n\n", section)
		b.WriteString("| Setting | Type | Values | defaults key |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, name := range system.Names(section) {
			s, _ := system.Lookup(section, name)
			values := "any"
			if allowed := s.AllowedValues(); len(allowed) > 0 {
				values = strings.Join(allowed, ", ")
			}
			key := s.Domain + " " + s.Key
			if s.Restart != "" {
				key += " (restarts " + s.Restart + ")"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", name, s.Type, values, key)
		}
	}
	return b.String()
}

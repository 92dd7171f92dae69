package topics

// Renderer formats topic content for the terminal
type Renderer interface {
	// Render returns content formatted for display. ext is the topic file's
	// extension, e.g. ".md".
	Render(content string, ext string) string
}

// PlainRenderer returns content unchanged
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, ext string) string {
	return content
}

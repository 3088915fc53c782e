package topics

// Renderer formats topic content for terminal display
type Renderer interface {
	// Render takes raw content and the topic file extension
	Render(content string, format string) string
}

// PlainRenderer returns content as-is
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, format string) string {
	return content
}

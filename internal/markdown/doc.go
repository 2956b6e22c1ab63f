// Package markdown discovers course documents on a filesystem and renders
// their Markdown bodies. Source satisfies interfaces.DocumentSource for any
// fs.FS (a content directory or an embed.FS); Renderer pairs front matter
// extraction with goldmark.
package markdown

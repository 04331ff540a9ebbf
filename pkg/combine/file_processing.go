package combine

import (
	"path/filepath"
	"strings"

	"aisnap/pkg/textfile"

	"go.uber.org/zap"
)

// readErrorLanguage tags the fence that carries a read failure.
const readErrorLanguage = "text"

// ProcessEntry reads one included file and renders its labeled block.
func ProcessEntry(root string, entry Entry, logger *zap.Logger) string {
	filePath := filepath.Join(root, filepath.FromSlash(entry.Path))

	content := textfile.Read(filePath)
	if !content.OK() {
		logger.Warn("Failed to read file", zap.String("filePath", filePath), zap.Error(content.Err))
	} else {
		logger.Debug("Read file content",
			zap.String("filePath", filePath),
			zap.String("encoding", content.Encoding),
			zap.Int("contentSize", len(content.Text)))
	}

	return RenderEntry(entry.Path, entry.Language, content)
}

// RenderEntry formats one file as "<path>:\n```<language>\n<content>\n```\n".
// A failed read is rendered in a text fence holding the error message.
func RenderEntry(path, language string, content textfile.Content) string {
	body := content.Text
	if !content.OK() {
		language = readErrorLanguage
		body = "Error reading file: " + content.Message()
	}

	var b strings.Builder
	b.Grow(len(path) + len(language) + len(body) + 12)
	b.WriteString(path)
	b.WriteString(":\n```")
	b.WriteString(language)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n```\n")
	return b.String()
}

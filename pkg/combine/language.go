// File: pkg/combine/language.go
package combine

import (
	"path"
	"strings"
)

// extensionLanguages maps file extensions to fence language tags.
var extensionLanguages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".java": "java",
	".go":   "go",
	".rs":   "rust",
	".rb":   "ruby",
	".cpp":  "cpp",
	".cxx":  "cpp",
	".cc":   "cpp",
	".c++":  "cpp",
	".hpp":  "cpp",
	".hxx":  "cpp",
	".h++":  "cpp",
	".h":    "c",
	".c":    "c",
	".html": "html",
	".css":  "css",
	".json": "json",
	".md":   "markdown",
	".yml":  "yaml",
	".yaml": "yaml",
	".toml": "toml",
	".sh":   "bash",
	".txt":  "text",
	".xml":  "xml",
	".sql":  "sql",
	".php":  "php",
}

// LanguageTag returns the fence language for a path based solely on its
// extension, or an empty string when the extension is unknown. Matching is
// case-sensitive and leading dots of the base name do not start an extension.
func LanguageTag(p string) string {
	return extensionLanguages[extension(p)]
}

// extension returns the extension of the last path element, treating names
// such as ".bashrc" as having none.
func extension(p string) string {
	base := strings.TrimLeft(path.Base(strings.ReplaceAll(p, `\`, "/")), ".")
	return path.Ext(base)
}

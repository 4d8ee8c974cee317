package sandbox

import "strings"

var languageAliases = map[string]string{
	"javascript": "javascript",
	"js":         "javascript",
	"python":     "python",
	"python3":    "python",
	"py":         "python",
	"java":       "java",
	"c":          "c",
	"cpp":        "cpp",
	"c++":        "cpp",
	"go":         "go",
	"golang":     "go",
	"rust":       "rust",
	"ruby":       "ruby",
	"php":        "php",
	"typescript": "typescript",
	"ts":         "typescript",
}

var languageExtensions = map[string]string{
	"javascript": ".js",
	"python":     ".py",
	"java":       ".java",
	"c":          ".c",
	"cpp":        ".cpp",
	"go":         ".go",
	"rust":       ".rs",
	"ruby":       ".rb",
	"php":        ".php",
	"typescript": ".ts",
}

// NormalizeLanguage maps user-facing names onto sandbox runtime names.
// Unknown names are passed through lowercased.
func NormalizeLanguage(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if name, ok := languageAliases[lang]; ok {
		return name
	}
	return lang
}

// FileName is the source file name for a normalized language.
func FileName(language string) string {
	if ext, ok := languageExtensions[language]; ok {
		return "main" + ext
	}
	return "main.txt"
}

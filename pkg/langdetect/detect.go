// Package langdetect guesses the language of code block content so an
// untagged fence can be labelled in reports and exports.
package langdetect

import (
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Unknown is returned when no language could be guessed with confidence.
const Unknown = "text"

// classifierCandidates limits the enry classifier to languages people
// commonly paste into notes.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// probe is a cheap content check tried before the classifier.
type probe struct {
	lang  string
	match func(code, trimmed string) bool
}

var probes = []probe{
	{"go", func(_, t string) bool { return strings.HasPrefix(t, "package ") }},
	{"python", isPython},
	{"html", func(_, t string) bool {
		lower := strings.ToLower(t)
		return containsAny(lower, "<!doctype html", "<html", "<head>", "<body>")
	}},
	{"json", func(_, t string) bool {
		return (strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[")) && strings.Contains(t, `"`)
	}},
	{"dockerfile", func(c, t string) bool {
		return strings.HasPrefix(t, "FROM ") ||
			(strings.Contains(c, "\nFROM ") && strings.Contains(c, "\nRUN ")) ||
			(strings.Contains(c, "WORKDIR ") && strings.Contains(c, "COPY "))
	}},
	{"sql", func(_, t string) bool {
		upper := strings.ToUpper(t)
		for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(upper, kw) {
				return true
			}
		}
		return false
	}},
	{"rust", func(c, _ string) bool { return containsAny(c, "fn main()", "println!", "let mut ") }},
	{"javascript", func(c, _ string) bool { return containsAny(c, "=>", "const ", "let ", "console.log") }},
	{"yaml", func(c, _ string) bool { return yamlPairs(c) >= 2 }},
}

// Detect returns a fence tag for code, or Unknown.
func Detect(code string) string {
	if strings.TrimSpace(code) == "" {
		return Unknown
	}
	if lang, safe := enry.GetLanguageByShebang([]byte(code)); safe {
		return fenceTag(lang)
	}
	trimmed := strings.TrimSpace(code)
	for _, p := range probes {
		if p.match(code, trimmed) {
			return p.lang
		}
	}
	if lang, safe := enry.GetLanguageByClassifier([]byte(code), classifierCandidates); safe && lang != "" {
		return fenceTag(lang)
	}
	return Unknown
}

// Resolve returns declared when it is set and otherwise the guess for code.
func Resolve(declared, code string) string {
	if declared != "" {
		return declared
	}
	return Detect(code)
}

func isPython(code, trimmed string) bool {
	if strings.Contains(code, "def ") && strings.Contains(code, "):") {
		return true
	}
	if strings.Contains(code, "import ") && !strings.Contains(code, "import (") &&
		(strings.Contains(code, "from ") || strings.HasPrefix(trimmed, "import ")) {
		return true
	}
	return containsAny(code, "__name__", "__main__")
}

// yamlPairs counts lines shaped like "key: value" or "- item".
func yamlPairs(code string) int {
	n := 0
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, ": ") && !containsAny(line, "(", "{") && !strings.HasPrefix(line, `"`) {
			n++
		}
		if strings.HasPrefix(line, "- ") {
			n++
		}
	}
	return n
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func fenceTag(lang string) string {
	if lang == "Shell" {
		return "bash"
	}
	return strings.ToLower(lang)
}

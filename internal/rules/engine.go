package rules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ErrInvalidRule reports a line that is not a `from => to` substitution.
var ErrInvalidRule = errors.New("invalid substitution rule")

const separator = "=>"

var whitespace = regexp.MustCompile(`\s+`)

type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

// Engine implements ports.TranscriptRules.
type Engine struct {
	substitutions []substitution
}

// Load reads rules from path. A blank path or a missing file yields an engine
// that only tidies whitespace.
func Load(path string) (*Engine, error) {
	if strings.TrimSpace(path) == "" {
		return &Engine{}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Engine{}, nil
		}
		return nil, fmt.Errorf("open rules file %q: %w", path, err)
	}
	defer file.Close()

	engine, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("rules file %q: %w", path, err)
	}
	return engine, nil
}

// Parse compiles rules from r, one substitution per line:
//
//	# comments and blank lines are ignored
//	asha sphere => AshaSphere
//	gonna => going to
//
// Phrases match whole words, ignoring case. Rules apply once each, in file
// order, so a rule sees the output of the rules above it.
func Parse(r io.Reader) (*Engine, error) {
	engine := &Engine{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sub, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		engine.substitutions = append(engine.substitutions, sub)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return engine, nil
}

func parseLine(line string) (substitution, error) {
	from, to, ok := strings.Cut(line, separator)
	if !ok {
		return substitution{}, fmt.Errorf("%w: missing %q", ErrInvalidRule, separator)
	}
	words := strings.Fields(from)
	if len(words) == 0 {
		return substitution{}, fmt.Errorf("%w: empty phrase", ErrInvalidRule)
	}
	quoted := make([]string, len(words))
	for i, word := range words {
		quoted[i] = regexp.QuoteMeta(word)
	}
	expr := `(?i)(^|\b|\s)` + strings.Join(quoted, `\s+`) + `($|\b|\s)`
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return substitution{}, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return substitution{pattern: pattern, replacement: strings.TrimSpace(to)}, nil
}

// Len reports how many substitutions are loaded.
func (e *Engine) Len() int {
	return len(e.substitutions)
}

// Apply rewrites text and collapses runs of whitespace.
func (e *Engine) Apply(text string) (string, error) {
	result := text
	for _, sub := range e.substitutions {
		replacement := strings.ReplaceAll(sub.replacement, "$", "$$")
		result = sub.pattern.ReplaceAllString(result, "${1}"+replacement+"${2}")
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(result, " ")), nil
}

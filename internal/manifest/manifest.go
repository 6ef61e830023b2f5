// Package manifest parses a project's forma.toml: the `[package]` metadata
// block, its `[capabilities]` grant list, and its `[deps]` table of module
// path -> version/path entries.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Manifest is the parsed form of forma.toml.
type Manifest struct {
	Name         string
	Version      string
	Entry        string // defaults to "main.forma"
	Capabilities []string
	Deps         map[string]string
}

func New() *Manifest {
	return &Manifest{Entry: "main.forma", Deps: map[string]string{}}
}

// Parse reads a hand-rolled subset of TOML sufficient for forma.toml:
// `[section]` headers and `key = value` lines, values either bare strings,
// quoted strings, or bracketed string arrays. No nested tables, no inline
// tables, no multi-line strings — deliberately narrow, matching the shape
// forma.toml actually needs (spec §8).
func Parse(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	m := New()
	section := ""
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("%s:%d: malformed section header %q", path, lineNo, line)
			}
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		key, val, ok := splitKeyValue(line)
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected key = value, got %q", path, lineNo, line)
		}
		if err := m.apply(section, key, val); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func splitKeyValue(line string) (key, val string, ok bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

func (m *Manifest) apply(section, key, val string) error {
	switch section {
	case "package":
		switch key {
		case "name":
			s, err := unquote(val)
			if err != nil {
				return err
			}
			m.Name = s
		case "version":
			s, err := unquote(val)
			if err != nil {
				return err
			}
			m.Version = s
		case "entry":
			s, err := unquote(val)
			if err != nil {
				return err
			}
			m.Entry = s
		}
	case "capabilities":
		items, err := unquoteArray(val)
		if err != nil {
			return err
		}
		if key == "grant" {
			m.Capabilities = items
		}
	case "deps":
		s, err := unquote(val)
		if err != nil {
			return err
		}
		m.Deps[key] = s
	default:
		return fmt.Errorf("unknown section %q", section)
	}
	return nil
}

func unquote(val string) (string, error) {
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		s, err := strconv.Unquote(val)
		if err != nil {
			return "", fmt.Errorf("invalid string %q: %w", val, err)
		}
		return s, nil
	}
	return val, nil
}

func unquoteArray(val string) ([]string, error) {
	if !strings.HasPrefix(val, "[") || !strings.HasSuffix(val, "]") {
		return nil, fmt.Errorf("expected array, got %q", val)
	}
	inner := strings.TrimSpace(val[1 : len(val)-1])
	if inner == "" {
		return nil, nil
	}
	var out []string
	for _, part := range strings.Split(inner, ",") {
		s, err := unquote(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

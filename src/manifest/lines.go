package manifest

import "strings"

// lineIndex maps (table, key) pairs to their declaring line so parsed
// dependencies keep a position even though the TOML decoder flattens the
// document. The TOML decoder validates structure; this pass only needs to
// be right for well-formed input.
type lineIndex struct {
	entries []lineEntry
}

type lineEntry struct {
	table    string
	key      string
	line     int
	disabled bool
}

var depTableNames = []string{"dev-dependencies", "build-dependencies", "dependencies"}

// buildLineIndex scans raw manifest lines, tracking the current table
// header, and records each dependency key with its line and opt-out
// marker.
func buildLineIndex(content []byte) *lineIndex {
	idx := &lineIndex{}
	table := ""

	for i, line := range strings.Split(string(content), "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(trimmed, "[") {
			header := strings.Trim(strings.SplitN(trimmed, "#", 2)[0], " \t[]")
			table = header
			// [dependencies.serde] declares the key in its header.
			for _, name := range depTableNames {
				if rest, ok := strings.CutPrefix(header, name+"."); ok {
					idx.entries = append(idx.entries, lineEntry{
						table:    name,
						key:      unquoteKey(rest),
						line:     lineNo,
						disabled: hasDisableMarker(line),
					})
					break
				}
			}
			continue
		}

		class := tableClass(table)
		if class == "" {
			continue
		}
		eq := strings.Index(trimmed, "=")
		if eq <= 0 {
			continue
		}
		key := unquoteKey(strings.TrimSpace(trimmed[:eq]))
		if key == "" {
			continue
		}
		idx.entries = append(idx.entries, lineEntry{
			table:    class,
			key:      key,
			line:     lineNo,
			disabled: hasDisableMarker(line),
		})
	}
	return idx
}

// lookup returns the first recorded entry for a key in a table class.
func (idx *lineIndex) lookup(table, key string) *lineEntry {
	for i := range idx.entries {
		e := &idx.entries[i]
		if e.table == table && e.key == key {
			return e
		}
	}
	return nil
}

// tableClass maps a header to the dependency table it declares, handling
// [target.'cfg(...)'.dependencies] forms by suffix.
func tableClass(header string) string {
	for _, name := range depTableNames {
		if header == name || strings.HasSuffix(header, "."+name) {
			return name
		}
	}
	return ""
}

func unquoteKey(key string) string {
	return strings.Trim(key, `"'`)
}

func hasDisableMarker(line string) bool {
	hash := strings.Index(line, "#")
	return hash >= 0 && strings.Contains(line[hash:], DisableMarker)
}

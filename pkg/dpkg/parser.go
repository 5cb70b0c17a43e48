package dpkg

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

var wantFlags = map[string]byte{
	"unknown":   WantUnknown,
	"install":   WantInstall,
	"hold":      WantHold,
	"deinstall": WantDeinstall,
	"purge":     WantPurge,
}

var stateFlags = map[string]byte{
	"not-installed":    StateNotInstalled,
	"config-files":     StateConfigFiles,
	"half-installed":   StateHalfInstalled,
	"unpacked":         StateUnpacked,
	"half-configured":  StateHalfConfigured,
	"triggers-awaited": StateTriggersAwaited,
	"triggers-pending": StateTriggersPending,
	"installed":        StateInstalled,
}

// ParseStatus parses a dpkg status file (/var/lib/dpkg/status)
func ParseStatus(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // Handle large descriptions

	var records []Record
	var current *Record

	flush := func() {
		if current != nil && current.Name != "" {
			records = append(records, *current)
		}
		current = nil
	}

	for scanner.Scan() {
		line := scanner.Text()

		// Empty line indicates end of package stanza
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		// Continuation lines only extend the long description, which we drop
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)

		if current == nil {
			current = &Record{}
		}

		switch field {
		case "Package":
			current.Name = value
		case "Status":
			current.Status = statusAbbrev(value)
		case "Version":
			current.Version = value
		case "Architecture":
			current.Arch = value
		case "Description":
			current.Description = value
		}
	}

	// Don't forget the last package
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning status file: %w", err)
	}

	return records, nil
}

// statusAbbrev converts "install ok installed" into "ii", the way dpkg -l
// prints it. Unknown words map to '?'.
func statusAbbrev(value string) string {
	words := strings.Fields(value)
	if len(words) != 3 {
		return "??"
	}

	want, ok := wantFlags[words[0]]
	if !ok {
		want = '?'
	}
	state, ok := stateFlags[words[2]]
	if !ok {
		state = '?'
	}
	return string([]byte{want, state})
}

// ParseQuery parses dpkg-query output produced with QueryFormat
func ParseQuery(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []Record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, "\t", 5)
		if len(parts) != 5 {
			return nil, fmt.Errorf("line %d: expected 5 tab separated fields, got %d", lineNo, len(parts))
		}

		status := strings.TrimSpace(parts[0])
		if len(status) > 2 {
			status = status[:2] // drop the error flag column
		}

		records = append(records, Record{
			Status:      status,
			Name:        parts[1],
			Version:     parts[2],
			Arch:        parts[3],
			Description: parts[4],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning dpkg-query output: %w", err)
	}

	return records, nil
}

// Installed keeps the packages in the installed family of states and sorts
// them the way dpkg -l does (by name, then architecture)
func Installed(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.IsInstalled() {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Arch < out[j].Arch
	})
	return out
}

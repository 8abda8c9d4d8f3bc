// Package build describes the binary that is running: version control details
// injected with -ldflags, or else whatever the Go toolchain embedded.
package build

import (
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"strings"
)

// Info contains build metadata.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"` //nolint:tagliatelle
	GitDate   string `json:"git_date"`   //nolint:tagliatelle
	Modified  bool   `json:"modified"`
	GoVersion string `json:"go_version"` //nolint:tagliatelle
}

// Parse deserializes a JSON string, typically set with -ldflags -X, into build Info.
// Returns (nil, false) if the input is empty, "{}", or fails to parse.
func Parse(js string) (*Info, bool) {
	if js == "" || js == "{}" {
		return nil, false
	}

	var info Info

	err := json.Unmarshal([]byte(js), &info)
	if err != nil {
		slog.Warn("Failed to parse build info from JSON",
			"data", js,
			"error", err)

		return nil, false
	}

	return &info, true
}

// Current returns the injected info when js parses, and falls back to the
// module and VCS data the Go toolchain embeds in the binary.
func Current(js string) *Info {
	if info, ok := Parse(js); ok {
		return info
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return &Info{Version: "unknown"}
	}

	return fromBuildInfo(bi)
}

func fromBuildInfo(bi *debug.BuildInfo) *Info {
	info := &Info{
		Version:   bi.Main.Version,
		GoVersion: bi.GoVersion,
	}

	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.GitCommit = setting.Value
		case "vcs.time":
			info.GitDate = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}

	return info
}

// String renders the info on one line.
func (i *Info) String() string {
	parts := []string{orUnknown(i.Version)}

	if i.GitCommit != "" {
		commit := i.GitCommit
		if len(commit) > 12 { //nolint:mnd // short hash
			commit = commit[:12]
		}

		if i.Modified {
			commit += "-dirty"
		}

		parts = append(parts, "commit "+commit)
	}

	if i.GitDate != "" {
		parts = append(parts, "built from "+i.GitDate)
	}

	if i.GoVersion != "" {
		parts = append(parts, i.GoVersion)
	}

	return strings.Join(parts, ", ")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}

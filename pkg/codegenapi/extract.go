package codegenapi

import (
	"regexp"
	"strings"
)

var prURLPattern = regexp.MustCompile(`https://github\.com/[^/\s]+/[^/\s]+/pull/\d+`)

// ExtractPRURL finds the pull request URL produced by an implementation run.
// The run result is checked first, then the log lines. Empty means the run
// created no PR.
func ExtractPRURL(result string, logs []string) string {
	if url := prURLPattern.FindString(result); url != "" {
		return url
	}
	for _, line := range logs {
		if !strings.Contains(strings.ToLower(line), "pull request") {
			continue
		}
		if url := prURLPattern.FindString(line); url != "" {
			return url
		}
	}
	// Last resort: any PR URL anywhere in the logs.
	for _, line := range logs {
		if url := prURLPattern.FindString(line); url != "" {
			return url
		}
	}
	return ""
}

// ExtractPlan recovers the plan text from a completed plan run. The run result
// is authoritative; older runs only emitted the plan into their logs, so a
// blank result falls back to scanning for the plan section. Empty means the
// run produced nothing usable.
func ExtractPlan(result string, logs []string) string {
	if strings.TrimSpace(result) != "" {
		return result
	}

	var section []string
	inSection := false
	for _, line := range logs {
		switch {
		case strings.Contains(strings.ToLower(line), "implementation plan"):
			inSection = true
		case inSection && strings.TrimSpace(line) != "":
			section = append(section, line)
		case inSection:
			return strings.Join(section, "\n")
		}
	}
	return strings.Join(section, "\n")
}

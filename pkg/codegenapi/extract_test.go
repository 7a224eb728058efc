package codegenapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPRURL(t *testing.T) {
	assert.Equal(t,
		"https://github.com/acme/demo/pull/42",
		ExtractPRURL("Opened https://github.com/acme/demo/pull/42 for review", nil))

	// Result wins over logs.
	assert.Equal(t,
		"https://github.com/acme/demo/pull/1",
		ExtractPRURL("see https://github.com/acme/demo/pull/1", []string{"pull request: https://github.com/acme/demo/pull/2"}))

	// Lines mentioning the pull request are preferred over incidental URLs.
	logs := []string{
		"cloned https://github.com/acme/demo/pull/9 earlier output noise",
		"Created pull request https://github.com/acme/demo/pull/10",
	}
	assert.Equal(t, "https://github.com/acme/demo/pull/10", ExtractPRURL("", logs))

	// Any URL in the logs as a last resort.
	assert.Equal(t,
		"https://github.com/acme/demo/pull/3",
		ExtractPRURL("", []string{"done: https://github.com/acme/demo/pull/3"}))

	assert.Empty(t, ExtractPRURL("all done, no link", []string{"nothing here"}))
	assert.Empty(t, ExtractPRURL("", nil))
}

func TestExtractPlan(t *testing.T) {
	assert.Equal(t, "the result text", ExtractPlan("the result text", []string{"ignored"}))

	logs := []string{
		"booting",
		"Here is the Implementation Plan:",
		"1. change the schema",
		"2. add the endpoint",
		"",
		"trailing noise",
	}
	assert.Equal(t, "1. change the schema\n2. add the endpoint", ExtractPlan("", logs))

	// Section runs to the end when no blank line terminates it.
	logs = []string{"implementation plan", "only step"}
	assert.Equal(t, "only step", ExtractPlan("", logs))

	assert.Empty(t, ExtractPlan("   ", []string{"no plan here"}))
	assert.Empty(t, ExtractPlan("", nil))
}

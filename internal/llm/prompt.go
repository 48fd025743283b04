package llm

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultSystemPrompt = "You are a helpful assistant for generating git commit messages."
	defaultUserPreamble = "Generate a concise and meaningful git commit message based on the following staged changes:\n\n"
)

// Prompt is the fixed instruction pair sent with every diff.
type Prompt struct {
	System       string `yaml:"system"`
	UserPreamble string `yaml:"user_preamble"`
}

func DefaultPrompt() Prompt {
	return Prompt{System: defaultSystemPrompt, UserPreamble: defaultUserPreamble}
}

// LoadPrompt reads a YAML prompt file. Empty fields keep the built-in text.
func LoadPrompt(path string) (Prompt, error) {
	prompt := DefaultPrompt()
	if strings.TrimSpace(path) == "" {
		return prompt, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return prompt, fmt.Errorf("unable to read prompt template %s: %w", path, err)
	}

	var override Prompt
	if err := yaml.Unmarshal(content, &override); err != nil {
		return prompt, fmt.Errorf("unable to parse prompt template %s: %w", path, err)
	}

	if override.System != "" {
		prompt.System = override.System
	}
	if override.UserPreamble != "" {
		prompt.UserPreamble = override.UserPreamble
	}
	return prompt, nil
}

// UserMessage embeds the diff verbatim after the preamble.
func (p Prompt) UserMessage(diff string) string {
	return p.UserPreamble + diff
}

package llm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ClaudeCodeConfig configures the provider that shells out to the claude CLI
type ClaudeCodeConfig struct {
	Binary string // defaults to "claude"
	Model  string // passed as --model when set
}

// ClaudeCodeProvider runs prompts through `claude -p`. It needs no API key
// because the CLI carries its own login.
type ClaudeCodeProvider struct {
	binary string
	model  string
}

// NewClaudeCodeProvider creates the claude CLI provider
func NewClaudeCodeProvider(cfg ClaudeCodeConfig) *ClaudeCodeProvider {
	if cfg.Binary == "" {
		cfg.Binary = "claude"
	}
	return &ClaudeCodeProvider{binary: cfg.Binary, model: cfg.Model}
}

// Available reports whether the CLI can be found on PATH
func (p *ClaudeCodeProvider) Available() bool {
	_, err := exec.LookPath(p.binary)
	return err == nil
}

func (p *ClaudeCodeProvider) args(prompt string) []string {
	args := []string{"-p", prompt, "--output-format", "text"}
	if p.model != "" {
		args = append(args, "--model", p.model)
	}
	return args
}

// GenerateText implements Provider. Stdin is left unattached so the CLI
// never waits for input.
func (p *ClaudeCodeProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binary, p.args(prompt)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("claude CLI failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("claude CLI failed: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Name implements Provider
func (p *ClaudeCodeProvider) Name() string {
	return ProviderClaudeCode
}

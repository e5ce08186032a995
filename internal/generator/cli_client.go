package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandClient runs a local model command (for example
// "ollama run qwen2.5:0.5b") with the prompt on stdin and reads the reply
// from stdout. No API key, no network.
type CommandClient struct {
	command []string
}

func NewCommandClient(command string) (*CommandClient, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("local model command is empty")
	}
	return &CommandClient{command: fields}, nil
}

func (c *CommandClient) ModelID() string { return strings.Join(c.command, " ") }

func (c *CommandClient) Complete(ctx context.Context, req CompletionRequest) (*LLMResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.command[0], c.command[1:]...)
	cmd.Stdin = strings.NewReader(req.Prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newGenerationError(CauseUnavailable,
			fmt.Errorf("local model command failed: %w\nstderr: %s", err, strings.TrimSpace(stderr.String())))
	}

	responseText := strings.TrimSpace(stdout.String())
	if responseText == "" {
		return nil, newGenerationError(CauseUnavailable, errors.New("local model command returned empty response"))
	}

	return &LLMResponse{
		Content: responseText,
		Model:   c.ModelID(),
	}, nil
}

// Package envelope composes encryption layers into an ordered chain.
//
// A sealed value records the stages it passed through:
//
//	env1:local,kms:<payload>
//
// Opening verifies the recorded stage list against the chain before any
// layer is unwrapped, then unwraps in reverse order.
package envelope

import (
	"context"
	"fmt"
	"strings"

	"github.com/Layr-Labs/social-custody-go/pkg/failures"
)

const formatVersion = "env1"

// Stage is one encryption layer. Open returns an empty string, not an error,
// when the input was not sealed by this stage.
type Stage interface {
	Name() string
	Seal(ctx context.Context, plaintext string) (string, error)
	Open(ctx context.Context, ciphertext string) (string, error)
}

type Chain struct {
	stages []Stage
}

func NewChain(stages ...Stage) (*Chain, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("envelope chain needs at least one stage")
	}
	seen := make(map[string]bool, len(stages))
	for _, s := range stages {
		name := s.Name()
		if name == "" || strings.ContainsAny(name, ",:") {
			return nil, fmt.Errorf("invalid stage name %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate stage %q", name)
		}
		seen[name] = true
	}
	return &Chain{stages: stages}, nil
}

// StageNames returns the stage names in sealing order.
func (c *Chain) StageNames() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}
	return names
}

func (c *Chain) Seal(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", failures.UserInput("nothing to seal")
	}
	payload := plaintext
	for _, s := range c.stages {
		out, err := s.Seal(ctx, payload)
		if err != nil {
			return "", fmt.Errorf("envelope stage %s failed to seal: %w", s.Name(), err)
		}
		if out == "" {
			return "", failures.New(failures.KindOperationFailed, "envelope stage %s produced no output", s.Name())
		}
		payload = out
	}
	return fmt.Sprintf("%s:%s:%s", formatVersion, strings.Join(c.StageNames(), ","), payload), nil
}

func (c *Chain) Open(ctx context.Context, sealed string) (string, error) {
	parts := strings.SplitN(sealed, ":", 3)
	if len(parts) != 3 || parts[0] != formatVersion {
		return "", failures.Forbidden("unrecognized envelope format")
	}

	recorded := strings.Split(parts[1], ",")
	expected := c.StageNames()
	if len(recorded) != len(expected) {
		return "", failures.Forbidden("envelope has %d stages, chain has %d", len(recorded), len(expected))
	}
	for i := range expected {
		if recorded[i] != expected[i] {
			return "", failures.Forbidden("envelope stage %d is %q, chain expects %q", i, recorded[i], expected[i])
		}
	}

	payload := parts[2]
	for i := len(c.stages) - 1; i >= 0; i-- {
		s := c.stages[i]
		out, err := s.Open(ctx, payload)
		if err != nil {
			return "", fmt.Errorf("envelope stage %s failed to open: %w", s.Name(), err)
		}
		if out == "" {
			return "", failures.Forbidden("envelope stage %s could not open the payload", s.Name())
		}
		payload = out
	}
	return payload, nil
}

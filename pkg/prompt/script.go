package prompt

import (
	"context"
	"fmt"
)

// Script is a Driver that replays canned answers in order. It lets commands
// that prompt run unattended, e.g. in tests or piped invocations.
type Script struct {
	Selections []int
	Confirms   []bool
	Inputs     []string

	// Asked records every prompt message in order.
	Asked []string
}

var _ Driver = (*Script)(nil)

func (s *Script) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.Asked = append(s.Asked, cfg.Message)
	if len(cfg.Options) == 0 {
		return 0, ErrNoOptions
	}
	if len(s.Selections) == 0 {
		return 0, fmt.Errorf("prompt: no scripted answer for %q", cfg.Message)
	}
	choice := s.Selections[0]
	s.Selections = s.Selections[1:]
	if choice < 0 || choice >= len(cfg.Options) {
		return 0, fmt.Errorf("prompt: scripted choice %d out of range for %q", choice, cfg.Message)
	}
	return choice, nil
}

func (s *Script) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.Asked = append(s.Asked, cfg.Message)
	if len(s.Confirms) == 0 {
		return cfg.Default, nil
	}
	answer := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return answer, nil
}

func (s *Script) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.Asked = append(s.Asked, cfg.Message)
	answer := cfg.Default
	if len(s.Inputs) > 0 {
		answer = s.Inputs[0]
		s.Inputs = s.Inputs[1:]
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

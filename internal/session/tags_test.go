// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "testing"

func TestClassifyPrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   []string
	}{
		{"code keyword", "review my code please", []string{TagCoding}},
		{"bug keyword", "there is a BUG here", []string{TagCoding}},
		{"programming keyword", "programming question", []string{TagCoding}},
		{"idea keyword", "I have an idea", []string{TagIdeas}},
		{"brainstorm keyword", "let's Brainstorm", []string{TagIdeas}},
		{"help keyword", "help me out", []string{TagSupport}},
		{"problem keyword", "a problem occurred", []string{TagSupport}},
		{"multiple rules", "help me debug this code", []string{TagCoding, TagSupport}},
		{"one tag per rule", "code code bug programming", []string{TagCoding}},
		{"substring match", "decode this", []string{TagCoding}},
		{"no match", "what is the capital of France", nil},
		{"empty prompt", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyPrompt(tt.prompt)
			if len(got) != len(tt.want) {
				t.Fatalf("ClassifyPrompt(%q) = %v, want %v", tt.prompt, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ClassifyPrompt(%q) = %v, want %v", tt.prompt, got, tt.want)
				}
			}
		})
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "strings"

// Tag names assigned by prompt classification.
const (
	TagCoding  = "Coding"
	TagIdeas   = "Ideas"
	TagSupport = "Support"
)

// tagRules maps prompt keywords to the tag they suggest. Matching is
// case-insensitive substring containment over the raw prompt.
var tagRules = []struct {
	keywords []string
	tag      string
}{
	{[]string{"code", "programming", "bug"}, TagCoding},
	{[]string{"idea", "brainstorm"}, TagIdeas},
	{[]string{"help", "problem"}, TagSupport},
}

// ClassifyPrompt returns the tags suggested by a prompt's keywords, at most
// one per rule, in rule order. Most prompts yield none.
func ClassifyPrompt(prompt string) []string {
	lower := strings.ToLower(prompt)

	var tags []string
	for _, rule := range tagRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, rule.tag)
				break
			}
		}
	}
	return tags
}

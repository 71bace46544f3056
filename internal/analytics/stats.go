// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package analytics

import (
	"sort"
	"time"

	"github.com/syntx-system/syntx-tui/internal/model"
)

// =============================================================================
// STATS TYPES
// =============================================================================

// Stats summarizes the conversation list.
type Stats struct {
	Conversations int
	Pinned        int
	Messages      int
	UserMessages  int
	Replies       int
	ReactionsUp   int
	ReactionsDown int

	// TagCounts maps each tag to the number of conversations carrying it.
	TagCounts map[string]int

	// AvgMessagesPerConversation is 0 when there are no conversations.
	AvgMessagesPerConversation float64

	// OldestCreated and NewestUpdated are zero when there are no
	// conversations.
	OldestCreated time.Time
	NewestUpdated time.Time

	// BusiestTitle names the conversation with the most messages.
	BusiestTitle    string
	BusiestMessages int
}

// TagCount pairs a tag with its conversation count, for sorted display.
type TagCount struct {
	Tag   string
	Count int
}

// =============================================================================
// COMPUTATION
// =============================================================================

// Compute derives stats from a conversation list.
func Compute(conversations []*model.Conversation) Stats {
	stats := Stats{
		Conversations: len(conversations),
		TagCounts:     make(map[string]int),
	}

	for _, conv := range conversations {
		if conv.Pinned {
			stats.Pinned++
		}
		for _, tag := range conv.Tags {
			stats.TagCounts[tag]++
		}

		stats.Messages += len(conv.Messages)
		for _, msg := range conv.Messages {
			switch msg.Role {
			case model.RoleUser:
				stats.UserMessages++
			case model.RoleAssistant:
				stats.Replies++
			}
			switch msg.Reaction {
			case model.ReactionUp:
				stats.ReactionsUp++
			case model.ReactionDown:
				stats.ReactionsDown++
			}
		}

		if len(conv.Messages) > stats.BusiestMessages {
			stats.BusiestTitle = conv.Title
			stats.BusiestMessages = len(conv.Messages)
		}

		if stats.OldestCreated.IsZero() || conv.CreatedAt.Before(stats.OldestCreated) {
			stats.OldestCreated = conv.CreatedAt
		}
		if conv.UpdatedAt.After(stats.NewestUpdated) {
			stats.NewestUpdated = conv.UpdatedAt
		}
	}

	if stats.Conversations > 0 {
		stats.AvgMessagesPerConversation = float64(stats.Messages) / float64(stats.Conversations)
	}

	return stats
}

// TopTags returns the tags sorted by conversation count, most used first.
// Ties break alphabetically so the order is stable.
func (s Stats) TopTags() []TagCount {
	tags := make([]TagCount, 0, len(s.TagCounts))
	for tag, count := range s.TagCounts {
		tags = append(tags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	return tags
}

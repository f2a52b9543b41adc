package model

import (
	"strings"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
)

// videoText is the text representation embedded and matched for relevance.
func videoText(v domain.VideoRecord) string {
	parts := make([]string, 0, 4)
	if v.Description != "" {
		parts = append(parts, v.Description)
	}
	if len(v.Hashtags) > 0 {
		tags := make([]string, len(v.Hashtags))
		for i, h := range v.Hashtags {
			tags[i] = "#" + h
		}
		parts = append(parts, strings.Join(tags, " "))
	}
	if v.MusicTitle != "" {
		parts = append(parts, "Music: "+v.MusicTitle)
	}
	if v.Author != "" {
		parts = append(parts, "By @"+v.Author)
	}
	return strings.Join(parts, " ")
}

type matchKind int

const (
	noMatch matchKind = iota
	partialMatch
	fullMatch
)

// matchTag reports whether tag occurs verbatim in the lowercased text, or
// failing that whether any underscore-separated component of it does.
func matchTag(lowerText, tag string) matchKind {
	t := strings.ToLower(tag)
	if t == "" {
		return noMatch
	}
	if strings.Contains(lowerText, t) {
		return fullMatch
	}
	for _, part := range strings.Split(t, "_") {
		if part != "" && strings.Contains(lowerText, part) {
			return partialMatch
		}
	}
	return noMatch
}

func topTags(tags []domain.UserTag, n int) []domain.UserTag {
	if len(tags) > n {
		return tags[:n]
	}
	return tags
}

package brand

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func NewPolicy(url, content string) *Policy {
	return &Policy{URL: url, Content: Truncate(content, MaxContentChars)}
}

func NewAbout(url, content string) *About {
	return &About{URL: url, Content: Truncate(content, MaxContentChars)}
}

// NewFAQ builds an entry whose answer is cut to answerCap runes.
func NewFAQ(question, answer, url string, answerCap int) FAQ {
	return FAQ{
		Question: Truncate(question, MaxContentChars),
		Answer:   Truncate(answer, answerCap),
		URL:      url,
	}
}

// FAQSet accumulates FAQ entries, dropping repeats and anything past MaxFAQs.
// Two entries are the same when the lower-cased first 200 runes of both the
// question and the answer match.
type FAQSet struct {
	seen  map[string]struct{}
	items []FAQ
}

func NewFAQSet() *FAQSet {
	return &FAQSet{seen: make(map[string]struct{})}
}

// Add reports whether f was kept.
func (s *FAQSet) Add(f FAQ) bool {
	if f.Question == "" || f.Answer == "" || len(s.items) >= MaxFAQs {
		return false
	}
	key := faqKey(f)
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, f)
	return true
}

func (s *FAQSet) Len() int { return len(s.items) }

func (s *FAQSet) Full() bool { return len(s.items) >= MaxFAQs }

// Items returns a copy of the kept entries in insertion order.
func (s *FAQSet) Items() []FAQ {
	out := make([]FAQ, len(s.items))
	copy(out, s.items)
	return out
}

func faqKey(f FAQ) string {
	return strings.ToLower(Truncate(f.Question, 200)) + "\x00" + strings.ToLower(Truncate(f.Answer, 200))
}

// UniqueStrings drops empty values and repeats, keeping first occurrences.
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// CapStrings returns at most n leading values.
func CapStrings(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}

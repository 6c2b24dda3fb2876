package services

import (
	"fmt"
	"regexp"
	"strings"
)

// MessagePattern is a sentence level rule of the message pattern table
type MessagePattern struct {
	Category string
	Pattern  *regexp.Regexp
	// Template receives the matched sentence as its only verb
	Template string
}

// DefaultMessagePatterns returns the built-in sentence rules, in reporting order
func DefaultMessagePatterns() []MessagePattern {
	return []MessagePattern{
		{
			Category: "urgency",
			Pattern:  regexp.MustCompile(`urgent|immediately|now|asap|hurry|quickly|limited time|act fast`),
			Template: `Urgent language detected: "%s"`,
		},
		{
			Category: "sensitive_data",
			Pattern:  regexp.MustCompile(`verify|confirm|update|provide|send|enter.*?(password|account|card|bank|ssn|details|information)`),
			Template: `Request for sensitive information: "%s"`,
		},
		{
			Category: "prize",
			Pattern:  regexp.MustCompile(`(won|winner|congratulations|prize|reward|claim|selected|chosen).*?(money|cash|gift|free|\$|₹|rs)`),
			Template: `Suspicious prize/reward claim: "%s"`,
		},
		{
			Category: "account_threat",
			Pattern:  regexp.MustCompile(`(suspend|lock|close|block|terminate|expire|cancel)\w*.*?(account|access|service)|(account|access|service).*?(suspend|lock|close|block|terminate|expire|cancel)`),
			Template: `Threatening language: "%s"`,
		},
		{
			Category: "impersonation",
			Pattern:  regexp.MustCompile(`official|legitimate|authorized|verified|trusted.*?(company|bank|service|organization)`),
			Template: `Possible impersonation attempt: "%s"`,
		},
	}
}

// URLPattern is a rule applied to each URL found in a message
type URLPattern struct {
	Category string
	Match    func(url string) bool
	Template string
}

var (
	messageURLPattern = regexp.MustCompile(`(?i)https?://[^\s]+`)
	sentenceSplit     = regexp.MustCompile(`[.!?]+`)
	shortenerInURL    = regexp.MustCompile(`(?i)bit\.ly|tinyurl|t\.co`)
	ipInURL           = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
)

// DefaultURLPatterns returns the built-in rules for URLs embedded in messages
func DefaultURLPatterns() []URLPattern {
	return []URLPattern{
		{
			Category: "shortener",
			Match:    shortenerInURL.MatchString,
			Template: `URL shortener detected: "%s"`,
		},
		{
			Category: "ip_literal",
			Match:    ipInURL.MatchString,
			Template: `IP address in URL: "%s"`,
		},
		{
			Category: "hyphenated",
			Match:    func(url string) bool { return strings.Count(url, "-") > 3 },
			Template: `Suspicious URL structure: "%s"`,
		},
	}
}

// PatternExtractor scans message text for phishing phrasing and risky links
type PatternExtractor struct {
	sentences []MessagePattern
	urls      []URLPattern
}

// NewPatternExtractor creates an extractor over the given tables. Nil tables use the defaults.
func NewPatternExtractor(sentences []MessagePattern, urls []URLPattern) *PatternExtractor {
	if sentences == nil {
		sentences = DefaultMessagePatterns()
	}
	if urls == nil {
		urls = DefaultURLPatterns()
	}
	return &PatternExtractor{sentences: sentences, urls: urls}
}

// Extract returns one indicator per matching (sentence, pattern) pair in pattern
// order per sentence, followed by one per matching (url, rule) pair.
func (e *PatternExtractor) Extract(content string) []string {
	indicators := []string{}

	for _, sentence := range sentenceSplit.Split(content, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, p := range e.sentences {
			if p.Pattern.MatchString(lower) {
				indicators = append(indicators, fmt.Sprintf(p.Template, sentence))
			}
		}
	}

	for _, url := range messageURLPattern.FindAllString(content, -1) {
		for _, rule := range e.urls {
			if rule.Match(url) {
				indicators = append(indicators, fmt.Sprintf(rule.Template, url))
			}
		}
	}

	return indicators
}

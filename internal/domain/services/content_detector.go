package services

import (
	"net/url"
	"regexp"
	"strings"

	"phishguard/internal/domain/models"
)

var (
	schemePattern     = regexp.MustCompile(`(?i)^https?://`)
	bareDomainPattern = regexp.MustCompile(`(?i)^[a-z0-9]+([\-\.]{1}[a-z0-9]+)*\.[a-z]{2,}(:[0-9]{1,5})?(\/.*)?$`)
)

// maxURLWords is the largest word count still treated as a URL candidate
const maxURLWords = 5

// DetectContentType decides whether input should be analyzed as a URL or a message.
// It never fails: anything that is not recognisably a URL is a message.
func DetectContentType(input string) models.ContentType {
	trimmed := strings.TrimSpace(input)

	if schemePattern.MatchString(trimmed) {
		return models.ContentTypeURL
	}
	if bareDomainPattern.MatchString(trimmed) {
		return models.ContentTypeURL
	}

	candidate := trimmed
	if !strings.HasPrefix(candidate, "http") {
		candidate = "http://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return models.ContentTypeMessage
	}
	if strings.Contains(parsed.Hostname(), ".") &&
		!strings.Contains(trimmed, " ") &&
		len(strings.Fields(trimmed)) <= maxURLWords {
		return models.ContentTypeURL
	}

	return models.ContentTypeMessage
}

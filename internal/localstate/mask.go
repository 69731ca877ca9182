package localstate

import (
	"regexp"
	"strings"
)

// sensitiveKey matches parameter names that hold cloud credentials.
var sensitiveKey = regexp.MustCompile(`(?i)^(ec2|euca|aws|s3|gce|azure|hcloud)_|secret|token|password|credential`)

// IsSensitiveKey reports whether values stored under key must be masked in logs.
func IsSensitiveKey(key string) bool {
	return sensitiveKey.MatchString(key)
}

// MaskSensitive returns a copy of record in which the values of
// credential-like keys are masked with MaskString. The result is meant for
// logging only and must never be persisted.
func MaskSensitive(record map[string]string) map[string]string {
	masked := make(map[string]string, len(record))
	for key, value := range record {
		if IsSensitiveKey(key) {
			masked[key] = MaskString(value)
			continue
		}
		masked[key] = value
	}
	return masked
}

// MaskString replaces all but the trailing four characters of s with
// asterisks. Strings shorter than four characters are returned unmodified.
func MaskString(s string) string {
	runes := []rune(s)
	if len(runes) < 4 {
		return s
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}

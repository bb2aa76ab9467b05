package logger

import "strings"

// MaskCode masks an activation code for logs, preserving only the first
// group so support can correlate reports without the log being claimable.
func MaskCode(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	groups := strings.Split(value, "-")
	if len(groups) <= 1 {
		return maskTail(value, 4)
	}
	masked := make([]string, len(groups))
	masked[0] = groups[0]
	for i := 1; i < len(groups); i++ {
		masked[i] = strings.Repeat("*", len(groups[i]))
	}
	return strings.Join(masked, "-")
}

// MaskToken masks a claim token, preserving only the last 4 characters.
func MaskToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return maskTail(value, 4)
}

// MaskEmail masks the local part of an address, keeping the first rune and
// the domain.
func MaskEmail(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	at := strings.LastIndex(value, "@")
	if at <= 0 {
		return maskTail(value, 0)
	}
	local := value[:at]
	first := local[:1]
	return first + strings.Repeat("*", len(local)-1) + value[at:]
}

func maskTail(value string, keep int) string {
	if len(value) <= keep {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-keep) + value[len(value)-keep:]
}

package scan

import "strings"

// TrustFilter is an allow-list of benign URI prefixes. It is built once and
// never mutated, so it is safe to share.
type TrustFilter struct {
	prefixes []string
}

// NewTrustFilter copies the given prefixes, dropping empty ones.
func NewTrustFilter(prefixes []string) *TrustFilter {
	tf := &TrustFilter{prefixes: make([]string, 0, len(prefixes))}
	for _, p := range prefixes {
		if p != "" {
			tf.prefixes = append(tf.prefixes, p)
		}
	}
	return tf
}

// IsTrusted reports whether candidate contains any trusted prefix.
func (tf *TrustFilter) IsTrusted(candidate string) bool {
	if tf == nil || candidate == "" {
		return false
	}
	for _, p := range tf.prefixes {
		if strings.Contains(candidate, p) {
			return true
		}
	}
	return false
}

// Prefixes returns a copy of the configured prefixes.
func (tf *TrustFilter) Prefixes() []string {
	out := make([]string, len(tf.prefixes))
	copy(out, tf.prefixes)
	return out
}

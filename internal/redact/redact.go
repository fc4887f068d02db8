// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package redact scrubs secret-shaped substrings from text before it
// reaches a log line or an error returned up the call stack.
package redact

import "regexp"

type pattern struct {
	re          *regexp.Regexp
	replacement string
}

// patterns is ordered most-specific-first: sk-ant-api03- must be tried
// before the shorter sk- pattern or the Anthropic key would only be
// partially redacted.
var patterns = []pattern{
	{regexp.MustCompile(`sk-ant-api03-[A-Za-z0-9_-]{20,}`), "[REDACTED:anthropic_key]"},
	{regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`), "[REDACTED:openai_key]"},
	{regexp.MustCompile(`AIza[A-Za-z0-9_-]{30,}`), "[REDACTED:gemini_key]"},
	{regexp.MustCompile(`Bearer\s+[A-Za-z0-9._-]{10,}`), "[REDACTED:bearer_token]"},
	{regexp.MustCompile(`key=[A-Za-z0-9._-]{10,}`), "key=[REDACTED]"},
	{regexp.MustCompile(`password=[^\s&]{3,}`), "password=[REDACTED]"},
	{regexp.MustCompile(`(postgres|mysql|mongodb)://[^\s]+@`), "${1}://[REDACTED]@"},
}

// String replaces known secret-shaped substrings (API keys, bearer
// tokens, connection-string credentials) with a labeled placeholder. Use
// it on anything derived from a third-party response body or a raw
// request/response dump before it is logged or wrapped into an error.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, p := range patterns {
		s = p.re.ReplaceAllString(s, p.replacement)
	}
	return s
}

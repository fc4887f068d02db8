// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package query implements the Query Parser (C1): pure, deterministic
// extraction of structured filters from a free-form query string.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
)

// ParsedQuery is the Query Parser's output. Category, Brand, and PriceMax
// are nil/absent when nothing matched that rule.
type ParsedQuery struct {
	CleanedText string
	Category    *catalog.Category
	Brand       *string
	PriceMax    *float64
}

// categoryKeywords maps each closed-set category to the keyword table the
// Query Parser checks, in catalog.AllCategories declaration order ("first
// match wins by declaration order", spec §4.1 rule 3).
var categoryKeywords = map[catalog.Category][]string{
	catalog.CategoryRunningShoes:     {"running shoe", "running shoes", "runner", "runners"},
	catalog.CategoryTrainingShoes:    {"training shoe", "training shoes", "trainer", "trainers", "cross trainer"},
	catalog.CategoryFitnessEquipment: {"equipment", "rack", "rower", "treadmill", "dumbbell", "dumbbells", "kettlebell"},
	catalog.CategoryApparel:          {"apparel", "shirt", "shirts", "tee", "shorts", "leggings", "jacket"},
	catalog.CategoryAccessories:      {"accessory", "accessories", "sleeve", "strap", "bag", "bottle"},
	catalog.CategoryRecovery:         {"recovery", "roller", "massage gun", "compression boot"},
}

// knownBrands is the whole-word brand lookup table (spec §4.1 rule 4).
var knownBrands = []string{"aleutian", "ironworks"}

var priceRegexp = regexp.MustCompile(`(?i)(?:under|below)\s*\$?\s*(\d+(?:\.\d+)?)`)

// Parse extracts {cleaned_text, category, brand, price_max} from raw,
// applying the five rules in spec §4.1 order. Parsing never fails and is
// pure and deterministic: the same raw string always yields the same
// ParsedQuery.
func Parse(raw string) ParsedQuery {
	text := strings.ToLower(strings.TrimSpace(raw))
	text = unquote(text)

	var priceMax *float64
	if loc := priceRegexp.FindStringSubmatchIndex(text); loc != nil {
		if v, err := strconv.ParseFloat(text[loc[2]:loc[3]], 64); err == nil && v > 0 {
			priceMax = &v
			text = removeSpan(text, loc[0], loc[1])
		}
	}

	var matchedCategory *catalog.Category
	for _, cat := range catalog.AllCategories {
		for _, kw := range categoryKeywords[cat] {
			if idx, end, ok := findWholeWord(text, kw); ok {
				c := cat
				matchedCategory = &c
				text = removeSpan(text, idx, end)
				break
			}
		}
		if matchedCategory != nil {
			break
		}
	}

	var matchedBrand *string
	for _, brand := range knownBrands {
		if idx, end, ok := findWholeWord(text, brand); ok {
			b := brand
			matchedBrand = &b
			text = removeSpan(text, idx, end)
			break
		}
	}

	return ParsedQuery{
		CleanedText: collapseWhitespace(text),
		Category:    matchedCategory,
		Brand:       matchedBrand,
		PriceMax:    priceMax,
	}
}

func unquote(s string) string {
	s = strings.Trim(s, "\"'")
	return s
}

// findWholeWord locates kw in s as a whole-word substring (not embedded in
// a larger token), returning its byte span.
func findWholeWord(s, kw string) (start, end int, ok bool) {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	loc := re.FindStringIndex(s)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

// removeSpan deletes s[start:end], leaving a single space in its place so
// adjacent words don't fuse together.
func removeSpan(s string, start, end int) string {
	return s[:start] + " " + s[end:]
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

package providers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StrategyKind selects how a SelectorStrategy reads the DOM
type StrategyKind int

const (
	// StrategyText yields the trimmed text of the first non-empty match
	StrategyText StrategyKind = iota
	// StrategyInt yields the first integer in the text of the first match
	StrategyInt
	// StrategyIntAfterLabel yields the first integer following Label in
	// the first match whose text contains Label
	StrategyIntAfterLabel
	// StrategyCount yields the number of matches whose text does not
	// contain Exclude; it succeeds whenever Selector matched anything
	StrategyCount
	// StrategyAttr yields attribute Attr of the first match
	StrategyAttr
)

// SelectorStrategy is one way of reading a value out of a profile page.
// Adapters keep an ordered list per field; the first strategy that
// matches wins, so a layout change only needs a new entry.
type SelectorStrategy struct {
	Name     string
	Kind     StrategyKind
	Selector string
	Label    string
	Attr     string
	Exclude  string
}

var firstInt = regexp.MustCompile(`-?\d[\d,]*`)

// Evaluate applies the strategy to root
func (s SelectorStrategy) Evaluate(root *goquery.Selection) (string, bool) {
	nodes := root.Find(s.Selector)
	if nodes.Length() == 0 {
		return "", false
	}

	switch s.Kind {
	case StrategyText:
		var out string
		nodes.EachWithBreak(func(_ int, n *goquery.Selection) bool {
			out = normalizeSpace(n.Text())
			return out == ""
		})
		return out, out != ""

	case StrategyInt:
		var out string
		nodes.EachWithBreak(func(_ int, n *goquery.Selection) bool {
			out = firstInt.FindString(n.Text())
			return out == ""
		})
		return out, out != ""

	case StrategyIntAfterLabel:
		pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(s.Label) + `\D*?(\d[\d,]*)`)
		var out string
		nodes.EachWithBreak(func(_ int, n *goquery.Selection) bool {
			if m := pattern.FindStringSubmatch(n.Text()); m != nil {
				out = m[1]
				return false
			}
			return true
		})
		return out, out != ""

	case StrategyCount:
		count := 0
		exclude := strings.ToLower(s.Exclude)
		nodes.Each(func(_ int, n *goquery.Selection) {
			if exclude != "" && strings.Contains(strings.ToLower(n.Text()), exclude) {
				return
			}
			count++
		})
		return strconv.Itoa(count), true

	case StrategyAttr:
		val, ok := nodes.First().Attr(s.Attr)
		val = strings.TrimSpace(val)
		return val, ok && val != ""
	}

	return "", false
}

// FirstString evaluates strategies in order and returns the first match
// together with the name of the strategy that produced it.
func FirstString(root *goquery.Selection, strategies []SelectorStrategy) (string, string, bool) {
	for _, s := range strategies {
		if val, ok := s.Evaluate(root); ok {
			return val, s.Name, true
		}
	}
	return "", "", false
}

// FirstInt is FirstString followed by integer parsing ("1,234" -> 1234)
func FirstInt(root *goquery.Selection, strategies []SelectorStrategy) (int, bool) {
	for _, s := range strategies {
		val, ok := s.Evaluate(root)
		if !ok {
			continue
		}
		if n, ok := parseInt(val); ok {
			return n, true
		}
	}
	return 0, false
}

func parseInt(s string) (int, bool) {
	s = firstInt.FindString(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

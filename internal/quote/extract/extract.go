// Package extract pulls price, change and change rate out of a quote page.
//
// The source site exposes no machine-readable schema; the values live in
// visually-hidden label nodes (class "blind") whose surrounding markup shifts
// between page revisions. The scan order and first-match tie-breaks below are
// deliberate and must stay as they are: they mirror the label layout actually
// observed on the site, and callers treat the result as best-effort.
package extract

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoPrice means no label in the document qualified as a headline price.
var ErrNoPrice = errors.New("no price found in document")

// Result holds the values extracted from one document.
type Result struct {
	Price      int64
	Change     int64
	ChangeRate float64
}

// Extract parses doc and returns the extracted quote values.
// It is pure: the same document always yields the same Result or error.
// A wrong-but-plausible value (an unrelated label picked as price) is not
// detectable here and is returned as a normal Result.
func Extract(doc string) (Result, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return Result{}, err
	}

	price, ok := headlinePrice(d)
	if !ok {
		price, ok = firstLabeledNumber(d)
	}
	if !ok {
		return Result{}, ErrNoPrice
	}

	change := changeAmount(d, price)
	return Result{
		Price:      price,
		Change:     change,
		ChangeRate: changeRate(d, change),
	}, nil
}

// headlinePrice tries the primary selector that usually holds the current price.
func headlinePrice(d *goquery.Document) (int64, bool) {
	sel := d.Find(".no_today .blind").First()
	if sel.Length() == 0 {
		return 0, false
	}
	return parseGrouped(numericPart(sel.Text()))
}

// firstLabeledNumber scans every hidden label in document order and accepts
// the first one whose digit/separator run is at least 3 characters long.
func firstLabeledNumber(d *goquery.Document) (price int64, ok bool) {
	d.Find(".blind").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		n := numericPart(s.Text())
		if len(n) < 3 {
			return true
		}
		if v, valid := parseGrouped(n); valid {
			price, ok = v, true
			return false
		}
		return true
	})
	return price, ok
}

// changeAmount scans the hidden labels a second time, skipping the first and
// last, for the first numeric candidate strictly between 0 and price with at
// most 6 digit/separator characters. The enclosing markup decides direction.
func changeAmount(d *goquery.Document, price int64) int64 {
	labels := d.Find(".blind")
	last := labels.Length() - 1

	var change int64
	labels.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i == 0 || i >= last {
			return true
		}
		n := numericPart(s.Text())
		if n == "" || len(n) > 6 {
			return true
		}
		v, valid := parseGrouped(n)
		if !valid || v <= 0 || v >= price {
			return true
		}
		change = v
		if marksDecrease(s) {
			change = -change
		}
		return false
	})
	return change
}

// changeRate returns the value of the first percent label. The sign embedded
// in the label text is unreliable, so the direction found by changeAmount is
// re-applied instead.
func changeRate(d *goquery.Document, change int64) float64 {
	var rate float64
	d.Find(".blind").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if !strings.Contains(t, "%") {
			return true
		}
		cleaned := strings.TrimSpace(strings.NewReplacer("%", "", "+", "", "-", "").Replace(t))
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return true
		}
		if change < 0 {
			rate = -math.Abs(v)
		} else {
			rate = math.Abs(v)
		}
		return false
	})
	return rate
}

// marksDecrease reports whether the label's enclosing markup names a downward
// move ("minus" or "down", case-insensitive).
func marksDecrease(s *goquery.Selection) bool {
	parent := s.Parent()
	if parent.Length() == 0 {
		return false
	}
	h, err := goquery.OuterHtml(parent)
	if err != nil {
		return false
	}
	h = strings.ToLower(h)
	return strings.Contains(h, "minus") || strings.Contains(h, "down")
}

// numericPart keeps only digits and comma separators.
func numericPart(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if (r >= '0' && r <= '9') || r == ',' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseGrouped parses a digit string that may carry comma separators.
func parseGrouped(s string) (int64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

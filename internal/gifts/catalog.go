// Package gifts resolves gift names to their diamond and USD value using a
// static catalog of common platform gifts.
package gifts

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// usdPerDiamond is the approximate platform exchange rate.
const usdPerDiamond = 0.005

// catalog maps lower-cased gift names to their per-unit diamond value.
var catalog = map[string]int{
	"rose":             1,
	"tiktok":           1,
	"gg":               1,
	"ice cream cone":   1,
	"heart":            1,
	"finger heart":     5,
	"perfume":          20,
	"doughnut":         30,
	"paper crane":      99,
	"little crown":     99,
	"confetti":         100,
	"hand hearts":      100,
	"hat and mustache": 199,
	"sunglasses":       199,
	"garland headpiece": 199,
	"love bang":        25,
	"sweet heart":      899,
	"swan":             699,
	"train":            899,
	"galaxy":           1000,
	"universe":         34999,
	"lion":             29999,
	"drama queen":      5000,
	"whale diving":     2150,
	"money gun":        500,
	"corgi":            299,
	"motorcycle":       2988,
	"sports car":       7000,
	"rocket":           20000,
	"planet":           15000,
}

// Value is a gift's resolved worth.
type Value struct {
	Diamonds int
	USD      float64
}

// Resolve computes the total value of a gift event. repeat below 1 is treated
// as a single gift. Known names use the catalog's per-unit diamond value and
// the platform exchange rate; unknown names fall back to the reported diamond
// value with no USD estimate, so revenue numbers never include guesses.
func Resolve(name string, reportedDiamonds, repeat int) Value {
	if repeat < 1 {
		repeat = 1
	}

	if perUnit, ok := catalog[normalize(name)]; ok {
		total := perUnit * repeat
		return Value{Diamonds: total, USD: float64(total) * usdPerDiamond}
	}

	logrus.Warnf("Unknown gift %q, using reported diamond value %d", name, reportedDiamonds)
	if reportedDiamonds < 0 {
		reportedDiamonds = 0
	}
	return Value{Diamonds: reportedDiamonds * repeat}
}

// Known reports whether a gift name is in the catalog.
func Known(name string) bool {
	_, ok := catalog[normalize(name)]
	return ok
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

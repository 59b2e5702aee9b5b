package domain

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// DisplayDateLayout is the day/month/year layout used in user-facing text.
const DisplayDateLayout = "02/01/2006"

// ThousandsSeparator groups digits in user-facing numbers.
const ThousandsSeparator = "'"

// ReadableNumber formats v with grouped thousands, e.g. 1234567 -> "1'234'567".
// Missing values (NaN) render as "n/a".
func ReadableNumber(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strings.ReplaceAll(humanize.Commaf(v), ",", ThousandsSeparator)
}

// StatLabel renders a statistic field name for display:
// "ricoverati_con_sintomi" -> "Ricoverati con sintomi".
func StatLabel(stat string) string {
	label := strings.ReplaceAll(stat, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

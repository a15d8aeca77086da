package i18n

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// LocaleFormat formats numbers and dates for one language.
type LocaleFormat struct {
	printer    *message.Printer
	dateLayout string
	timeLayout string
}

// FormatOption configures a LocaleFormat.
type FormatOption func(*LocaleFormat)

// WithDateLayout sets the time.Format layout used for dates.
func WithDateLayout(layout string) FormatOption {
	return func(f *LocaleFormat) { f.dateLayout = layout }
}

// WithTimeLayout sets the time.Format layout used for times of day.
func WithTimeLayout(layout string) FormatOption {
	return func(f *LocaleFormat) { f.timeLayout = layout }
}

// NewLocaleFormat returns the format of tag. Number separators come from
// CLDR; dates default to ISO 8601 layouts.
func NewLocaleFormat(tag language.Tag, opts ...FormatOption) *LocaleFormat {
	f := &LocaleFormat{
		printer:    message.NewPrinter(tag),
		dateLayout: time.DateOnly,
		timeLayout: "15:04",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FormatInt formats n with grouping separators.
func (f *LocaleFormat) FormatInt(n int) string {
	return f.printer.Sprint(number.Decimal(n))
}

// FormatNumber formats n with at most two fraction digits.
func (f *LocaleFormat) FormatNumber(n float64) string {
	return f.printer.Sprint(number.Decimal(n, number.MaxFractionDigits(2)))
}

// FormatPercent formats a ratio (0.5 is 50%).
func (f *LocaleFormat) FormatPercent(n float64) string {
	return f.printer.Sprint(number.Percent(n))
}

// FormatDate formats the date part of t.
func (f *LocaleFormat) FormatDate(t time.Time) string { return t.Format(f.dateLayout) }

// FormatTime formats the time of day of t.
func (f *LocaleFormat) FormatTime(t time.Time) string { return t.Format(f.timeLayout) }

// FormatDateTime formats t as date and time.
func (f *LocaleFormat) FormatDateTime(t time.Time) string {
	return t.Format(f.dateLayout + " " + f.timeLayout)
}

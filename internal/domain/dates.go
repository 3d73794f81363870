package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The two accepted date grammars. They are joined into one scanner so that
// matches are found leftmost-first without overlaps; which grammar a match
// belongs to is decided afterwards by segmentLayout.
const (
	isoDateGrammar      = `\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`
	dayFirstDateGrammar = `\b\d{1,2}[-/]\d{1,2}[-/]\d{4}\b`
)

var (
	dateScanRe   = regexp.MustCompile(isoDateGrammar + "|" + dayFirstDateGrammar)
	dateSplitter = strings.NewReplacer("/", "-")
)

// CanonicalDateLayout is the display form stored alongside each record.
const CanonicalDateLayout = "2006-01-02"

// Extractor finds the latest date embedded in free text.
type Extractor struct {
	loc *time.Location
}

// NewExtractor returns an Extractor that places dates at midnight in loc.
// A nil loc means time.Local.
func NewExtractor(loc *time.Location) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	return &Extractor{loc: loc}
}

// Latest returns the most recent valid date in text. Matches that do not form
// a real calendar date are skipped; false means nothing usable was found.
func (e *Extractor) Latest(text string) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, m := range dateScanRe.FindAllString(text, -1) {
		d, ok := e.parseMatch(m)
		if !ok {
			continue
		}
		if !found || d.After(latest) {
			latest, found = d, true
		}
	}
	return latest, found
}

func (e *Extractor) parseMatch(m string) (time.Time, bool) {
	segs := strings.Split(dateSplitter.Replace(m), "-")
	if len(segs) != 3 {
		return time.Time{}, false
	}
	y, mo, d := segmentLayout(segs)
	year, err1 := strconv.Atoi(y)
	month, err2 := strconv.Atoi(mo)
	day, err3 := strconv.Atoi(d)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	return calendarDate(year, month, day, e.loc)
}

// segmentLayout applies the disambiguation rule: a four digit first segment
// is year-month-day, otherwise the segments are day-month-year.
func segmentLayout(segs []string) (year, month, day string) {
	if len(segs[0]) == 4 {
		return segs[0], segs[1], segs[2]
	}
	return segs[2], segs[1], segs[0]
}

// calendarDate rejects out-of-range months and days instead of letting
// time.Date normalize them into a neighbouring month.
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders t in CanonicalDateLayout using its own calendar fields.
func FormatDate(t time.Time) string {
	return t.Format(CanonicalDateLayout)
}

package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultFallbackYear labels archives whose folder name carries no year.
const DefaultFallbackYear = 2026

// File is a named blob handed to the distributor.
type File struct {
	Name         string
	RelativePath string // as selected from a folder picker, e.g. "2025_3/IMG_1.jpg"
	Content      []byte
}

// Assignment places one file in a month slot.
type Assignment struct {
	File     File
	Month    time.Month
	Sequence int    // 1-based within Month
	Name     string // "{Month}_{year}_{Sequence}.{ext}"
}

// DistributionPlan is the deterministic month layout for one batch.
type DistributionPlan struct {
	Label           string
	Year            int
	AvailableMonths []time.Month
	PerMonth        int
	Assignments     []Assignment
}

// ParseFolderLabel reads "YEAR_SKIP_SKIP..." labels. Each segment is read by
// its leading integer, so "3abc" counts as 3. The year falls back to
// fallbackYear when the first segment has no leading integer; skip segments
// without one are ignored, out-of-range ones are kept but match no month.
func ParseFolderLabel(label string, fallbackYear int) (int, map[int]bool) {
	parts := strings.Split(label, "_")

	year := fallbackYear
	if y, ok := leadingInt(parts[0]); ok {
		year = y
	}

	skips := make(map[int]bool, len(parts)-1)
	for _, p := range parts[1:] {
		if n, ok := leadingInt(p); ok {
			skips[n] = true
		}
	}
	return year, skips
}

// leadingInt parses the optionally signed run of digits at the start of s,
// after leading whitespace. Trailing text is ignored.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// AvailableMonths lists the calendar months not present in skips, January first.
func AvailableMonths(skips map[int]bool) []time.Month {
	months := make([]time.Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		if !skips[int(m)] {
			months = append(months, m)
		}
	}
	return months
}

// Plan distributes files across the months left available by label. The
// input slice is not modified.
func Plan(files []File, label string, fallbackYear int) (DistributionPlan, error) {
	year, skips := ParseFolderLabel(label, fallbackYear)
	months := AvailableMonths(skips)
	if len(months) == 0 {
		return DistributionPlan{}, fmt.Errorf("folder label %q: %w", label, ErrNoAvailableMonths)
	}

	plan := DistributionPlan{
		Label:           label,
		Year:            year,
		AvailableMonths: months,
	}
	if len(files) == 0 {
		return plan, nil
	}

	sorted := SortFiles(files)
	perMonth := (len(sorted) + len(months) - 1) / len(months)
	plan.PerMonth = perMonth
	plan.Assignments = make([]Assignment, len(sorted))

	for i, f := range sorted {
		month := months[min(i/perMonth, len(months)-1)]
		seq := i%perMonth + 1
		plan.Assignments[i] = Assignment{
			File:     f,
			Month:    month,
			Sequence: seq,
			Name:     slotName(month, year, seq, Extension(f.Name)),
		}
	}
	return plan, nil
}

// SortFiles returns a copy of files ordered by name with locale-aware,
// numeric-aware collation, so "IMG_2" sorts before "IMG_10".
func SortFiles(files []File) []File {
	sorted := slices.Clone(files)
	c := collate.New(language.Und, collate.Numeric)
	slices.SortStableFunc(sorted, func(a, b File) int {
		return c.CompareString(a.Name, b.Name)
	})
	return sorted
}

// Extension returns the text after the last dot in name, or "" if there is none.
func Extension(name string) string {
	name = baseName(name)
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}

func slotName(month time.Month, year, seq int, ext string) string {
	name := fmt.Sprintf("%s_%d_%d", month, year, seq)
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// OutputPath is the location of a renamed file inside the archive.
func OutputPath(label, name string) string {
	return label + "_Renamed/" + name
}

// ArchiveName is the file name of the packaged result.
func ArchiveName(label string) string {
	return label + "_Processed.zip"
}

// FolderLabel derives the label from the first file's relative path, as a
// folder picker reports it, or falls back to "ARCHIVE_{fallbackYear}".
func FolderLabel(files []File, fallbackYear int) string {
	if len(files) > 0 {
		rel := strings.ReplaceAll(files[0].RelativePath, `\`, "/")
		if head, _, found := strings.Cut(rel, "/"); found && head != "" {
			return head
		}
	}
	return "ARCHIVE_" + strconv.Itoa(fallbackYear)
}

// IsHidden reports whether a file name is a dotfile.
func IsHidden(name string) bool {
	return strings.HasPrefix(baseName(name), ".")
}

// Output is one materialized archive member.
type Output struct {
	Path    string
	Content []byte
}

// Outputs maps every assignment to its path inside the archive, in plan order.
func (p DistributionPlan) Outputs() []Output {
	out := make([]Output, len(p.Assignments))
	for i, a := range p.Assignments {
		out[i] = Output{Path: OutputPath(p.Label, a.Name), Content: a.File.Content}
	}
	return out
}

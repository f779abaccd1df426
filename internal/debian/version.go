package debian

import (
	"strconv"
	"strings"
)

// Version is a Debian package version string in [epoch:]upstream[-revision]
// form, compared with CompareVersions per spec.md §9's "do not approximate"
// directive — this is the full dpkg algorithm, not a semver shortcut.
type Version string

// CompareVersions returns -1, 0, or 1 as a compares less than, equal to, or
// greater than b under full Debian version ordering (epoch, then upstream,
// then revision, with '~' sorting before everything including the empty
// string).
func CompareVersions(a, b Version) int {
	epochA, upstreamA, revisionA := splitVersion(string(a))
	epochB, upstreamB, revisionB := splitVersion(string(b))

	if c := compareEpoch(epochA, epochB); c != 0 {
		return c
	}

	if c := compareComponent(upstreamA, upstreamB); c != 0 {
		return c
	}

	return compareComponent(revisionA, revisionB)
}

// Less reports whether a sorts strictly before b.
func Less(a, b Version) bool {
	return CompareVersions(a, b) < 0
}

func splitVersion(v string) (epoch int, upstream, revision string) {
	if idx := strings.IndexByte(v, ':'); idx >= 0 {
		epoch, _ = strconv.Atoi(v[:idx])
		v = v[idx+1:]
	}

	if idx := strings.LastIndexByte(v, '-'); idx >= 0 {
		return epoch, v[:idx], v[idx+1:]
	}

	return epoch, v, ""
}

func compareEpoch(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareComponent implements the segment-alternation comparison dpkg uses
// for both the upstream-version and revision parts: alternate between
// comparing runs of non-digits (lexically, with '~' lowest) and runs of
// digits (numerically).
func compareComponent(a, b string) int {
	i, j := 0, 0

	for i < len(a) || j < len(b) {
		// compare a run of non-digit characters lexically, '~' lowest of all
		nonDigitA, nextI := takeNonDigits(a, i)
		nonDigitB, nextJ := takeNonDigits(b, j)

		if c := compareLexical(nonDigitA, nonDigitB); c != 0 {
			return c
		}

		i, j = nextI, nextJ

		// compare a run of digit characters numerically
		digitA, nextI := takeDigits(a, i)
		digitB, nextJ := takeDigits(b, j)

		if c := compareNumeric(digitA, digitB); c != 0 {
			return c
		}

		i, j = nextI, nextJ
	}

	return 0
}

func takeNonDigits(s string, start int) (string, int) {
	i := start
	for i < len(s) && !isDigit(s[i]) {
		i++
	}

	return s[start:i], i
}

func takeDigits(s string, start int) (string, int) {
	i := start
	for i < len(s) && isDigit(s[i]) {
		i++
	}

	return s[start:i], i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// charOrder assigns the dpkg comparison weight to a single byte within a
// non-digit run: '~' sorts lowest (below the end-of-string sentinel), letters
// sort next in plain ASCII order, everything else (punctuation) sorts above
// letters.
func charOrder(c byte) int {
	switch {
	case c == '~':
		return -1
	case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		return int(c)
	case c == 0:
		return 0
	default:
		return int(c) + 256
	}
}

// compareLexical compares two non-digit runs character by character using
// charOrder, treating a run that ends early as an implicit 0 byte — this is
// what makes '~' sort before the empty string (charOrder('~') == -1 < 0).
func compareLexical(a, b string) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		var ca, cb byte

		if i < len(a) {
			ca = a[i]
		}

		if i < len(b) {
			cb = b[i]
		}

		oa, ob := charOrder(ca), charOrder(cb)

		switch {
		case oa < ob:
			return -1
		case oa > ob:
			return 1
		}
	}

	return 0
}

// compareNumeric compares two digit runs numerically, treating an empty run
// as zero and ignoring leading zeros.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")

	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}

		return 1
	}

	return strings.Compare(a, b)
}

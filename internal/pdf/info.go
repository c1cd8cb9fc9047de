package pdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// readInfo loads document metadata from the trailer Info dictionary. It is a
// fresh read every time.
func readInfo(absPath string) (*Info, error) {
	f, r, err := pdf.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	info := &Info{
		Path:  absPath,
		Pages: r.NumPage(),
	}

	defer func() {
		// Some documents carry malformed Info dictionaries that make the
		// underlying reader panic; metadata then stays empty.
		_ = recover()
	}()

	dict := r.Trailer().Key("Info")
	if dict.IsNull() {
		return info, nil
	}

	info.Title = dict.Key("Title").Text()
	info.Author = dict.Key("Author").Text()
	info.Subject = dict.Key("Subject").Text()
	info.Creator = dict.Key("Creator").Text()
	info.CreationDate = parsePDFDate(dict.Key("CreationDate").Text())
	info.ModDate = parsePDFDate(dict.Key("ModDate").Text())

	return info, nil
}

// parsePDFDate parses the PDF date form D:YYYYMMDDHHmmSS with optional
// timezone suffix. Shorter prefixes (date only, date+hour) are accepted.
// Unparseable input yields the zero time rather than an error.
func parsePDFDate(s string) time.Time {
	s = strings.TrimPrefix(strings.TrimSpace(s), "D:")
	if s == "" {
		return time.Time{}
	}

	// Keep the leading digit run; everything after it is timezone info.
	digits := s
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			digits = s[:i]
			break
		}
	}

	for _, layout := range []string{"20060102150405", "200601021504", "2006010215", "20060102", "200601", "2006"} {
		if len(digits) == len(layout) {
			if t, err := time.Parse(layout, digits); err == nil {
				return applyPDFZone(t, s[len(digits):])
			}
		}
	}
	return time.Time{}
}

// applyPDFZone applies a trailing O HH'mm' timezone marker when present.
func applyPDFZone(t time.Time, zone string) time.Time {
	zone = strings.TrimSpace(zone)
	if zone == "" || zone[0] == 'Z' {
		return t.UTC()
	}
	if zone[0] != '+' && zone[0] != '-' {
		return t
	}

	sign := 1
	if zone[0] == '-' {
		sign = -1
	}
	zone = strings.ReplaceAll(zone[1:], "'", "")
	var hh, mm int
	if len(zone) >= 2 {
		fmt.Sscanf(zone[:2], "%d", &hh)
	}
	if len(zone) >= 4 {
		fmt.Sscanf(zone[2:4], "%d", &mm)
	}
	offset := sign * (hh*3600 + mm*60)
	return t.Add(-time.Duration(offset) * time.Second).UTC()
}

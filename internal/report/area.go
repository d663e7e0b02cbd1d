package report

import (
	"regexp"
	"strings"
)

// Property names follow in-house conventions like "名古屋工場第2社宅" or
// "仙台営業所寮": the site name up to the facility suffix identifies the
// area. When the name gives nothing, the leading city-level segment of the
// address is the next best label.
var (
	areaFromName    = regexp.MustCompile(`^(.+?(?:工場|営業所|出張所|支店|事業所))`)
	areaFromAddress = regexp.MustCompile(`^(?:.{2,3}[都道府県])?(.+?[市区町村郡])`)
)

// extractArea derives a district label for grouping property rows.
// Best effort only; an empty result is acceptable.
func extractArea(name, address string) string {
	if m := areaFromName.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if m := areaFromAddress.FindStringSubmatch(strings.TrimSpace(address)); m != nil {
		return m[1]
	}
	return ""
}

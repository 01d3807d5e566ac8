package crawler

import "strings"

// LocationTable maps a gu name to the code a site expects.
type LocationTable map[string]string

var wantedLocations = LocationTable{
	"강남구": "seoul.gangnam-gu",
	"서초구": "seoul.seocho-gu",
	"구로구": "seoul.guro-gu",
	"금천구": "seoul.geumcheon-gu",
	"관악구": "seoul.gwanak-gu",
	"동작구": "seoul.dongjak-gu",
}

// saraminLocations is shared by saramin and jumpit, which use the same codes.
var saraminLocations = LocationTable{
	"강남구": "101010",
	"서초구": "101050",
	"구로구": "101070",
	"금천구": "101080",
	"관악구": "101120",
	"동작구": "101150",
}

// defaultSaraminLocations is the saramin search area when no location is given.
var defaultSaraminLocations = []string{"101010", "101050", "101080", "101070", "101120", "101150"}

var seoulPrefixes = []string{"서울특별시", "서울시", "서울"}

// Resolve returns the site code for loc, or loc itself when it is unknown.
// A leading "서울" qualifier and surrounding spaces are ignored.
func (t LocationTable) Resolve(loc string) string {
	key := strings.TrimSpace(loc)
	for _, p := range seoulPrefixes {
		if rest, ok := strings.CutPrefix(key, p); ok {
			key = strings.TrimSpace(rest)
			break
		}
	}
	if code, ok := t[key]; ok {
		return code
	}
	return loc
}

// ResolveAll resolves every entry of locs, skipping blanks.
func (t LocationTable) ResolveAll(locs []string) []string {
	out := make([]string, 0, len(locs))
	for _, loc := range locs {
		if strings.TrimSpace(loc) == "" {
			continue
		}
		out = append(out, t.Resolve(loc))
	}
	return out
}

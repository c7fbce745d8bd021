package payments

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// document is a decoded gateway body. Lookups never panic: a missing key, a wrong
// nested type or an out-of-range index all read as "absent".
type document struct {
	root any
}

func parseDocument(raw []byte) document {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return document{}
	}
	return document{root: root}
}

// lookup walks a dotted path; numeric segments index arrays ("charges.0.id").
func (d document) lookup(path string) (any, bool) {
	cur := d.root
	if cur == nil {
		return nil, false
	}
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

func (d document) str(path string) (string, bool) {
	v, ok := d.lookup(path)
	if !ok {
		return "", false
	}
	s := scalarString(v)
	return s, s != ""
}

// link finds href in a links array by rel or media type, case-insensitively.
func (d document) link(path string, relOrMedia ...string) (string, bool) {
	v, ok := d.lookup(path)
	if !ok {
		return "", false
	}
	links, ok := v.([]any)
	if !ok {
		return "", false
	}
	for _, want := range relOrMedia {
		for _, it := range links {
			l, ok := it.(map[string]any)
			if !ok {
				continue
			}
			rel, _ := l["rel"].(string)
			media, _ := l["media"].(string)
			if !strings.EqualFold(rel, want) && !strings.EqualFold(media, want) {
				continue
			}
			if href, ok := l["href"].(string); ok && strings.TrimSpace(href) != "" {
				return strings.TrimSpace(href), true
			}
		}
	}
	return "", false
}

func (d document) time(path string) (time.Time, bool) {
	s, ok := d.str(path)
	if !ok {
		return time.Time{}, false
	}
	return parseGatewayTime(s)
}

var gatewayTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// gatewayLocation is where zone-less gateway timestamps and boleto due dates are read.
// Brazil dropped daylight saving in 2019, so the fixed offset is exact when tzdata is missing.
var gatewayLocation = loadGatewayLocation()

func loadGatewayLocation() *time.Location {
	if loc, err := time.LoadLocation("America/Sao_Paulo"); err == nil {
		return loc
	}
	return time.FixedZone("BRT", -3*60*60)
}

func parseGatewayTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range gatewayTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, gatewayLocation); err == nil {
			return t.UTC(), true
		}
	}
	// Boleto due dates come as a bare date; the slip stays payable until the end of that day.
	if t, err := time.ParseInLocation("2006-01-02", s, gatewayLocation); err == nil {
		return t.AddDate(0, 0, 1).Add(-time.Second).UTC(), true
	}
	return time.Time{}, false
}

package dataset

import (
	"strconv"
	"strings"
)

// Attribute names tried, in order, when a field is not configured
// explicitly. GeoJSON exports use the first spellings, CBS shapefiles the
// upper-case ones (DBF names are limited to ten characters).
var (
	nameKeys       = []string{"naam", "gemeentenaam", "GM_NAAM", "statnaam"}
	codeKeys       = []string{"gemeentecode", "code", "GM_CODE", "statcode"}
	populationKeys = []string{"TotaleBevolking_1", "bevolking", "AANT_INW"}
)

// Monument feature properties.
const (
	propMunicipality = "naam"
	propMainCategory = "hoofdcategorie"
	propSubCategory  = "subcategorie"
	propNumber       = "rijksmonument_nummer"
	propURL          = "rijksmonumenturl"
)

// FieldOptions overrides the attribute names of region features.
type FieldOptions struct {
	Name       string `mapstructure:"name"`
	Code       string `mapstructure:"code"`
	Population string `mapstructure:"population"`
}

func (f FieldOptions) keys(explicit string, defaults []string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	return defaults
}

// lookup finds the first key present in props, case-insensitively.
func lookup(props map[string]any, keys []string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := props[k]; ok {
			return k, v, true
		}
	}
	for _, k := range keys {
		for pk, v := range props {
			if strings.EqualFold(pk, k) {
				return pk, v, true
			}
		}
	}
	return "", nil, false
}

// asString formats scalar property values. Whole numbers print without a
// decimal part so numeric monument numbers read naturally.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// asFloat converts numeric or numeric-string properties.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

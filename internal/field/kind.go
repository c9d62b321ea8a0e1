package field

import "fmt"

// Kind is the input kind of a field. Outputs have no kind; their format
// decides how they render.
type Kind uint8

const (
	KindUnset Kind = iota
	KindNumber
	KindBool
	KindString
	KindEnum
	KindDynamicEnum
	KindWindSpeed
	KindWindDirection
	KindEmail
	KindSaveToken
	KindText
	KindRichText
)

var kindNames = map[Kind]string{
	KindNumber:        "number",
	KindBool:          "bool",
	KindString:        "string",
	KindEnum:          "enum",
	KindDynamicEnum:   "dynamic_enum",
	KindWindSpeed:     "wind_speed",
	KindWindDirection: "wind_direction",
	KindEmail:         "email",
	KindSaveToken:     "save_token",
	KindText:          "text",
	KindRichText:      "rich_text",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unset"
}

// ParseKind maps a configuration name to a Kind. The empty string is
// KindUnset, which same/link targets fill in.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindUnset, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnset, fmt.Errorf("unknown input kind %q", s)
}

// silent reports whether the kind never shows validation messages.
func (k Kind) silent() bool {
	return k == KindBool || k == KindEnum || k == KindDynamicEnum
}

package body

import (
	"fmt"
	"strings"

	"github.com/alexferl/bodyparser/config"
)

// Kind is a body interpretation.
type Kind uint8

const (
	KindNone Kind = iota
	KindJSON
	KindForm
	KindText
	KindXML
	KindMultipart
)

// SupportedKinds lists every kind that can be enabled or extended, in classification order.
var SupportedKinds = []Kind{KindJSON, KindForm, KindText, KindXML, KindMultipart}

var kindNames = map[Kind]string{
	KindNone:      "none",
	KindJSON:      "json",
	KindForm:      "form",
	KindText:      "text",
	KindXML:       "xml",
	KindMultipart: "multipart",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind returns the supported kind with the given name.
func ParseKind(name string) (Kind, error) {
	for _, k := range SupportedKinds {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("%w, expected one of %s", config.ErrUnsupportedKind, supportedKindNames())
}

func supportedKindNames() string {
	names := make([]string, len(SupportedKinds))
	for i, k := range SupportedKinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

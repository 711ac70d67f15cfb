package namegen

import (
	"regexp"
	"strings"
	"time"

	"github.com/pdfwatch/pdfwatch/internal/model"
)

// DateFormat is the 8-digit date suffix layout.
const DateFormat = "20060102"

// datePresent matches an 8-digit date already embedded in the name.
var datePresent = regexp.MustCompile(`(19|20)\d{6}`)

// Options gates the optional filename components.
type Options struct {
	IncludeNames bool
	IncludeDate  bool
	Date         string // defaults to today when empty
	MaxLength    int
}

// Build assembles the final base filename (without extension) from the
// classification label, the optional metadata, and the folder options,
// then sanitizes the result.
func Build(label string, names model.NameInfo, prop model.PropertyInfo, opts Options) string {
	parts := []string{label}

	switch {
	case prop.Applicable():
		parts = append(parts, propertyPart(prop))
	case opts.IncludeNames:
		if p := names.NamePart(); p != "" {
			parts = append(parts, p)
		}
	}

	// The date never applies to registry documents, and is skipped when
	// an 8-digit date already appears in the assembled string.
	if opts.IncludeDate && !prop.Applicable() {
		pre := strings.Join(parts, "_")
		if !datePresent.MatchString(pre) {
			date := opts.Date
			if date == "" {
				date = time.Now().Format(DateFormat)
			}
			parts = append(parts, date)
		}
	}

	return Sanitize(strings.Join(parts, "_"), opts.MaxLength)
}

// propertyPart renders the parcel suffix for registry documents.
// Unit-type properties show only the building/room identifier.
func propertyPart(prop model.PropertyInfo) string {
	tag := prop.Kind.Tag()

	if prop.Kind == model.PropertyUnit {
		if prop.Identifier != "" {
			return prop.Identifier + tag
		}
		return "区分建物" + tag
	}

	switch {
	case prop.Location != "" && prop.Identifier != "":
		return prop.Location + prop.Identifier + tag
	case prop.Location != "":
		return prop.Location + tag
	case prop.Identifier != "":
		return prop.Identifier + tag
	}
	return "不動産情報" + tag
}

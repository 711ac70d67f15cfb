package model

// NameInfo holds the addressee identity extracted from a document.
// Every field is independently optional; an empty string means the field
// was absent, never a literal "none" marker.
type NameInfo struct {
	Surname   string
	GivenName string
	Company   string
}

// Empty reports whether no identity field was extracted at all.
func (n NameInfo) Empty() bool {
	return n.Surname == "" && n.GivenName == "" && n.Company == ""
}

// NamePart returns the filename suffix for this identity: company first,
// then surname+given name, then surname alone. Empty when nothing applies.
func (n NameInfo) NamePart() string {
	switch {
	case n.Company != "":
		return n.Company
	case n.Surname != "" && n.GivenName != "":
		return n.Surname + n.GivenName
	case n.Surname != "":
		return n.Surname
	}
	return ""
}

// PropertyKind is the closed set of real-estate types found on registry
// certificates.
type PropertyKind string

// Property kinds as they appear in the certificate's 表題部.
const (
	PropertyLand     PropertyKind = "土地"
	PropertyBuilding PropertyKind = "建物"
	PropertyUnit     PropertyKind = "区分建物"
)

// ParsePropertyKind maps the extracted 種別 value onto the closed kind
// set. Unknown values yield an empty kind.
func ParsePropertyKind(s string) PropertyKind {
	switch PropertyKind(s) {
	case PropertyLand, PropertyBuilding, PropertyUnit:
		return PropertyKind(s)
	}
	return ""
}

// Tag returns the bracketed filename tag for the kind.
func (k PropertyKind) Tag() string {
	switch k {
	case PropertyLand:
		return "（土地）"
	case PropertyBuilding:
		return "（建物）"
	case PropertyUnit:
		return "（区分）"
	}
	return ""
}

// PropertyInfo holds the parcel metadata extracted from a registry
// certificate. Location and Identifier are optional.
type PropertyInfo struct {
	Kind       PropertyKind
	Location   string // 所在
	Identifier string // 地番・家屋番号・部屋番号
}

// Applicable reports whether a property kind was recognized, which is the
// gate for registry-style naming.
func (p PropertyInfo) Applicable() bool {
	return p.Kind != ""
}

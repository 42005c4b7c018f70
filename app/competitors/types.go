package competitors

// MaxCompetitors bounds the origins returned for one brand.
const MaxCompetitors = 3

type Catalog struct {
	Groups []Group `yaml:"groups"`
}

// Group maps a market segment to known storefronts. A brand belongs to the
// group when any keyword appears in one of the selected fields and no exclude
// does.
type Group struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Excludes []string `yaml:"excludes"`
	Fields   []string `yaml:"fields"` // defaults to every field
	Stores   []string `yaml:"stores"`
}

// Fields a group can match against.
const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldProductTypes = "product_types"
	FieldTags         = "tags"
	FieldVendors      = "vendors"
)

var allFields = []string{FieldName, FieldDescription, FieldProductTypes, FieldTags, FieldVendors}

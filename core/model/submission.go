package model

// Attribute keys recognized on a submission's metadata bag. The intake
// tooling may attach arbitrary keys; the engine only reads these.
const (
	AttrCategory    = "category"
	AttrInstitution = "institution"
)

// Attributes is the free-form metadata attached to a submission by the
// intake process (spreadsheet import or direct creation).
type Attributes map[string]string

// Submission is a unit of work to be reviewed. It is read-only to the
// distribution engine; only assignments referencing it are created.
type Submission struct {
	ID              string
	EventID         string
	AuthorID        string // empty when the intake provided no author
	Attributes      Attributes
	AssignmentCount int
}

// Category returns the raw category attribute, or the empty string when the
// submission is uncategorized.
func (s Submission) Category() string { return s.Attributes[AttrCategory] }

// Institution returns the declared institution attribute, if any.
func (s Submission) Institution() string { return s.Attributes[AttrInstitution] }

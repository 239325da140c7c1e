package models

// Change categories recognized in a ChangeSet. Any other key is ignored.
const (
	ChangeAdded    = "added"
	ChangeModified = "modified"
	ChangeRemoved  = "removed"
)

type (
	// ChangeSet maps a change category to the ordered file paths in it.
	ChangeSet map[string][]string

	// DiffSet maps a file path to its raw diff text, which may be empty.
	DiffSet map[string]string

	// PullRequestInfo is the snapshot of a Pull Request taken at the start of a
	// generation run. It is never mutated after creation.
	PullRequestInfo struct {
		Number      int
		Title       string
		Description string
		BaseBranch  string
		HeadBranch  string
		Changes     ChangeSet
		Diffs       DiffSet
	}
)

// Files returns the paths recorded under the given category.
func (c ChangeSet) Files(category string) []string {
	if c == nil {
		return nil
	}
	return c[category]
}

// IsEmpty reports whether none of the known categories holds a path.
func (c ChangeSet) IsEmpty() bool {
	return len(c.Files(ChangeAdded)) == 0 &&
		len(c.Files(ChangeModified)) == 0 &&
		len(c.Files(ChangeRemoved)) == 0
}

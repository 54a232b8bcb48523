package store

import "time"

// Member kinds recorded in member_outcomes.
const (
	KindAccessor = "accessor"
	KindFunction = "function"
	KindValue    = "value"
)

// Composition is one Extend call.
type Composition struct {
	ID          int64
	Host        string
	Source      string
	SourceKind  string
	Config      string
	Registered  bool
	AccessorsOK bool
	DataOK      bool
	Result      bool
	CreatedAt   time.Time
}

// MemberOutcome is the verdict for one member considered during a
// composition. Reason is empty for installed members.
type MemberOutcome struct {
	ID            int64
	CompositionID int64
	Level         int
	Shape         string
	Name          string
	Kind          string
	Installed     bool
	Reason        string
}

// Registration records a source entering a host's extension set, either
// directly or through the source's own extensions.
type Registration struct {
	ID            int64
	CompositionID int64
	Host          string
	Extension     string
	Direct        bool
}

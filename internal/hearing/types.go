package hearing

// #region role

// Role is the closed set of participants a turn can be attributed to.
// Free-form speaker strings are not used anywhere turn attribution matters.
type Role string

const (
	RoleProponent  Role = "prosecutor"
	RoleRespondent Role = "defense"
	RoleArbiter    Role = "judge"
)

// #endregion

// #region turn

// Turn is one role's single utterance. Immutable once appended.
type Turn struct {
	Speaker Role
	Text    string
}

// #endregion

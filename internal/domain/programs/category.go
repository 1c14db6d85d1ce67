package programs

// Category fields are stored as free text. The types below are the closed views the
// read path hands to presentation; any string outside the known set maps to the
// Unknown variant and the neutral style.

const StyleNeutral = "gray"

type DeadlineKind string

const (
	DeadlineApplication  DeadlineKind = "application"
	DeadlineProject      DeadlineKind = "project"
	DeadlineInterview    DeadlineKind = "interview"
	DeadlineNotification DeadlineKind = "notification"
	DeadlineUnknown      DeadlineKind = "unknown"
)

var deadlineStyles = map[DeadlineKind]string{
	DeadlineApplication:  "red",
	DeadlineProject:      "blue",
	DeadlineInterview:    "green",
	DeadlineNotification: "yellow",
}

func ParseDeadlineKind(raw string) DeadlineKind {
	k := DeadlineKind(raw)
	if _, ok := deadlineStyles[k]; ok {
		return k
	}
	return DeadlineUnknown
}

func (k DeadlineKind) Style() string { return styleOr(deadlineStyles[k]) }

type PersonRole string

const (
	RoleProfessor  PersonRole = "professor"
	RoleResearcher PersonRole = "researcher"
	RoleContact    PersonRole = "contact"
	RoleAdvisor    PersonRole = "advisor"
	RoleUnknown    PersonRole = "unknown"
)

var roleStyles = map[PersonRole]string{
	RoleProfessor:  "purple",
	RoleResearcher: "blue",
	RoleContact:    "green",
	RoleAdvisor:    "orange",
}

func ParsePersonRole(raw string) PersonRole {
	r := PersonRole(raw)
	if _, ok := roleStyles[r]; ok {
		return r
	}
	return RoleUnknown
}

func (r PersonRole) Style() string { return styleOr(roleStyles[r]) }

type LinkKind string

const (
	LinkWebsite       LinkKind = "website"
	LinkApplication   LinkKind = "application"
	LinkResearch      LinkKind = "research"
	LinkDocumentation LinkKind = "documentation"
	LinkUnknown       LinkKind = "unknown"
)

var linkStyles = map[LinkKind]string{
	LinkWebsite:       "blue",
	LinkApplication:   "red",
	LinkResearch:      "purple",
	LinkDocumentation: "green",
}

func ParseLinkKind(raw string) LinkKind {
	k := LinkKind(raw)
	if _, ok := linkStyles[k]; ok {
		return k
	}
	return LinkUnknown
}

func (k LinkKind) Style() string { return styleOr(linkStyles[k]) }

type ProgramKind string

const (
	ProgramPhD        ProgramKind = "PhD"
	ProgramMasters    ProgramKind = "Masters"
	ProgramPostdoc    ProgramKind = "Postdoc"
	ProgramInternship ProgramKind = "Internship"
	ProgramUnknown    ProgramKind = "unknown"
)

var programStyles = map[ProgramKind]string{
	ProgramPhD:        "indigo",
	ProgramMasters:    "teal",
	ProgramPostdoc:    "pink",
	ProgramInternship: "orange",
}

func ParseProgramKind(raw string) ProgramKind {
	k := ProgramKind(raw)
	if _, ok := programStyles[k]; ok {
		return k
	}
	return ProgramUnknown
}

func (k ProgramKind) Style() string { return styleOr(programStyles[k]) }

func styleOr(s string) string {
	if s == "" {
		return StyleNeutral
	}
	return s
}

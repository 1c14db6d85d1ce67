package domain

import (
	"github.com/yungbote/researchtrack-backend/internal/domain/programs"
)

type Program = programs.Program
type Deadline = programs.Deadline
type Person = programs.Person
type Link = programs.Link
type ProgramMetadata = programs.ProgramMetadata

type DeadlineKind = programs.DeadlineKind
type PersonRole = programs.PersonRole
type LinkKind = programs.LinkKind
type ProgramKind = programs.ProgramKind

const DefaultProgramStatus = programs.DefaultStatus

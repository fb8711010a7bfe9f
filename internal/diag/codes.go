package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Alias registry errors (2000-2999)
	AlsInfo                  Code = 2000
	AlsRedefinitionConflict  Code = 2001 // same alias, different attribute set, one TU
	AlsNotVisible            Code = 2002 // alias referenced before its declaration point
	AlsRequiredUnknown       Code = 2003 // required:: name with no definition in the TU
	AlsExpansionInvalid      Code = 2004 // alias target references another alias or itself
	AlsMalformedName         Code = 2005 // fewer than two segments (three for required::)
	AlsCrossUnitDisagreement Code = 2006 // program-scope policy: same alias differs across TUs

	// Resolution (3000-3999)
	ResInfo Code = 3000

	// I/O and unit descriptions (4000-4999)
	IOLoadFileError  Code = 4001
	IOUnitParseError Code = 4002

	// Whole-program consistency (5000-5999)
	ChkInfo                     Code = 5000
	ChkInconsistentNamespace    Code = 5001 // occurrences disagree on a must-match class
	ChkOccurrenceMissingResolve Code = 5002 // occurrence skipped: its TU failed to resolve
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	AlsInfo:                     "Alias information",
	AlsRedefinitionConflict:     "Alias redefined with a different attribute set",
	AlsNotVisible:               "Alias used before its declaration",
	AlsRequiredUnknown:          "Required alias has no definition in this translation unit",
	AlsExpansionInvalid:         "Alias target must be a flat attribute list",
	AlsMalformedName:            "Malformed qualified alias name",
	AlsCrossUnitDisagreement:    "Alias definitions disagree across translation units",
	ResInfo:                     "Resolution information",
	IOLoadFileError:             "I/O load file error",
	IOUnitParseError:            "Unit description parse error",
	ChkInfo:                     "Consistency information",
	ChkInconsistentNamespace:    "Inconsistent namespace attributes",
	ChkOccurrenceMissingResolve: "Namespace occurrence excluded from consistency check",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("ALS%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CHK%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

package academic

import (
	"errors"
	"regexp"
	"strconv"
)

// AdmissionType distinguishes how a student entered the programme.
type AdmissionType string

const (
	AdmissionRegular AdmissionType = "REGULAR"
	AdmissionLateral AdmissionType = "LATERAL"
)

// ErrUnparseableRoll is returned for any identifier that does not match the
// institution roll number format. Callers should treat it as "format not
// recognized" rather than a partial decode.
var ErrUnparseableRoll = errors.New("roll number format not recognized")

// institutionCode is baked into every roll number issued by the college.
const institutionCode = "567"

// branchNames maps the two digit branch segment to the branch short name.
var branchNames = map[string]string{
	"01": "CIVIL",
	"02": "EEE",
	"03": "MECH",
	"04": "ECE",
	"05": "CSE",
	"12": "IT",
	"57": "CSD",
}

var (
	regularPattern = regexp.MustCompile(`^(\d{2})` + institutionCode + `T(\d{2})(\d{2})$`)
	lateralPattern = regexp.MustCompile(`^(\d{2})` + institutionCode + `(\d{2})(\d{2})L$`)
)

// RollNumber carries every fact derivable from a student identifier. It is
// produced exclusively by ParseRollNumber; no other code may re-derive branch,
// entry year or admission type by slicing the raw string.
type RollNumber struct {
	Raw        string        `json:"raw"`
	EntryYear  int           `json:"entry_year"`
	BranchCode string        `json:"branch_code"`
	Branch     string        `json:"branch"`
	Admission  AdmissionType `json:"admission_type"`
	Serial     int           `json:"serial"`
}

// ParseRollNumber decodes a raw identifier into its components. It tries the
// regular pattern first, then the lateral one. Any mismatch, unknown branch
// code or out of range serial yields ErrUnparseableRoll with no partial
// result.
func ParseRollNumber(raw string) (RollNumber, error) {
	admission := AdmissionRegular
	match := regularPattern.FindStringSubmatch(raw)
	if match == nil {
		match = lateralPattern.FindStringSubmatch(raw)
		admission = AdmissionLateral
	}
	if match == nil {
		return RollNumber{}, ErrUnparseableRoll
	}

	branchCode := match[2]
	branch, ok := branchNames[branchCode]
	if !ok {
		return RollNumber{}, ErrUnparseableRoll
	}

	serial, err := strconv.Atoi(match[3])
	if err != nil || serial < 1 || serial > 99 {
		return RollNumber{}, ErrUnparseableRoll
	}

	yearSegment, err := strconv.Atoi(match[1])
	if err != nil {
		return RollNumber{}, ErrUnparseableRoll
	}

	return RollNumber{
		Raw:        raw,
		EntryYear:  2000 + yearSegment,
		BranchCode: branchCode,
		Branch:     branch,
		Admission:  admission,
		Serial:     serial,
	}, nil
}

// BranchName resolves a branch code without going through a full parse.
// Intended for admin screens that work with stored codes.
func BranchName(code string) (string, bool) {
	name, ok := branchNames[code]
	return name, ok
}

// Branches returns the known branch short names.
func Branches() []string {
	names := make([]string, 0, len(branchNames))
	for _, name := range branchNames {
		names = append(names, name)
	}
	return names
}

// MaxStudyYears is the programme length for the given admission type.
// Lateral entrants join directly into the second year.
func MaxStudyYears(admission AdmissionType) int {
	if admission == AdmissionLateral {
		return 3
	}
	return 4
}

package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRollNumberRegularAllBranches(t *testing.T) {
	expected := map[string]string{
		"01": "CIVIL",
		"02": "EEE",
		"03": "MECH",
		"04": "ECE",
		"05": "CSE",
		"12": "IT",
		"57": "CSD",
	}
	for code, name := range expected {
		rn, err := ParseRollNumber("23567T" + code + "42")
		require.NoError(t, err, "branch %s", code)
		assert.Equal(t, name, rn.Branch)
		assert.Equal(t, code, rn.BranchCode)
		assert.Equal(t, 2023, rn.EntryYear)
		assert.Equal(t, AdmissionRegular, rn.Admission)
		assert.Equal(t, 42, rn.Serial)
	}
}

func TestParseRollNumberLateralAllBranches(t *testing.T) {
	for code := range map[string]string{"01": "", "02": "", "03": "", "04": "", "05": "", "12": "", "57": ""} {
		rn, err := ParseRollNumber("24567" + code + "07L")
		require.NoError(t, err, "branch %s", code)
		assert.Equal(t, AdmissionLateral, rn.Admission)
		assert.Equal(t, 2024, rn.EntryYear)
		assert.Equal(t, 7, rn.Serial)
	}
}

func TestParseRollNumberInvalidInputs(t *testing.T) {
	cases := []string{
		"",
		"23567T05",      // too short
		"23567T054211",  // too long
		"23567X0542",    // wrong admission marker
		"23999T0542",    // wrong institution code
		"23567T9942",    // unknown branch code
		"23567990 2L",   // garbage
		"23567T0500",    // serial below range
		"2356705100L",   // serial segment three digits shifts the shape
		"ab567T0542",    // non numeric year
		"roll-23567T05", // prefix noise
	}
	for _, raw := range cases {
		rn, err := ParseRollNumber(raw)
		assert.ErrorIs(t, err, ErrUnparseableRoll, "input %q", raw)
		assert.Zero(t, rn, "input %q must not yield partial results", raw)
	}
}

func TestParseRollNumberSerialBoundaries(t *testing.T) {
	rn, err := ParseRollNumber("23567T0501")
	require.NoError(t, err)
	assert.Equal(t, 1, rn.Serial)

	rn, err = ParseRollNumber("23567T0599")
	require.NoError(t, err)
	assert.Equal(t, 99, rn.Serial)

	_, err = ParseRollNumber("23567T0500")
	assert.ErrorIs(t, err, ErrUnparseableRoll)
}

func TestBranchName(t *testing.T) {
	name, ok := BranchName("05")
	require.True(t, ok)
	assert.Equal(t, "CSE", name)

	_, ok = BranchName("99")
	assert.False(t, ok)
}

func TestMaxStudyYears(t *testing.T) {
	assert.Equal(t, 4, MaxStudyYears(AdmissionRegular))
	assert.Equal(t, 3, MaxStudyYears(AdmissionLateral))
}

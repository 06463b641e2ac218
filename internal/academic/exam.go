package academic

// defaultQualifyingExam is the state entrance exam most admissions come
// through.
const defaultQualifyingExam = "EAMCET"

// InferQualifyingExam suggests a qualifying exam label for form pre-fill.
// Branch specific inference is not wired up yet; every roll number maps to
// the default and the value stays overridable at every call site.
func InferQualifyingExam(rn RollNumber) string {
	return defaultQualifyingExam
}

package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData carries everything the certificate letter needs.
type CertificateData struct {
	CollegeName  string
	CollegePlace string
	Title        string
	SerialNo     string
	StudentName  string
	FatherName   string
	RollNumber   string
	Branch       string
	StudyYear    string
	Semester     string
	AcademicYear string
	Purpose      string
	IssuedOn     time.Time
}

// CertificatePDF renders institutional certificates as A4 letters.
type CertificatePDF struct{}

// NewCertificatePDF constructs a certificate renderer.
func NewCertificatePDF() *CertificatePDF {
	return &CertificatePDF{}
}

// Render produces the certificate PDF bytes.
func (e *CertificatePDF) Render(data CertificateData) ([]byte, error) {
	if data.StudentName == "" || data.RollNumber == "" {
		return nil, fmt.Errorf("certificate requires student name and roll number")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 25, 20)
	pdf.AddPage()

	pdf.SetFont("Times", "B", 18)
	pdf.CellFormat(0, 10, strings.ToUpper(data.CollegeName), "", 1, "C", false, 0, "")
	if data.CollegePlace != "" {
		pdf.SetFont("Times", "", 12)
		pdf.CellFormat(0, 7, data.CollegePlace, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
	pdf.SetLineWidth(0.6)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(10)

	pdf.SetFont("Times", "BU", 15)
	pdf.CellFormat(0, 9, strings.ToUpper(data.Title), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Times", "", 10)
	pdf.CellFormat(95, 6, fmt.Sprintf("Serial No: %s", data.SerialNo), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", data.IssuedOn.Format("02-01-2006")), "", 1, "R", false, 0, "")
	pdf.Ln(8)

	body := e.bodyText(data)
	pdf.SetFont("Times", "", 12)
	pdf.MultiCell(0, 8, body, "", "J", false)
	pdf.Ln(25)

	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(0, 7, "PRINCIPAL", "", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *CertificatePDF) bodyText(data CertificateData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This is to certify that %s", data.StudentName)
	if data.FatherName != "" {
		fmt.Fprintf(&b, ", S/o / D/o %s,", data.FatherName)
	}
	fmt.Fprintf(&b, " bearing roll number %s is a bonafide student of this institution", data.RollNumber)
	if data.Branch != "" {
		fmt.Fprintf(&b, ", studying %s year (%s semester) in the Department of %s", data.StudyYear, data.Semester, data.Branch)
	}
	if data.AcademicYear != "" {
		fmt.Fprintf(&b, " during the academic year %s", data.AcademicYear)
	}
	b.WriteString(".")
	if data.Purpose != "" {
		fmt.Fprintf(&b, " This certificate is issued for the purpose of %s.", data.Purpose)
	}
	return b.String()
}

package certificate

import (
	"strings"
	"time"

	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/localnerve/wpq-drafts/internal/services"
)

const (
	Title         = "WELDER PERFORMANCE QUALIFICATION RECORD"
	printedLayout = "02-Jan-2006"
)

// Certificate is a stored record flattened for printing.
type Certificate struct {
	Title  string `json:"title"`
	Header Header `json:"header"`
	// PhotoURL and SignatureURL are empty when no file was submitted.
	PhotoURL     string             `json:"photoUrl,omitempty"`
	SignatureURL string             `json:"signatureUrl,omitempty"`
	Description  []Field            `json:"description"`
	Variables    []VariableRow      `json:"variables"`
	VisualExam   string             `json:"visualExam"`
	TestTypes    []string           `json:"testTypes"`
	TestResults  []draft.TestResult `json:"testResults"`
	Remarks      []Field            `json:"remarks"`
	Continuity   []ContinuityRow    `json:"continuity"`
	CodeYear     string             `json:"codeYear"`
	Signers      []Signer           `json:"signers"`
	FormNo       string             `json:"formNo"`
}

type Header struct {
	CertificateNo    string `json:"certificateNo"`
	WelderName       string `json:"welderName"`
	SymbolStampNo    string `json:"symbolStampNo"`
	ClientContractor string `json:"clientContractor"`
	IqamaPassport    string `json:"iqamaPassport"`
	DateWelded       string `json:"dateWelded"`
	DateOfBirth      string `json:"dateOfBirth"`
}

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type VariableRow struct {
	Label  string `json:"label"`
	Actual string `json:"actual"`
	Range  string `json:"range"`
}

type ContinuityRow struct {
	Date         string `json:"date"`
	Verifier     string `json:"verifier"`
	SignatureURL string `json:"signatureUrl,omitempty"`
	Company      string `json:"company"`
	Reference    string `json:"reference"`
	QCName       string `json:"qcName"`
	QCSignature  string `json:"qcSignatureUrl,omitempty"`
}

type Signer struct {
	Role         string `json:"role"`
	Name         string `json:"name"`
	Date         string `json:"date"`
	SignatureURL string `json:"signatureUrl,omitempty"`
}

// Build flattens r into print rows. Dates are printed as 06-May-2024;
// values that are not dates are printed unchanged.
func Build(r *services.Record) Certificate {
	f := r.Form
	bi := f.BasicInfo

	cert := Certificate{
		Title: Title,
		Header: Header{
			CertificateNo:    bi.CertificateNo,
			WelderName:       bi.WelderName,
			SymbolStampNo:    bi.SymbolStampNo,
			ClientContractor: bi.ClientContractor,
			IqamaPassport:    bi.IqamaPassport,
			DateWelded:       printDate(bi.DateWelded),
			DateOfBirth:      printDate(bi.DateOfBirth),
		},
		PhotoURL:     bi.PhotoPreview,
		SignatureURL: bi.SignaturePreview,
		Description: []Field{
			{"WPS Identification", f.TestDescription.WPSIdentification},
			{"WPS Type", wpsTypeLabel(f.TestDescription.WPSType)},
			{"Base Metal Specification", f.TestDescription.BaseMetalSpec},
			{"Thickness (mm)", f.TestDescription.ThicknessMm},
		},
		Variables:   variables(f),
		VisualExam:  f.Results.VisualExam,
		TestTypes:   append([]string{}, f.Results.TestTypes...),
		TestResults: testResults(f.Results.TestResults),
		Remarks:     remarks(f.Results),
		CodeYear:    f.Continuity.CodeYear,
		FormNo:      f.Continuity.FormNo,
		Signers: []Signer{
			{"Certified by", f.Continuity.CertifiedName, printDate(f.Continuity.CertifiedDate), f.Continuity.CertifiedSignatureURL},
			{"Reviewed by", f.Continuity.ReviewedByName, printDate(f.Continuity.ReviewedByDate), f.Continuity.ReviewedBySignatureURL},
			{"Approved by", f.Continuity.ApprovedByName, printDate(f.Continuity.ApprovedByDate), f.Continuity.ApprovedBySignatureURL},
		},
	}

	for _, e := range f.Continuity.ContinuityRecords {
		cert.Continuity = append(cert.Continuity, ContinuityRow{
			Date:         printDate(e.Date),
			Verifier:     e.Verifier,
			SignatureURL: e.VerifierSignatureURL,
			Company:      e.Company,
			Reference:    e.Reference,
			QCName:       e.QCName,
			QCSignature:  e.QCSignatureURL,
		})
	}
	return cert
}

func variables(f draft.FormDraft) []VariableRow {
	v1, v2 := f.TestingVars1, f.TestingVars2
	return []VariableRow{
		{"Welding Process(es)", v1.WeldingProcessActual, v1.WeldingProcessRange},
		{"Type (manual, semi-automatic)", v1.ProcessTypeActual, v1.ProcessTypeRange},
		{"Backing", v1.BackingActual, v1.BackingRange},
		{"Plate / Pipe", v1.PlatePipeActual, v1.PlatePipeRange},
		{"Base Metal P-Number to P-Number", v1.BaseMetalPNoActual, v1.BaseMetalPNoRange},
		{"Filler Metal Specification (SFA)", v1.FillerSpecActual, v1.FillerSpecRange},
		{"Filler Metal Classification", v1.FillerClassActual, v1.FillerClassRange},
		{"Filler Metal F-Number", v1.FillerFNoActual, v1.FillerFNoRange},
		{"Consumable Insert", v1.ConsumableInsertActual, v1.ConsumableInsertRange},
		{"Filler Metal Product Form", v1.FillerProductFormActual, v1.FillerProductFormRange},
		{"Deposit Thickness", v2.DepositThicknessActual, v2.DepositThicknessRange},
		{"Welding Position", v2.PositionActual, v2.PositionRange},
		{"Vertical Progression", v2.VerticalProgressionActual, v2.VerticalProgressionRange},
		{"Type of Fuel Gas", v2.FuelGasTypeActual, v2.FuelGasTypeRange},
		{"Inert Gas Backing", v2.InertGasBackingActual, v2.InertGasBackingRange},
		{"Transfer Mode", v2.TransferModeActual, v2.TransferModeRange},
		{"Current Type / Polarity", v2.CurrentPolarityActual, v2.CurrentPolarityRange},
		{"Machine Welding Control", v2.MachineControlActual, v2.MachineControlRange},
	}
}

// testResults always yields the fixed number of rows.
func testResults(rows []draft.TestResult) []draft.TestResult {
	out := make([]draft.TestResult, draft.TestResultRows)
	copy(out, rows)
	return out
}

func remarks(r draft.Results) []Field {
	all := []Field{
		{"Alternative Volumetric Examination", r.AlternativeVolumetric},
		{"Fillet Weld Fracture Test", r.FilletWeldFracture},
		{"Macro Examination", r.MacroExam},
		{"Fillet Size", r.FilletSize},
		{"Concavity / Convexity", r.ConcavityConvexity},
		{"Film Evaluated By", r.FilmEvaluatedBy},
		{"Company", r.FilmCompany},
		{"Mechanical Tests Conducted By", r.MechanicalTestsBy},
		{"Laboratory Test No.", r.LabTestNo},
		{"Welding Supervised By", r.WeldingSupervisedBy},
	}
	var out []Field
	for _, f := range all {
		if strings.TrimSpace(f.Value) != "" {
			out = append(out, f)
		}
	}
	return out
}

func wpsTypeLabel(t string) string {
	switch t {
	case draft.WPSTypeTestCoupon:
		return "Test Coupon"
	case draft.WPSTypeProductionWeld:
		return "Production Weld"
	}
	return t
}

func printDate(s string) string {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format(printedLayout)
}

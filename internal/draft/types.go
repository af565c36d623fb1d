package draft

import (
	"github.com/localnerve/wpq-drafts/internal/types"
)

// Section names one of the six top-level groupings of a FormDraft.
type Section string

const (
	SectionBasicInfo       Section = "basicInfo"
	SectionTestDescription Section = "testDescription"
	SectionTestingVars1    Section = "testingVars1"
	SectionTestingVars2    Section = "testingVars2"
	SectionResults         Section = "results"
	SectionContinuity      Section = "continuity"
)

// Sections lists every section in form order.
var Sections = []Section{
	SectionBasicInfo,
	SectionTestDescription,
	SectionTestingVars1,
	SectionTestingVars2,
	SectionResults,
	SectionContinuity,
}

// ParseSection maps a section key to a Section.
func ParseSection(key string) (Section, bool) {
	for _, s := range Sections {
		if string(s) == key {
			return s, true
		}
	}
	return "", false
}

const (
	WPSTypeTestCoupon     = "test-coupon"
	WPSTypeProductionWeld = "production-weld"

	VisualExamAccepted = "Accepted"
	VisualExamRejected = "Rejected"

	// FormNoPrefix is carried by every non-empty form number.
	FormNoPrefix = "ISS-ML-WPQ-"

	// TestResultRows is the fixed length of Results.TestResults.
	TestResultRows = 6

	// MaxContinuityEntries bounds Continuity.ContinuityRecords.
	MaxContinuityEntries = 10
)

// FileHandle references an uploaded file that has not been submitted yet.
// Handles are transient: they are nulled on every persistence write.
type FileHandle struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// FormDraft is the in-progress content of one new certificate record.
// Required fields are listed in RequiredFields; the validate tags carry the
// format rules of filled fields.
type FormDraft struct {
	BasicInfo       BasicInfo       `json:"basicInfo"`
	TestDescription TestDescription `json:"testDescription"`
	TestingVars1    TestingVars1    `json:"testingVars1"`
	TestingVars2    TestingVars2    `json:"testingVars2"`
	Results         Results         `json:"results"`
	Continuity      Continuity      `json:"continuity"`
}

// BasicInfo holds the welder identity and certificate header.
type BasicInfo struct {
	CertificateNo    string      `json:"certificateNo"`
	WelderName       string      `json:"welderName"`
	WelderNameShort  string      `json:"welderNameShort"`
	SymbolStampNo    string      `json:"symbolStampNo"`
	ClientContractor string      `json:"clientContractor"`
	ClientNameShort  string      `json:"clientNameShort"`
	IqamaPassport    string      `json:"iqamaPassport" validate:"omitempty,min=10"`
	DateWelded       string      `json:"dateWelded" validate:"omitempty,datetime=2006-01-02"`
	DateOfBirth      string      `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Photo            *FileHandle `json:"photo"`
	PhotoPreview     string      `json:"photoPreview"`
	Signature        *FileHandle `json:"signature"`
	SignaturePreview string      `json:"signaturePreview"`
}

// TestDescription describes the WPS and base metal.
type TestDescription struct {
	WPSIdentification string `json:"wpsIdentification"`
	WPSType           string `json:"wpsType" validate:"oneof=test-coupon production-weld"`
	BaseMetalSpec     string `json:"baseMetalSpec"`
	ThicknessMm       string `json:"thicknessMm" validate:"omitempty,numeric,excludesall=+-"`
}

// TestingVars1 holds the process and filler metal variables.
type TestingVars1 struct {
	WeldingProcessActual    string `json:"weldingProcessActual"`
	WeldingProcessRange     string `json:"weldingProcessRange"`
	ProcessTypeActual       string `json:"processTypeActual"`
	ProcessTypeRange        string `json:"processTypeRange"`
	BackingActual           string `json:"backingActual"`
	BackingRange            string `json:"backingRange"`
	PlatePipeActual         string `json:"platePipeActual"`
	PlatePipeRange          string `json:"platePipeRange"`
	BaseMetalPNoActual      string `json:"baseMetalPNoActual"`
	BaseMetalPNoRange       string `json:"baseMetalPNoRange"`
	FillerSpecActual        string `json:"fillerSpecActual"`
	FillerSpecRange         string `json:"fillerSpecRange"`
	FillerClassActual       string `json:"fillerClassActual"`
	FillerClassRange        string `json:"fillerClassRange"`
	FillerFNoActual         string `json:"fillerFNoActual"`
	FillerFNoRange          string `json:"fillerFNoRange"`
	ConsumableInsertActual  string `json:"consumableInsertActual"`
	ConsumableInsertRange   string `json:"consumableInsertRange"`
	FillerProductFormActual string `json:"fillerProductFormActual"`
	FillerProductFormRange  string `json:"fillerProductFormRange"`
}

// TestingVars2 holds the deposit, position and electrical variables.
type TestingVars2 struct {
	DepositThicknessActual    string `json:"depositThicknessActual"`
	DepositThicknessRange     string `json:"depositThicknessRange"`
	PositionActual            string `json:"positionActual"`
	PositionRange             string `json:"positionRange"`
	VerticalProgressionActual string `json:"verticalProgressionActual"`
	VerticalProgressionRange  string `json:"verticalProgressionRange"`
	FuelGasTypeActual         string `json:"fuelGasTypeActual"`
	FuelGasTypeRange          string `json:"fuelGasTypeRange"`
	InertGasBackingActual     string `json:"inertGasBackingActual"`
	InertGasBackingRange      string `json:"inertGasBackingRange"`
	TransferModeActual        string `json:"transferModeActual"`
	TransferModeRange         string `json:"transferModeRange"`
	CurrentPolarityActual     string `json:"currentPolarityActual"`
	CurrentPolarityRange      string `json:"currentPolarityRange"`
	MachineControlActual      string `json:"machineControlActual"`
	MachineControlRange       string `json:"machineControlRange"`
}

// TestResult is one row of the results table.
type TestResult struct {
	Type   string `json:"type"`
	Result string `json:"result"`
}

// Results holds the test outcomes.
type Results struct {
	VisualExam            string                 `json:"visualExam" validate:"omitempty,oneof=Accepted Rejected"`
	TestTypes             types.FlexList[string] `json:"testTypes"`
	TestResults           []TestResult           `json:"testResults" validate:"len=6"`
	AlternativeVolumetric string                 `json:"alternativeVolumetric"`
	FilletWeldFracture    string                 `json:"filletWeldFracture"`
	MacroExam             string                 `json:"macroExam"`
	FilletSize            string                 `json:"filletSize"`
	ConcavityConvexity    string                 `json:"concavityConvexity"`
	FilmEvaluatedBy       string                 `json:"filmEvaluatedBy"`
	FilmCompany           string                 `json:"filmCompany"`
	MechanicalTestsBy     string                 `json:"mechanicalTestsBy"`
	LabTestNo             string                 `json:"labTestNo"`
	WeldingSupervisedBy   string                 `json:"weldingSupervisedBy"`
}

// ContinuityEntry is one row of the ongoing-qualification log. ID is a list
// key only.
type ContinuityEntry struct {
	ID                   string      `json:"id"`
	Date                 string      `json:"date" validate:"required,datetime=2006-01-02"`
	Verifier             string      `json:"verifier"`
	VerifierSignature    *FileHandle `json:"verifierSignature"`
	VerifierSignatureURL string      `json:"verifierSignatureUrl"`
	Company              string      `json:"company"`
	Reference            string      `json:"reference"`
	QCName               string      `json:"qcName"`
	QCSignature          *FileHandle `json:"qcSignature"`
	QCSignatureURL       string      `json:"qcSignatureUrl"`
}

// Continuity holds the continuity log and the certification signer blocks.
type Continuity struct {
	ContinuityRecords      []ContinuityEntry `json:"continuityRecords" validate:"min=1,max=10,dive"`
	CodeYear               string            `json:"codeYear" validate:"omitempty,len=4,number"`
	CertifiedDate          string            `json:"certifiedDate" validate:"omitempty,datetime=2006-01-02"`
	CertifiedName          string            `json:"certifiedName"`
	CertifiedSignature     *FileHandle       `json:"certifiedSignature"`
	CertifiedSignatureURL  string            `json:"certifiedSignatureUrl"`
	FormNo                 string            `json:"formNo" validate:"omitempty,startswith=ISS-ML-WPQ-,min=12"`
	ReviewedByName         string            `json:"reviewedByName"`
	ReviewedByDate         string            `json:"reviewedByDate" validate:"omitempty,datetime=2006-01-02"`
	ReviewedBySignature    *FileHandle       `json:"reviewedBySignature"`
	ReviewedBySignatureURL string            `json:"reviewedBySignatureUrl"`
	ApprovedByName         string            `json:"approvedByName"`
	ApprovedByDate         string            `json:"approvedByDate" validate:"omitempty,datetime=2006-01-02"`
	ApprovedBySignature    *FileHandle       `json:"approvedBySignature"`
	ApprovedBySignatureURL string            `json:"approvedBySignatureUrl"`
}

package validation

import (
	"testing"

	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/stretchr/testify/assert"
)

func completeDraft() draft.FormDraft {
	d := draft.DefaultDraft(draft.NewID)
	d.BasicInfo = draft.BasicInfo{
		CertificateNo:    "CERT-001",
		WelderName:       "Jane Doe",
		WelderNameShort:  "J Doe",
		SymbolStampNo:    "S1",
		ClientContractor: "ACME",
		ClientNameShort:  "ACM",
		IqamaPassport:    "1234567890",
		DateWelded:       "2024-01-01",
		DateOfBirth:      "1990-01-01",
	}
	d.TestDescription.WPSIdentification = "WPS-1"
	d.TestDescription.BaseMetalSpec = "SA106"
	d.TestDescription.ThicknessMm = "12.5"
	d.Results.VisualExam = draft.VisualExamAccepted
	d.Continuity.ContinuityRecords[0].Date = "2024-01-02"
	d.Continuity.CodeYear = "2024"
	d.Continuity.CertifiedDate = "2024-01-03"
	d.Continuity.CertifiedName = "Supervisor"
	d.Continuity.FormNo = "ISS-ML-WPQ-001"
	return d
}

func TestValidateAllComplete(t *testing.T) {
	r := ValidateAll(completeDraft())
	assert.True(t, r.Success, r.Errors)
	assert.Empty(t, r.Errors)
}

func TestValidateAllDefaultDraftListsRequired(t *testing.T) {
	d := draft.DefaultDraft(draft.NewID)
	r := ValidateAll(d)

	assert.False(t, r.Success)
	for _, f := range draft.RequiredFields {
		assert.Contains(t, r.Errors, f.Name)
	}
	assert.Equal(t, "is required", r.Errors["continuityRecords.0.date"])
}

func TestValidateSectionIqamaLength(t *testing.T) {
	d := completeDraft()
	d.BasicInfo.IqamaPassport = "12345"

	r := ValidateSection(draft.SectionBasicInfo, d)
	assert.False(t, r.Success)
	assert.Equal(t, "must be at least 10 characters", r.Errors["iqamaPassport"])
}

func TestValidateSectionIqamaCountsCharacters(t *testing.T) {
	d := completeDraft()
	d.BasicInfo.IqamaPassport = "١٢٣٤٥٦٧٨٩٠"
	assert.True(t, ValidateSection(draft.SectionBasicInfo, d).Success)

	d.BasicInfo.IqamaPassport = "١٢٣٤٥"
	r := ValidateSection(draft.SectionBasicInfo, d)
	assert.Equal(t, "must be at least 10 characters", r.Errors["iqamaPassport"])
}

func TestValidateSectionMessages(t *testing.T) {
	d := completeDraft()
	d.BasicInfo.DateOfBirth = "1990-02-30"
	d.TestDescription.WPSType = "coupon"
	d.TestDescription.ThicknessMm = "-3"
	d.Continuity.CodeYear = "２０２４"
	d.Continuity.FormNo = draft.FormNoPrefix

	r := ValidateAll(d)
	assert.Equal(t, map[string]string{
		"dateOfBirth": "must be a date (YYYY-MM-DD)",
		"wpsType":     `must be "test-coupon" or "production-weld"`,
		"thicknessMm": "must be a number",
		"codeYear":    "must be 4 digits",
		"formNo":      "must be ISS-ML-WPQ- followed by a number",
	}, r.Errors)
}

func TestValidateSectionBasicInfoDates(t *testing.T) {
	d := completeDraft()
	d.BasicInfo.DateWelded = "01/02/2024"

	r := ValidateSection(draft.SectionBasicInfo, d)
	assert.Contains(t, r.Errors, "dateWelded")
	assert.Len(t, r.Errors, 1)
}

func TestValidateSectionTestDescription(t *testing.T) {
	d := completeDraft()
	d.TestDescription.WPSType = "coupon"
	d.TestDescription.ThicknessMm = "12mm"

	r := ValidateSection(draft.SectionTestDescription, d)
	assert.Contains(t, r.Errors, "wpsType")
	assert.Contains(t, r.Errors, "thicknessMm")
}

func TestValidateSectionResults(t *testing.T) {
	d := completeDraft()
	d.Results.VisualExam = "Maybe"
	d.Results.TestResults = d.Results.TestResults[:4]

	r := ValidateSection(draft.SectionResults, d)
	assert.Contains(t, r.Errors, "visualExam")
	assert.Contains(t, r.Errors, "testResults")
}

func TestValidateSectionContinuity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*draft.FormDraft)
		field  string
	}{
		{"code year length", func(d *draft.FormDraft) { d.Continuity.CodeYear = "24" }, "codeYear"},
		{"form number prefix", func(d *draft.FormDraft) { d.Continuity.FormNo = "WPQ-001" }, "formNo"},
		{"form number suffix", func(d *draft.FormDraft) { d.Continuity.FormNo = draft.FormNoPrefix }, "formNo"},
		{"no entries", func(d *draft.FormDraft) { d.Continuity.ContinuityRecords = nil }, "continuityRecords"},
		{"too many entries", func(d *draft.FormDraft) {
			for len(d.Continuity.ContinuityRecords) <= draft.MaxContinuityEntries {
				d.Continuity.ContinuityRecords = append(d.Continuity.ContinuityRecords, draft.ContinuityEntry{ID: "x", Date: "2024-01-01"})
			}
		}, "continuityRecords"},
		{"later entry without date", func(d *draft.FormDraft) {
			d.Continuity.ContinuityRecords = append(d.Continuity.ContinuityRecords, draft.ContinuityEntry{ID: "x"})
		}, "continuityRecords.1.date"},
		{"reviewed date format", func(d *draft.FormDraft) { d.Continuity.ReviewedByDate = "yesterday" }, "reviewedByDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := completeDraft()
			tt.mutate(&d)
			r := ValidateSection(draft.SectionContinuity, d)
			assert.False(t, r.Success)
			assert.Contains(t, r.Errors, tt.field)
		})
	}
}

func TestValidateCodeYearIsNotRangeChecked(t *testing.T) {
	d := completeDraft()
	d.Continuity.CodeYear = "1066"
	assert.True(t, ValidateSection(draft.SectionContinuity, d).Success)
}

func TestTestingVarsHaveNoRules(t *testing.T) {
	d := draft.DefaultDraft(draft.NewID)
	assert.True(t, ValidateSection(draft.SectionTestingVars1, d).Success)
	assert.True(t, ValidateSection(draft.SectionTestingVars2, d).Success)
}

package draft

import (
	"math"
	"strings"
	"unicode/utf8"
)

// RequiredField is one entry of the required-field manifest.
type RequiredField struct {
	Section Section
	// Name is the field's JSON key. Fields inside the first continuity entry
	// are named "continuityRecords.0.<key>".
	Name   string
	MinLen int
	value  func(*FormDraft) string
}

// Value returns the field's current value in d.
func (f RequiredField) Value(d *FormDraft) string {
	return f.value(d)
}

// Complete reports whether the field counts as filled in d. MinLen counts
// characters, not bytes.
func (f RequiredField) Complete(d *FormDraft) bool {
	v := strings.TrimSpace(f.value(d))
	if v == "" {
		return false
	}
	return utf8.RuneCountInString(v) >= f.MinLen
}

// IqamaMinLen is the minimum length of a filled iqama/passport number.
const IqamaMinLen = 10

// RequiredFields is the single definition of what "required" means. Progress,
// section badges and validation all read it.
var RequiredFields = []RequiredField{
	{Section: SectionBasicInfo, Name: "certificateNo", value: func(d *FormDraft) string { return d.BasicInfo.CertificateNo }},
	{Section: SectionBasicInfo, Name: "welderName", value: func(d *FormDraft) string { return d.BasicInfo.WelderName }},
	{Section: SectionBasicInfo, Name: "welderNameShort", value: func(d *FormDraft) string { return d.BasicInfo.WelderNameShort }},
	{Section: SectionBasicInfo, Name: "symbolStampNo", value: func(d *FormDraft) string { return d.BasicInfo.SymbolStampNo }},
	{Section: SectionBasicInfo, Name: "clientContractor", value: func(d *FormDraft) string { return d.BasicInfo.ClientContractor }},
	{Section: SectionBasicInfo, Name: "clientNameShort", value: func(d *FormDraft) string { return d.BasicInfo.ClientNameShort }},
	{Section: SectionBasicInfo, Name: "iqamaPassport", MinLen: IqamaMinLen, value: func(d *FormDraft) string { return d.BasicInfo.IqamaPassport }},
	{Section: SectionBasicInfo, Name: "dateWelded", value: func(d *FormDraft) string { return d.BasicInfo.DateWelded }},
	{Section: SectionBasicInfo, Name: "dateOfBirth", value: func(d *FormDraft) string { return d.BasicInfo.DateOfBirth }},

	{Section: SectionTestDescription, Name: "wpsIdentification", value: func(d *FormDraft) string { return d.TestDescription.WPSIdentification }},
	{Section: SectionTestDescription, Name: "baseMetalSpec", value: func(d *FormDraft) string { return d.TestDescription.BaseMetalSpec }},

	{Section: SectionResults, Name: "visualExam", value: func(d *FormDraft) string { return d.Results.VisualExam }},

	{Section: SectionContinuity, Name: "continuityRecords.0.date", value: firstContinuityDate},
	{Section: SectionContinuity, Name: "codeYear", value: func(d *FormDraft) string { return d.Continuity.CodeYear }},
	{Section: SectionContinuity, Name: "certifiedDate", value: func(d *FormDraft) string { return d.Continuity.CertifiedDate }},
	{Section: SectionContinuity, Name: "certifiedName", value: func(d *FormDraft) string { return d.Continuity.CertifiedName }},
	{Section: SectionContinuity, Name: "formNo", value: func(d *FormDraft) string { return d.Continuity.FormNo }},
}

func firstContinuityDate(d *FormDraft) string {
	if len(d.Continuity.ContinuityRecords) == 0 {
		return ""
	}
	return d.Continuity.ContinuityRecords[0].Date
}

// RequiredFor returns the manifest entries of one section.
func RequiredFor(section Section) []RequiredField {
	var out []RequiredField
	for _, f := range RequiredFields {
		if f.Section == section {
			out = append(out, f)
		}
	}
	return out
}

// Progress returns the completion percentage of d in [0, 100].
func Progress(d FormDraft) int {
	completed := 0
	for _, f := range RequiredFields {
		if f.Complete(&d) {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(RequiredFields))))
}

// SectionComplete reports whether every required field of section is filled.
// Sections without required fields are always complete.
func SectionComplete(d FormDraft, section Section) bool {
	for _, f := range RequiredFor(section) {
		if !f.Complete(&d) {
			return false
		}
	}
	return true
}

// SectionStatus returns SectionComplete for every section.
func SectionStatus(d FormDraft) map[Section]bool {
	out := make(map[Section]bool, len(Sections))
	for _, s := range Sections {
		out[s] = SectionComplete(d, s)
	}
	return out
}

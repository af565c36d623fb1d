package draft

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/wpq-drafts/internal/types"
)

// IDFunc generates continuity entry identifiers.
type IDFunc func() string

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

// NewContinuityEntry returns an empty continuity row with a fresh identifier.
func NewContinuityEntry(newID IDFunc) ContinuityEntry {
	return ContinuityEntry{ID: newID()}
}

// DefaultDraft builds the empty FormDraft used when nothing was stored:
// empty strings, nil handles, one continuity entry and six empty result
// rows. The code year stays empty so a fresh draft reports no progress;
// SuggestedCodeYear offers the value a form pre-fills.
func DefaultDraft(newID IDFunc) FormDraft {
	return FormDraft{
		TestDescription: TestDescription{
			WPSType: WPSTypeTestCoupon,
		},
		Results: Results{
			TestTypes:   types.FlexList[string]{},
			TestResults: make([]TestResult, TestResultRows),
		},
		Continuity: Continuity{
			ContinuityRecords: []ContinuityEntry{NewContinuityEntry(newID)},
		},
	}
}

// SuggestedCodeYear is the code year offered for a new draft.
func SuggestedCodeYear(now time.Time) string {
	return strconv.Itoa(now.Year())
}

// Clone returns a deep copy of d.
func (d FormDraft) Clone() FormDraft {
	out := d
	out.BasicInfo.Photo = cloneHandle(d.BasicInfo.Photo)
	out.BasicInfo.Signature = cloneHandle(d.BasicInfo.Signature)

	if d.Results.TestTypes != nil {
		out.Results.TestTypes = append(types.FlexList[string]{}, d.Results.TestTypes...)
	}
	if d.Results.TestResults != nil {
		out.Results.TestResults = append([]TestResult{}, d.Results.TestResults...)
	}

	c := &out.Continuity
	c.CertifiedSignature = cloneHandle(d.Continuity.CertifiedSignature)
	c.ReviewedBySignature = cloneHandle(d.Continuity.ReviewedBySignature)
	c.ApprovedBySignature = cloneHandle(d.Continuity.ApprovedBySignature)
	if d.Continuity.ContinuityRecords != nil {
		c.ContinuityRecords = make([]ContinuityEntry, len(d.Continuity.ContinuityRecords))
		for i, e := range d.Continuity.ContinuityRecords {
			e.VerifierSignature = cloneHandle(e.VerifierSignature)
			e.QCSignature = cloneHandle(e.QCSignature)
			c.ContinuityRecords[i] = e
		}
	}
	return out
}

func cloneHandle(h *FileHandle) *FileHandle {
	if h == nil {
		return nil
	}
	cp := *h
	return &cp
}

package draft

// Filter returns a copy of d that is safe to persist: every transient file
// handle is nil. Preview and URL strings, including data: and blob: URIs,
// pass through unchanged. Filter is idempotent.
func Filter(d FormDraft) FormDraft {
	out := d.Clone()

	out.BasicInfo.Photo = nil
	out.BasicInfo.Signature = nil

	out.Continuity.CertifiedSignature = nil
	out.Continuity.ReviewedBySignature = nil
	out.Continuity.ApprovedBySignature = nil

	for i := range out.Continuity.ContinuityRecords {
		out.Continuity.ContinuityRecords[i].VerifierSignature = nil
		out.Continuity.ContinuityRecords[i].QCSignature = nil
	}

	return out
}

// HasPendingFiles reports whether d still references any uploaded file that
// has not been resolved to a permanent URL.
func HasPendingFiles(d FormDraft) bool {
	pending := false
	walkFiles(&d, func(f fileSlot) {
		if *f.handle != nil {
			pending = true
		}
	})
	return pending
}

// fileSlot pairs a handle with the preview/URL string that shows it.
type fileSlot struct {
	target  FileTarget
	entryID string
	handle  **FileHandle
	preview *string
}

// walkFiles visits every handle/preview pair in d.
func walkFiles(d *FormDraft, visit func(fileSlot)) {
	visit(fileSlot{target: TargetPhoto, handle: &d.BasicInfo.Photo, preview: &d.BasicInfo.PhotoPreview})
	visit(fileSlot{target: TargetSignature, handle: &d.BasicInfo.Signature, preview: &d.BasicInfo.SignaturePreview})
	visit(fileSlot{target: TargetCertifiedSignature, handle: &d.Continuity.CertifiedSignature, preview: &d.Continuity.CertifiedSignatureURL})
	visit(fileSlot{target: TargetReviewedBySignature, handle: &d.Continuity.ReviewedBySignature, preview: &d.Continuity.ReviewedBySignatureURL})
	visit(fileSlot{target: TargetApprovedBySignature, handle: &d.Continuity.ApprovedBySignature, preview: &d.Continuity.ApprovedBySignatureURL})

	for i := range d.Continuity.ContinuityRecords {
		e := &d.Continuity.ContinuityRecords[i]
		visit(fileSlot{target: TargetVerifierSignature, entryID: e.ID, handle: &e.VerifierSignature, preview: &e.VerifierSignatureURL})
		visit(fileSlot{target: TargetQCSignature, entryID: e.ID, handle: &e.QCSignature, preview: &e.QCSignatureURL})
	}
}

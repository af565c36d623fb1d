// controller.go
//
// Draft and record service for welder performance qualification (WPQ) certificates
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of wpq-drafts.
// wpq-drafts is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// wpq-drafts is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with wpq-drafts.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package draft

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/localnerve/wpq-drafts/internal/metrics"
	"github.com/sirupsen/logrus"
)

// PreviewRevoker releases a transient local preview URL held for owner.
// URLs owned by someone else must be left alone.
type PreviewRevoker interface {
	Revoke(owner, url string)
}

type nopRevoker struct{}

func (nopRevoker) Revoke(string, string) {}

// LocalPreviewScheme prefixes preview URLs that must be revoked on reset.
const LocalPreviewScheme = "blob:"

// FileTarget names a handle/preview pair of the draft.
type FileTarget string

const (
	TargetPhoto               FileTarget = "photo"
	TargetSignature           FileTarget = "signature"
	TargetCertifiedSignature  FileTarget = "certifiedSignature"
	TargetReviewedBySignature FileTarget = "reviewedBySignature"
	TargetApprovedBySignature FileTarget = "approvedBySignature"
	// Continuity entry targets need the entry id.
	TargetVerifierSignature FileTarget = "verifierSignature"
	TargetQCSignature       FileTarget = "qcSignature"
)

var fileTargets = []FileTarget{
	TargetPhoto,
	TargetSignature,
	TargetCertifiedSignature,
	TargetReviewedBySignature,
	TargetApprovedBySignature,
	TargetVerifierSignature,
	TargetQCSignature,
}

// ParseFileTarget maps a target key to a FileTarget.
func ParseFileTarget(key string) (FileTarget, bool) {
	for _, t := range fileTargets {
		if string(t) == key {
			return t, true
		}
	}
	return "", false
}

// EntryScoped reports whether t addresses a continuity entry.
func (t FileTarget) EntryScoped() bool {
	return t == TargetVerifierSignature || t == TargetQCSignature
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) { c.log = l }
}

func WithRevoker(r PreviewRevoker) Option {
	return func(c *Controller) { c.revoker = r }
}

// WithOwner names the user whose previews the controller revokes.
func WithOwner(owner string) Option {
	return func(c *Controller) { c.owner = owner }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithIDFunc(f IDFunc) Option {
	return func(c *Controller) { c.newID = f }
}

// Controller is the single source of truth for one in-progress draft. Every
// mutation is followed by a best-effort write of the filtered draft to the
// store; store failures are logged and never returned.
type Controller struct {
	mu      sync.Mutex
	store   Store
	revoker PreviewRevoker
	owner   string
	log     logrus.FieldLogger
	now     func() time.Time
	newID   IDFunc

	draft FormDraft
}

// NewController hydrates a controller from store, falling back to the
// default draft when nothing usable is stored.
func NewController(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		revoker: nopRevoker{},
		log:     logrus.StandardLogger(),
		now:     time.Now,
		newID:   NewID,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.draft = c.hydrate()
	return c
}

func (c *Controller) hydrate() FormDraft {
	stored, err := c.store.Load()
	if err != nil {
		metrics.DraftPersistFailures.WithLabelValues("load").Inc()
		c.log.WithError(err).WithField("op", "load").Warn("Discarding stored draft")
		return DefaultDraft(c.newID)
	}
	if stored == nil {
		return DefaultDraft(c.newID)
	}
	d := *stored
	c.repair(&d)
	return d
}

// repair restores the structural floor of a stored draft: at least one
// continuity entry, entry ids, six result rows.
func (c *Controller) repair(d *FormDraft) {
	if len(d.Continuity.ContinuityRecords) == 0 {
		d.Continuity.ContinuityRecords = []ContinuityEntry{NewContinuityEntry(c.newID)}
	}
	for i := range d.Continuity.ContinuityRecords {
		if d.Continuity.ContinuityRecords[i].ID == "" {
			d.Continuity.ContinuityRecords[i].ID = c.newID()
		}
	}
	if len(d.Results.TestResults) < TestResultRows {
		rows := make([]TestResult, TestResultRows)
		copy(rows, d.Results.TestResults)
		d.Results.TestResults = rows
	}
}

func (c *Controller) persist() {
	if err := c.store.Save(Filter(c.draft)); err != nil {
		metrics.DraftPersistFailures.WithLabelValues("save").Inc()
		c.log.WithError(err).WithField("op", "save").Warn("Draft kept in memory only")
	}
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() FormDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// Progress returns the completion percentage of the current draft.
func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Progress(c.draft)
}

// SectionStatus reports which sections have every required field filled.
func (c *Controller) SectionStatus() map[Section]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SectionStatus(c.draft)
}

// SuggestedCodeYear returns the code year a form should offer while the
// draft has none.
func (c *Controller) SuggestedCodeYear() string {
	return SuggestedCodeYear(c.now())
}

// UpdateSection shallow-merges partial into section.
func (c *Controller) UpdateSection(section Section, partial Fields) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return c.UpdateSectionJSON(section, raw)
}

// UpdateSectionJSON shallow-merges a JSON object into section. Only the
// provided keys are replaced; keys that do not belong to the section are
// rejected with ErrUnknownField and file keys with ErrFileField.
func (c *Controller) UpdateSectionJSON(section Section, raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	work := c.draft.Clone()
	if err := Apply(&work, section, raw); err != nil {
		return err
	}
	var dropped []string
	if section == SectionContinuity {
		var err error
		if dropped, err = c.normalizeContinuity(&c.draft.Continuity, &work.Continuity); err != nil {
			return err
		}
	}

	c.draft = work
	for _, url := range dropped {
		c.revokeLocal(url)
	}
	metrics.DraftUpdates.WithLabelValues(string(section)).Inc()
	c.persist()
	return nil
}

// normalizeContinuity enforces the entry bounds and ids of ct. Entries keep
// the files prev holds under their id; the preview URLs of entries missing
// from ct are returned for release.
func (c *Controller) normalizeContinuity(prev, ct *Continuity) ([]string, error) {
	n := len(ct.ContinuityRecords)
	if n == 0 {
		return nil, fmt.Errorf("%w: continuityRecords needs at least one entry", ErrInvalidPatch)
	}
	if n > MaxContinuityEntries {
		return nil, fmt.Errorf("%w: continuityRecords holds at most %d entries", ErrInvalidPatch, MaxContinuityEntries)
	}

	before := make(map[string]ContinuityEntry, len(prev.ContinuityRecords))
	for _, e := range prev.ContinuityRecords {
		before[e.ID] = e
	}
	seen := make(map[string]bool, n)
	for i := range ct.ContinuityRecords {
		e := &ct.ContinuityRecords[i]
		if e.ID == "" || seen[e.ID] {
			e.ID = c.newID()
		}
		seen[e.ID] = true
		old := before[e.ID]
		e.VerifierSignature, e.VerifierSignatureURL = cloneHandle(old.VerifierSignature), old.VerifierSignatureURL
		e.QCSignature, e.QCSignatureURL = cloneHandle(old.QCSignature), old.QCSignatureURL
	}
	ct.FormNo = NormalizeFormNo(ct.FormNo)

	var dropped []string
	for _, e := range prev.ContinuityRecords {
		if !seen[e.ID] {
			dropped = append(dropped, e.VerifierSignatureURL, e.QCSignatureURL)
		}
	}
	return dropped, nil
}

// NormalizeFormNo adds FormNoPrefix to a non-empty form number. A bare
// prefix normalizes to the empty string.
func NormalizeFormNo(formNo string) string {
	suffix := strings.TrimPrefix(strings.TrimSpace(formNo), FormNoPrefix)
	if suffix == "" {
		return ""
	}
	return FormNoPrefix + suffix
}

// SetFormNoSuffix sets the editable part of the form number.
func (c *Controller) SetFormNoSuffix(suffix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		c.draft.Continuity.FormNo = ""
	} else {
		c.draft.Continuity.FormNo = FormNoPrefix + suffix
	}
	metrics.DraftUpdates.WithLabelValues("formNo").Inc()
	c.persist()
}

// FormNoSuffix returns the editable part of the form number.
func (c *Controller) FormNoSuffix() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.TrimPrefix(c.draft.Continuity.FormNo, FormNoPrefix)
}

// AddContinuityEntry appends an empty continuity entry.
func (c *Controller) AddContinuityEntry() (ContinuityEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.draft.Continuity.ContinuityRecords) >= MaxContinuityEntries {
		return ContinuityEntry{}, ErrContinuityFull
	}
	e := NewContinuityEntry(c.newID)
	c.draft.Continuity.ContinuityRecords = append(c.draft.Continuity.ContinuityRecords, e)
	metrics.DraftUpdates.WithLabelValues("continuity.add").Inc()
	c.persist()
	return e, nil
}

// UpdateContinuityEntry shallow-merges partial into the entry with id. The
// entry id itself cannot be changed, and file keys are rejected with
// ErrFileField.
func (c *Controller) UpdateContinuityEntry(id string, partial Fields) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.entryIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	entry := c.draft.Continuity.ContinuityRecords[i]
	if err := mergeJSON(&entry, raw); err != nil {
		return err
	}
	// id may alias a request buffer; keep the stored copy.
	entry.ID = c.draft.Continuity.ContinuityRecords[i].ID

	records := append([]ContinuityEntry(nil), c.draft.Continuity.ContinuityRecords...)
	records[i] = entry
	c.draft.Continuity.ContinuityRecords = records
	metrics.DraftUpdates.WithLabelValues("continuity.update").Inc()
	c.persist()
	return nil
}

// RemoveContinuityEntry removes the entry with id. The last remaining entry
// cannot be removed.
func (c *Controller) RemoveContinuityEntry(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.entryIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if len(c.draft.Continuity.ContinuityRecords) <= 1 {
		return ErrLastContinuityEntry
	}

	removed := c.draft.Continuity.ContinuityRecords[i]
	c.revokeLocal(removed.VerifierSignatureURL)
	c.revokeLocal(removed.QCSignatureURL)

	records := make([]ContinuityEntry, 0, len(c.draft.Continuity.ContinuityRecords)-1)
	records = append(records, c.draft.Continuity.ContinuityRecords[:i]...)
	records = append(records, c.draft.Continuity.ContinuityRecords[i+1:]...)
	c.draft.Continuity.ContinuityRecords = records
	metrics.DraftUpdates.WithLabelValues("continuity.remove").Inc()
	c.persist()
	return nil
}

func (c *Controller) entryIndex(id string) int {
	for i, e := range c.draft.Continuity.ContinuityRecords {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// AttachFile sets the handle and preview of target. A nil handle with an
// empty preview clears the slot. A replaced local preview is revoked.
func (c *Controller) AttachFile(target FileTarget, entryID string, h *FileHandle, preview string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	walkFiles(&c.draft, func(f fileSlot) {
		if f.target != target || (target.EntryScoped() && f.entryID != entryID) {
			return
		}
		found = true
		if *f.preview != preview {
			c.revokeLocal(*f.preview)
		}
		*f.handle = cloneHandle(h)
		*f.preview = preview
	})
	if !found {
		if target.EntryScoped() {
			return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
		}
		return fmt.Errorf("%w: %q", ErrUnknownFileTarget, target)
	}

	metrics.DraftUpdates.WithLabelValues("file." + string(target)).Inc()
	c.persist()
	return nil
}

// ResolveFiles returns a copy of the draft in which every pending handle
// has been turned into a permanent URL by resolve. Local previews whose
// handle was lost to a reload are dropped. The controller's own draft is
// not modified.
func (c *Controller) ResolveFiles(resolve func(FileHandle) (string, error)) (FormDraft, error) {
	c.mu.Lock()
	out := c.draft.Clone()
	c.mu.Unlock()

	var firstErr error
	walkFiles(&out, func(f fileSlot) {
		if firstErr != nil {
			return
		}
		if *f.handle == nil {
			// A local preview without its handle outlived the upload.
			if strings.HasPrefix(*f.preview, LocalPreviewScheme) {
				*f.preview = ""
			}
			return
		}
		url, err := resolve(**f.handle)
		if err != nil {
			firstErr = fmt.Errorf("resolve %s: %w", f.target, err)
			return
		}
		*f.handle = nil
		*f.preview = url
	})
	if firstErr != nil {
		return FormDraft{}, firstErr
	}
	return out, nil
}

// Reset revokes every local preview URL, clears the store and installs a
// fresh default draft, which is then written back like any other state.
// Reset is idempotent.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	walkFiles(&c.draft, func(f fileSlot) {
		c.revokeLocal(*f.preview)
	})

	if err := c.store.Clear(); err != nil {
		metrics.DraftPersistFailures.WithLabelValues("clear").Inc()
		c.log.WithError(err).WithField("op", "clear").Warn("Stored draft not cleared")
	}

	c.draft = DefaultDraft(c.newID)
	metrics.DraftResets.Inc()
	c.persist()
}

func (c *Controller) revokeLocal(url string) {
	if strings.HasPrefix(url, LocalPreviewScheme) {
		c.revoker.Revoke(c.owner, url)
	}
}

// draft_test.go
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

package handlers_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/localnerve/wpq-drafts/internal/handlers"
	"github.com/localnerve/wpq-drafts/internal/previews"
	"github.com/localnerve/wpq-drafts/internal/utils"
	"github.com/localnerve/wpq-drafts/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDraftRequiresUser(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, http.MethodGet, "/api/draft", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[utils.ErrorResponseStruct](t, resp)
	assert.False(t, body.Ok)
	assert.Equal(t, "auth", body.Type)
	assert.Equal(t, "/api/draft", body.URL)
}

func TestGetDraftDefault(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, http.MethodGet, "/api/draft", "user-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[handlers.DraftState](t, resp)

	assert.Equal(t, 0, state.Progress)
	assert.Empty(t, state.Draft.Continuity.CodeYear)
	assert.Len(t, state.SuggestedCodeYear, 4)
	assert.Len(t, state.Draft.Continuity.ContinuityRecords, 1)
	assert.Len(t, state.Draft.Results.TestResults, draft.TestResultRows)
	assert.Len(t, state.Sections, len(draft.Sections))
	assert.False(t, state.Sections[draft.SectionBasicInfo])
	assert.True(t, state.Sections[draft.SectionTestingVars1])
}

func TestUpdateSection(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, http.MethodPatch, "/api/draft/basicInfo", "user-1", map[string]any{
		"certificateNo": "CERT-1",
		"welderName":    "Jane Doe",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[handlers.DraftState](t, resp)
	assert.Equal(t, "CERT-1", state.Draft.BasicInfo.CertificateNo)
	assert.Equal(t, 12, state.Progress) // round(100*2/17)

	// Drafts are per user.
	other := decode[handlers.DraftState](t, a.do(t, http.MethodGet, "/api/draft", "user-2", nil))
	assert.Empty(t, other.Draft.BasicInfo.CertificateNo)
}

func TestUpdateSectionErrors(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		kind   string
	}{
		{"unknown section", "/api/draft/extras", map[string]any{"a": "b"}, http.StatusNotFound, "draft.section"},
		{"unknown field", "/api/draft/basicInfo", map[string]any{"nickname": "J"}, http.StatusBadRequest, "draft.patch"},
		{"not an object", "/api/draft/basicInfo", []string{"x"}, http.StatusBadRequest, "draft.patch"},
		{"empty continuity", "/api/draft/continuity", map[string]any{"continuityRecords": []any{}}, http.StatusBadRequest, "draft.patch"},
		{"photo preview", "/api/draft/basicInfo", map[string]any{"photoPreview": "blob:/api/previews/x"}, http.StatusBadRequest, "draft.patch"},
		{"signer url", "/api/draft/continuity", map[string]any{"certifiedSignatureUrl": "blob:/api/previews/x"}, http.StatusBadRequest, "draft.patch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.do(t, http.MethodPatch, tt.path, "user-1", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.kind, decode[utils.ErrorResponseStruct](t, resp).Type)
		})
	}

	state := decode[handlers.DraftState](t, a.do(t, http.MethodGet, "/api/draft", "user-1", nil))
	assert.Equal(t, 0, state.Progress, "rejected patches leave the draft unchanged")
}

func TestContinuityEntries(t *testing.T) {
	a := newTestApp(t)

	state := decode[handlers.DraftState](t, a.do(t, http.MethodGet, "/api/draft", "user-1", nil))
	first := state.Draft.Continuity.ContinuityRecords[0].ID

	resp := a.do(t, http.MethodDelete, "/api/draft/continuity/"+first, "user-1", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/draft/continuity", "user-1", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	state = decode[handlers.DraftState](t, resp)
	require.Len(t, state.Draft.Continuity.ContinuityRecords, 2)
	second := state.Draft.Continuity.ContinuityRecords[1].ID

	resp = a.do(t, http.MethodPatch, "/api/draft/continuity/"+second, "user-1", map[string]any{"verifier": "QA"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decode[handlers.DraftState](t, resp)
	assert.Equal(t, "QA", state.Draft.Continuity.ContinuityRecords[1].Verifier)

	resp = a.do(t, http.MethodPatch, "/api/draft/continuity/missing", "user-1", map[string]any{"verifier": "QA"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.do(t, http.MethodDelete, "/api/draft/continuity/"+first, "user-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decode[handlers.DraftState](t, resp)
	require.Len(t, state.Draft.Continuity.ContinuityRecords, 1)
	assert.Equal(t, second, state.Draft.Continuity.ContinuityRecords[0].ID)

	for range draft.MaxContinuityEntries - 1 {
		resp = a.do(t, http.MethodPost, "/api/draft/continuity", "user-1", nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp = a.do(t, http.MethodPost, "/api/draft/continuity", "user-1", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestContinuityEntryIDSurvivesLaterRequests(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, http.MethodPost, "/api/draft/continuity", "user-1", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decode[handlers.DraftState](t, resp).Draft.Continuity.ContinuityRecords[1].ID

	resp = a.do(t, http.MethodPatch, "/api/draft/continuity/"+id, "user-1", map[string]any{"verifier": "QA"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Later requests reuse the buffers the path was read from.
	a.do(t, http.MethodGet, "/api/draft/validate/results", "user-1", nil)
	a.do(t, http.MethodPatch, "/api/draft/basicInfo", "user-2", map[string]any{"welderName": "Somebody Else Entirely"})

	state := decode[handlers.DraftState](t, a.do(t, http.MethodGet, "/api/draft", "user-1", nil))
	require.Len(t, state.Draft.Continuity.ContinuityRecords, 2)
	assert.Equal(t, id, state.Draft.Continuity.ContinuityRecords[1].ID)

	resp = a.do(t, http.MethodPatch, "/api/draft/continuity/"+id, "user-1", map[string]any{"company": "ACME"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = a.do(t, http.MethodDelete, "/api/draft/continuity/"+id, "user-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSetFormNo(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, http.MethodPut, "/api/draft/form-no", "user-1", handlers.FormNoRequest{Suffix: " 042 "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[handlers.DraftState](t, resp)
	assert.Equal(t, draft.FormNoPrefix+"042", state.Draft.Continuity.FormNo)

	resp = a.do(t, http.MethodPut, "/api/draft/form-no", "user-1", handlers.FormNoRequest{})
	state = decode[handlers.DraftState](t, resp)
	assert.Empty(t, state.Draft.Continuity.FormNo)
}

func TestUploadAndPreview(t *testing.T) {
	a := newTestApp(t)

	resp := a.upload(t, "/api/draft/files/photo", "user-1", "photo.png", pngBytes)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[handlers.DraftState](t, resp)
	url := state.Draft.BasicInfo.PhotoPreview
	require.True(t, strings.HasPrefix(url, "blob:"+previews.URLPrefix), url)
	require.NotNil(t, state.Draft.BasicInfo.Photo)
	assert.Equal(t, "image/png", state.Draft.BasicInfo.Photo.ContentType)

	id, ok := previews.IDFromURL(url)
	require.True(t, ok)
	resp = a.do(t, http.MethodGet, previews.URLPrefix+id, "user-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	// Previews are private to their owner.
	resp = a.do(t, http.MethodGet, previews.URLPrefix+id, "user-2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Replacing the photo releases the first preview.
	resp = a.upload(t, "/api/draft/files/photo", "user-1", "photo2.png", pngBytes)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, a.previews.Len())

	resp = a.do(t, http.MethodDelete, "/api/draft/files/photo", "user-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decode[handlers.DraftState](t, resp)
	assert.Nil(t, state.Draft.BasicInfo.Photo)
	assert.Empty(t, state.Draft.BasicInfo.PhotoPreview)
	assert.Zero(t, a.previews.Len())
}

func TestUploadErrors(t *testing.T) {
	a := newTestApp(t)

	resp := a.upload(t, "/api/draft/files/passport", "user-1", "p.png", pngBytes)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.upload(t, "/api/draft/files/photo", "user-1", "notes.txt", []byte("plain text"))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp = a.upload(t, "/api/draft/files/verifierSignature?entry=missing", "user-1", "s.png", pngBytes)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Zero(t, a.previews.Len(), "failed attachments release their preview")
}

func TestResetDraft(t *testing.T) {
	a := newTestApp(t)

	a.do(t, http.MethodPatch, "/api/draft/basicInfo", "user-1", map[string]any{"certificateNo": "CERT-1"})
	resp := a.upload(t, "/api/draft/files/signature", "user-1", "sig.png", pngBytes)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, a.previews.Len())

	resp = a.do(t, http.MethodDelete, "/api/draft", "user-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[handlers.DraftState](t, resp)
	assert.Empty(t, state.Draft.BasicInfo.CertificateNo)
	assert.Empty(t, state.Draft.BasicInfo.SignaturePreview)
	assert.Zero(t, a.previews.Len())
}

func TestOtherUsersCannotReleaseUploads(t *testing.T) {
	a := newTestApp(t)

	resp := a.upload(t, "/api/draft/files/photo", "victim", "photo.png", pngBytes)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	url := decode[handlers.DraftState](t, resp).Draft.BasicInfo.PhotoPreview
	id, ok := previews.IDFromURL(url)
	require.True(t, ok)

	resp = a.do(t, http.MethodPatch, "/api/draft/basicInfo", "mallory", map[string]any{"photoPreview": url})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = a.do(t, http.MethodDelete, "/api/draft", "mallory", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 1, a.previews.Len())
	resp = a.do(t, http.MethodGet, previews.URLPrefix+id, "victim", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResetReleasesController(t *testing.T) {
	a := newTestApp(t)

	a.do(t, http.MethodPatch, "/api/draft/basicInfo", "user-1", map[string]any{"certificateNo": "CERT-1"})
	a.do(t, http.MethodGet, "/api/draft", "user-2", nil)
	require.Equal(t, 2, a.drafts.Len())

	resp := a.do(t, http.MethodDelete, "/api/draft", "user-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, a.drafts.Len())

	state := decode[handlers.DraftState](t, a.do(t, http.MethodGet, "/api/draft", "user-1", nil))
	assert.Empty(t, state.Draft.BasicInfo.CertificateNo)
}

func TestValidateSection(t *testing.T) {
	a := newTestApp(t)

	a.do(t, http.MethodPatch, "/api/draft/basicInfo", "user-1", map[string]any{"iqamaPassport": "12345"})

	resp := a.do(t, http.MethodGet, "/api/draft/validate/basicInfo", "user-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[validation.Result](t, resp)
	assert.False(t, result.Success)
	assert.Contains(t, result.Errors["iqamaPassport"], "at least 10 characters")
	assert.Contains(t, result.Errors, "certificateNo")

	resp = a.do(t, http.MethodGet, "/api/draft/validate/testingVars1", "user-1", nil)
	assert.True(t, decode[validation.Result](t, resp).Success)

	resp = a.do(t, http.MethodGet, "/api/draft/validate/all", "user-1", nil)
	result = decode[validation.Result](t, resp)
	assert.Contains(t, result.Errors, "formNo")

	resp = a.do(t, http.MethodGet, "/api/draft/validate/extras", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	a := newTestApp(t)
	resp := a.do(t, http.MethodGet, "/api/nothing", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, decode[utils.ErrorResponseStruct](t, resp).Ok)
}

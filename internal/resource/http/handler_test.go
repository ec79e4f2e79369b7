package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/campus-resource-booking/internal/file"
	fileHttp "github.com/nekogravitycat/campus-resource-booking/internal/file/http"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/request"
	"github.com/nekogravitycat/campus-resource-booking/internal/resource"
)

const resID = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

type stubResources struct {
	resource.Service

	created  resource.CreateRequest
	updated  resource.UpdateRequest
	attached []string
	err      error
}

func (s *stubResources) Create(_ context.Context, req resource.CreateRequest) (*resource.Resource, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	return &resource.Resource{ID: resID, Name: req.Name, Type: req.Type, Capacity: req.Capacity}, nil
}

func (s *stubResources) GetByID(_ context.Context, id string) (*resource.Resource, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &resource.Resource{ID: id, Name: "Main Hall", Images: []string{"f-1"}}, nil
}

func (s *stubResources) Update(_ context.Context, id string, req resource.UpdateRequest) (*resource.Resource, error) {
	s.updated = req
	return &resource.Resource{ID: id}, s.err
}

func (s *stubResources) Delete(context.Context, string) error { return s.err }

func (s *stubResources) AttachImage(_ context.Context, id, fileID string) (*resource.Resource, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.attached = append(s.attached, fileID)
	return &resource.Resource{ID: id}, nil
}

type stubFiles struct {
	file.Service

	uploaded file.UploadInput
	deleted  []string
}

func (s *stubFiles) Upload(_ context.Context, in file.UploadInput) (*file.File, error) {
	s.uploaded = in
	thumb := "upload/ab/f-9_thumb.jpg"
	return &file.File{ID: "f-9", ContentType: "image/jpeg", Size: 10, ThumbnailPath: &thumb}, nil
}

func (s *stubFiles) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func setup(t *testing.T, svc resource.Service, files file.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, request.RegisterValidators())

	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, fileHttp.NewHandler(files)), pass, pass)
	return r
}

func sendJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateResource(t *testing.T) {
	svc := &stubResources{}
	r := setup(t, svc, &stubFiles{})

	w := sendJSON(r, http.MethodPost, "/v1/resources", map[string]any{
		"name":             "Chemistry Lab 2",
		"type":             "lab",
		"description":      "Benches",
		"capacity":         24,
		"location":         map[string]string{"building": "Science", "room_number": "204"},
		"operating_hours":  map[string]string{"start": "08:00", "end": "20:00"},
		"booking_duration": map[string]int{"max": 120},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, resource.TypeLab, svc.created.Type)
	assert.Equal(t, "204", svc.created.Location.RoomNumber)
	assert.Equal(t, "20:00", svc.created.OperatingHours.End)
	assert.Nil(t, svc.created.MinDuration)
	require.NotNil(t, svc.created.MaxDuration)
	assert.Equal(t, 120, *svc.created.MaxDuration)
}

func TestCreateResourceValidation(t *testing.T) {
	r := setup(t, &stubResources{}, &stubFiles{})

	w := sendJSON(r, http.MethodPost, "/v1/resources", map[string]any{
		"name":            "Pool",
		"type":            "pool",
		"description":     "Wet",
		"capacity":        3,
		"operating_hours": map[string]string{"start": "8am"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Details, "Type")
	assert.Equal(t, "Must be a time of day in HH:MM format", resp.Details["Start"])
}

func TestUpdateResourceIsPartial(t *testing.T) {
	svc := &stubResources{}
	r := setup(t, svc, &stubFiles{})

	w := sendJSON(r, http.MethodPatch, "/v1/resources/"+resID, map[string]any{"availability": false})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.updated.Available)
	assert.False(t, *svc.updated.Available)
	assert.Nil(t, svc.updated.Name)
	assert.Nil(t, svc.updated.Location)
}

func TestDeleteResourceWithActiveBookings(t *testing.T) {
	r := setup(t, &stubResources{err: resource.ErrHasActiveBookings}, &stubFiles{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/resources/"+resID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"cannot delete resource with active bookings"}`, w.Body.String())
}

func TestGetResourceListsImageURLs(t *testing.T) {
	r := setup(t, &stubResources{}, &stubFiles{})

	req := httptest.NewRequest(http.MethodGet, "/v1/resources/"+resID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ResourceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Images, 1)
	assert.Equal(t, "/v1/files/f-1", resp.Images[0].URL)
	assert.Equal(t, "/v1/files/f-1/thumbnail", resp.Images[0].ThumbnailURL)
	assert.NotNil(t, resp.Amenities)
}

func imageRequest(t *testing.T) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="hall.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = io.WriteString(part, "png-bytes")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/resources/"+resID+"/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadImageAttachesFile(t *testing.T) {
	svc := &stubResources{}
	files := &stubFiles{}
	r := setup(t, svc, files)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, imageRequest(t))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, []string{"f-9"}, svc.attached)
	assert.True(t, files.uploaded.ResizeImage)
	assert.Equal(t, []string{"image/jpeg", "image/png"}, files.uploaded.AllowedTypes)
	assert.Empty(t, files.deleted)

	var resp fileHttp.FileUploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/v1/files/f-9", resp.URL)
	require.NotNil(t, resp.ThumbnailURL)
}

func TestUploadImageRollsBackWhenAttachFails(t *testing.T) {
	files := &stubFiles{}
	// GetByID succeeds, AttachImage fails.
	r := setup(t, &failingAttach{stubResources: &stubResources{}}, files)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, imageRequest(t))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, []string{"f-9"}, files.deleted)
}

type failingAttach struct {
	*stubResources
}

func (f *failingAttach) AttachImage(context.Context, string, string) (*resource.Resource, error) {
	return nil, resource.ErrImageAlreadyAttached
}

package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	name, err := ObjectName("me.JPG", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "profile-"))
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	name, err = ObjectName("me.png", "application/octet-stream")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	_, err = ObjectName("evil.exe", "application/x-msdownload")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLocalStore_SaveAndServe(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/uploads")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "me.png", "image/png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/profile-"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PNGDATA", w.Body.String())
}

type fakeUploader struct {
	s3manageriface.UploaderAPI
	input *s3manager.UploadInput
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	f.input = in
	return &s3manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.StringValue(in.Key)}, nil
}

func TestS3Store_Save(t *testing.T) {
	up := &fakeUploader{}
	s := NewS3StoreWithUploader(up, "bucket", "profile-images")

	url, err := s.Save(context.Background(), "me.jpg", "image/jpeg", strings.NewReader("JPEG"))
	require.NoError(t, err)
	require.NotNil(t, up.input)
	assert.Equal(t, "bucket", aws.StringValue(up.input.Bucket))
	assert.True(t, strings.HasPrefix(aws.StringValue(up.input.Key), "profile-images/profile-"))
	assert.Equal(t, "https://bucket.s3.amazonaws.com/"+aws.StringValue(up.input.Key), url)
}

package utils_test

import (
	"Foodgram-Backend/internal/utils"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeBase64Image(t *testing.T) {
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	raw, contentType, err := utils.DecodeBase64Image(payload)
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), raw)
	require.Equal(t, "image/png", contentType)
}

func TestDecodeBase64ImageBarePayload(t *testing.T) {
	raw, contentType, err := utils.DecodeBase64Image(base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")))
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg-bytes"), raw)
	require.Equal(t, "image/jpeg", contentType)
}

func TestDecodeBase64ImageRejectsGarbage(t *testing.T) {
	_, _, err := utils.DecodeBase64Image("data:image/png;base64,%%%")
	require.ErrorIs(t, err, utils.ErrInvalidDataURI)

	_, _, err = utils.DecodeBase64Image("data:image/png;base64")
	require.ErrorIs(t, err, utils.ErrInvalidDataURI)
}

func TestImageExtension(t *testing.T) {
	require.Equal(t, "png", utils.ImageExtension("image/png"))
	require.Equal(t, "jpg", utils.ImageExtension("image/jpeg"))
	require.Equal(t, "jpg", utils.ImageExtension(""))
}

func TestUsernameValidationRule(t *testing.T) {
	utils.InitValidator()

	type form struct {
		Username string `validate:"required,username"`
	}

	require.NoError(t, utils.Validate.Struct(form{Username: "user.name@host+x-1"}))
	require.Error(t, utils.Validate.Struct(form{Username: "no spaces allowed"}))
	require.Error(t, utils.Validate.Struct(form{Username: "slash/not/allowed"}))
}

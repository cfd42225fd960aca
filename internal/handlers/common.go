// internal/handlers/common.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

// Largest accepted image upload.
const maxUploadBytes = 10 << 20

// bind decodes the request body into req according to its content type. A
// body that cannot be decoded is answered with 400 and false is returned.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil && !errors.Is(err, io.EOF) {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

// imageUpload reads the optional multipart "image" file.
func imageUpload(c *gin.Context) (*services.ImageUpload, bool) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, true
	}
	if err != nil {
		utils.BadRequestResponse(c, "Invalid image upload", err.Error())
		return nil, false
	}
	if header.Size > maxUploadBytes {
		utils.BadRequestResponse(c, "Image is too large", nil)
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		utils.HandleError(c, utils.Unexpected(err))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		utils.HandleError(c, utils.Unexpected(err))
		return nil, false
	}
	return &services.ImageUpload{Data: data, Filename: header.Filename}, true
}

// currentUser returns the authenticated user's id.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthInvalidToken))
		return uuid.Nil, false
	}
	return id, true
}

func messageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, utils.APIResponse{Success: true, Message: message})
}

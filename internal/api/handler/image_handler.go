package handler

import (
	"github.com/gin-gonic/gin"

	"dormhub/internal/dto"
	"dormhub/internal/service"
	"dormhub/pkg/response"
)

// ImageHandler 宿舍图片 HTTP 处理器
type ImageHandler struct {
	imageSvc service.ImageService
	errs     *errorResponder
}

// NewImageHandler 创建 ImageHandler
func NewImageHandler(imageSvc service.ImageService, errs *errorResponder) *ImageHandler {
	return &ImageHandler{imageSvc: imageSvc, errs: errs}
}

// Upload 上传一张或多张图片（multipart 字段 images，可选表单字段 image_type）
// POST /api/v1/dormitories/:id/images
func (h *ImageHandler) Upload(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	dormID, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.errs.bindError(c, err)
		return
	}
	imageType := c.PostForm("image_type")

	files := make([]service.ImageUpload, 0, len(form.File["images"]))
	for _, fh := range form.File["images"] {
		data, err := readFormFile(fh)
		if err != nil {
			h.errs.handleError(c, err)
			return
		}
		files = append(files, service.ImageUpload{Data: data, ImageType: imageType})
	}

	images, err := h.imageSvc.Upload(c.Request.Context(), ownerID, dormID, files)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.Created(c, dto.ImageUploadResponse{Images: images})
}

// SetPrimary 设为主图
// PUT /api/v1/images/:id/primary
func (h *ImageHandler) SetPrimary(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	if err := h.imageSvc.SetPrimary(c.Request.Context(), ownerID, id); err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// Delete DELETE /api/v1/images/:id
func (h *ImageHandler) Delete(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	if err := h.imageSvc.Delete(c.Request.Context(), ownerID, id); err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, nil)
}

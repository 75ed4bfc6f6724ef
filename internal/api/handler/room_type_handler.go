package handler

import (
	"github.com/gin-gonic/gin"

	"dormhub/internal/dto"
	"dormhub/internal/service"
	"dormhub/pkg/response"
)

// RoomTypeHandler 房型 HTTP 处理器
type RoomTypeHandler struct {
	roomTypeSvc service.RoomTypeService
	errs        *errorResponder
}

// NewRoomTypeHandler 创建 RoomTypeHandler
func NewRoomTypeHandler(roomTypeSvc service.RoomTypeService, errs *errorResponder) *RoomTypeHandler {
	return &RoomTypeHandler{roomTypeSvc: roomTypeSvc, errs: errs}
}

// List GET /api/v1/dormitories/:id/room-types
func (h *RoomTypeHandler) List(c *gin.Context) {
	dormID, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	roomTypes, err := h.roomTypeSvc.List(c.Request.Context(), dormID)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": roomTypes})
}

// Create POST /api/v1/dormitories/:id/room-types
func (h *RoomTypeHandler) Create(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	dormID, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RoomTypePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	roomType, err := h.roomTypeSvc.Create(c.Request.Context(), ownerID, dormID, &req)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.Created(c, roomType)
}

// Update PUT /api/v1/room-types/:id
func (h *RoomTypeHandler) Update(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RoomTypePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	roomType, err := h.roomTypeSvc.Update(c.Request.Context(), ownerID, id, &req)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, roomType)
}

// Delete DELETE /api/v1/room-types/:id
func (h *RoomTypeHandler) Delete(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	if err := h.roomTypeSvc.Delete(c.Request.Context(), ownerID, id); err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, nil)
}

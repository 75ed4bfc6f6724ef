package handler

import (
	"bytes"
	"context"

	"dormhub/internal/dto"
	"dormhub/internal/model"
	"dormhub/internal/service"
	"dormhub/pkg/jwt"
)

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	user       *model.User
	me         *dto.MeResponse
	revoke     *dto.RevokeSessionsResponse
	err        error
	lastReq    *dto.ProfileRequest
	lastUserID int64
}

func (m *mockAuthService) Register(_ context.Context, _ *jwt.Identity, req *dto.ProfileRequest) (*model.User, error) {
	m.lastReq = req
	return m.user, m.err
}
func (m *mockAuthService) CompleteProfile(_ context.Context, _ *jwt.Identity, req *dto.ProfileRequest) (*model.User, error) {
	m.lastReq = req
	return m.user, m.err
}
func (m *mockAuthService) ResolveUser(_ context.Context, _ string) (*model.User, error) {
	return m.user, m.err
}
func (m *mockAuthService) Me(_ context.Context, _ *jwt.Identity) (*dto.MeResponse, error) {
	return m.me, m.err
}
func (m *mockAuthService) RevokeSessions(_ context.Context, userID int64) (*dto.RevokeSessionsResponse, error) {
	m.lastUserID = userID
	return m.revoke, m.err
}

// ── Mock UserService ──

type mockUserService struct {
	user       *model.User
	available  bool
	err        error
	lastFields map[string]interface{}
	lastData   []byte
	lastExcl   int64
}

func (m *mockUserService) UpdateProfile(_ context.Context, _ int64, fields map[string]interface{}) (*model.User, error) {
	m.lastFields = fields
	return m.user, m.err
}
func (m *mockUserService) UploadAvatar(_ context.Context, _ int64, data []byte) (*model.User, error) {
	m.lastData = data
	return m.user, m.err
}
func (m *mockUserService) UsernameAvailable(_ context.Context, _ string, excludeID int64) (bool, error) {
	m.lastExcl = excludeID
	return m.available, m.err
}

// ── Mock DormitoryService ──

type mockDormitoryService struct {
	detail     *dto.DormitoryDetailResponse
	items      []model.DormitoryListItem
	total      int64
	err        error
	lastViewer *model.User
	lastList   *dto.DormitoryListRequest
	lastReason string
}

func (m *mockDormitoryService) Create(_ context.Context, _ int64, _ *dto.CreateDormitoryRequest) (*dto.DormitoryDetailResponse, error) {
	return m.detail, m.err
}
func (m *mockDormitoryService) Get(_ context.Context, viewer *model.User, _ int64) (*dto.DormitoryDetailResponse, error) {
	m.lastViewer = viewer
	return m.detail, m.err
}
func (m *mockDormitoryService) ListApproved(_ context.Context, req *dto.DormitoryListRequest) ([]model.DormitoryListItem, int64, error) {
	m.lastList = req
	return m.items, m.total, m.err
}
func (m *mockDormitoryService) ListMine(_ context.Context, _ int64) ([]model.DormitoryListItem, error) {
	return m.items, m.err
}
func (m *mockDormitoryService) ListByStatus(_ context.Context, _ *dto.AdminDormitoryListRequest) ([]model.DormitoryListItem, int64, error) {
	return m.items, m.total, m.err
}
func (m *mockDormitoryService) Update(_ context.Context, _, _ int64, _ *dto.UpdateDormitoryRequest) (*dto.DormitoryDetailResponse, error) {
	return m.detail, m.err
}
func (m *mockDormitoryService) Approve(_ context.Context, _ int64) error { return m.err }
func (m *mockDormitoryService) Reject(_ context.Context, _ int64, reason string) error {
	m.lastReason = reason
	return m.err
}
func (m *mockDormitoryService) AdminDelete(_ context.Context, _ int64) error     { return m.err }
func (m *mockDormitoryService) OwnerDelete(_ context.Context, _, _ int64) error { return m.err }

// ── Mock ImageService ──

type mockImageService struct {
	images    []model.DormitoryImage
	err       error
	lastFiles []service.ImageUpload
}

func (m *mockImageService) Upload(_ context.Context, _, _ int64, files []service.ImageUpload) ([]model.DormitoryImage, error) {
	m.lastFiles = files
	return m.images, m.err
}
func (m *mockImageService) SetPrimary(_ context.Context, _, _ int64) error { return m.err }
func (m *mockImageService) Delete(_ context.Context, _, _ int64) error     { return m.err }

// ── Mock MembershipService ──

type mockMembershipService struct {
	request    *model.MemberRequest
	created    bool
	requests   []model.MemberRequest
	stays      []model.Stay
	err        error
	lastStatus string
}

func (m *mockMembershipService) Request(_ context.Context, _, _ int64) (*model.MemberRequest, bool, error) {
	return m.request, m.created, m.err
}
func (m *mockMembershipService) ListMine(_ context.Context, _ int64) ([]model.MemberRequest, error) {
	return m.requests, m.err
}
func (m *mockMembershipService) Cancel(_ context.Context, _, _ int64) error { return m.err }
func (m *mockMembershipService) ListForOwner(_ context.Context, _, _ int64, status string) ([]model.MemberRequest, error) {
	m.lastStatus = status
	return m.requests, m.err
}
func (m *mockMembershipService) Approve(_ context.Context, _, _ int64) error { return m.err }
func (m *mockMembershipService) Reject(_ context.Context, _, _ int64) error  { return m.err }
func (m *mockMembershipService) MoveDormitory(_ context.Context, _, _ int64) (*model.MemberRequest, error) {
	return m.request, m.err
}
func (m *mockMembershipService) ListStays(_ context.Context, _ int64) ([]model.Stay, error) {
	return m.stays, m.err
}

// ── Mock ReviewService ──

type mockReviewService struct {
	result     *dto.ReviewResult
	list       *dto.ReviewListResponse
	total      int64
	summary    *model.RatingSummary
	err        error
	lastCaller *model.User
}

func (m *mockReviewService) Create(_ context.Context, _, _ int64, _ *dto.ReviewRequest) (*dto.ReviewResult, error) {
	return m.result, m.err
}
func (m *mockReviewService) List(_ context.Context, _ int64, _ *dto.PaginationRequest) (*dto.ReviewListResponse, int64, error) {
	return m.list, m.total, m.err
}
func (m *mockReviewService) Update(_ context.Context, _, _ int64, _ *dto.ReviewRequest) (*dto.ReviewResult, error) {
	return m.result, m.err
}
func (m *mockReviewService) Delete(_ context.Context, caller *model.User, _ int64) (*model.RatingSummary, error) {
	m.lastCaller = caller
	return m.summary, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	data     []byte
	filename string
	err      error
}

func (m *mockExportService) ExportDormitories(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportStayCalendar(_ context.Context, _ int64) ([]byte, string, error) {
	return m.data, m.filename, m.err
}

package service

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"dormhub/config"
	"dormhub/internal/model"
	"dormhub/internal/repository"
)

// ── 测试辅助 ──

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

type testEnv struct {
	store    *memStore
	repo     *repository.Repository
	svc      *Service
	uploader *mockUploader
	revoker  *mockRevoker
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	repo := newMockRepository(store)
	uploader := &mockUploader{}
	revoker := &mockRevoker{}
	cfg := &config.Config{Server: config.ServerConfig{MaxUploadSize: 1 << 20, MaxUploadFile: 5}}
	return &testEnv{
		store:    store,
		repo:     repo,
		svc:      NewService(cfg, repo, uploader, revoker, zap.NewNop()),
		uploader: uploader,
		revoker:  revoker,
	}
}

// freezeTime 固定 timeNow，测试结束后恢复
func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}

func strPtr(s string) *string     { return &s }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }

func (e *testEnv) seedZone(name string) int64 {
	id := e.store.nextID()
	e.store.zones[id] = model.Zone{ID: id, ZoneName: name}
	return id
}

func (e *testEnv) seedAmenity(name string) int64 {
	id := e.store.nextID()
	e.store.amenities[id] = model.Amenity{ID: id, AmenityName: name}
	return id
}

func (e *testEnv) seedUser(username, memberType string) *model.User {
	u := model.User{
		ID:          e.store.nextID(),
		FirebaseUID: "uid-" + username,
		Username:    username,
		Email:       username + "@example.com",
		FirstName:   "Test",
		LastName:    "User",
		MemberType:  memberType,
	}
	switch memberType {
	case model.MemberTypeMember:
		u.University = strPtr("Chiang Mai University")
	case model.MemberTypeOwner:
		u.BusinessPhone = strPtr("053-000000")
	}
	e.store.users[u.ID] = u
	return &u
}

// seedDorm 插入宿舍，status 为审核状态
func (e *testEnv) seedDorm(ownerID int64, name, status string) *model.Dormitory {
	zoneID := e.seedZone("Zone of " + name)
	d := model.Dormitory{
		ID:             e.store.nextID(),
		DormName:       name,
		Address:        "1 Test Road",
		ZoneID:         zoneID,
		ApprovalStatus: status,
		OwnerID:        ownerID,
	}
	e.store.dorms[d.ID] = d
	return &d
}

func (e *testEnv) seedRoomType(dormID int64, name string, price *float64, available bool) int64 {
	id := e.store.nextID()
	e.store.roomTypes[id] = model.RoomType{ID: id, DormID: dormID, RoomName: name, MonthlyPrice: price, IsAvailable: available}
	return id
}

func (e *testEnv) seedRequest(userID, dormID int64, status string) int64 {
	id := e.store.nextID()
	e.store.requests[id] = model.MemberRequest{ID: id, UserID: userID, DormID: dormID, Status: status, RequestDate: timeNow()}
	return id
}

func (e *testEnv) seedStay(userID, dormID int64, start time.Time) int64 {
	id := e.store.nextID()
	e.store.stays[id] = model.Stay{ID: id, UserID: userID, DormID: dormID, StartDate: datatypes.Date(start), IsCurrent: true}
	return id
}

// setResidence 直接设置住户当前宿舍与居住记录
func (e *testEnv) setResidence(userID, dormID int64, since time.Time) {
	u := e.store.users[userID]
	u.ResidenceDormID = &dormID
	e.store.users[userID] = u
	e.seedRequest(userID, dormID, model.RequestApproved)
	e.seedStay(userID, dormID, since)
}

func (e *testEnv) user(id int64) model.User { return e.store.users[id] }

func (e *testEnv) countRequests(userID int64, status string) int {
	n := 0
	for _, r := range e.store.requests {
		if r.UserID == userID && r.Status == status {
			n++
		}
	}
	return n
}

func (e *testEnv) currentStays(userID int64) []model.Stay {
	var out []model.Stay
	for _, st := range e.store.stays {
		if st.UserID == userID && st.IsCurrent {
			out = append(out, st)
		}
	}
	return out
}

package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dormhub/internal/model"
	"dormhub/internal/repository"
)

// ── 内存数据库 ──
//
// 所有 mock repository 共享同一个 memStore；mockTransactor 在事务开始时做快照，
// fn 返回错误或 panic 时整体恢复，用来验证多表写入的原子性。
// 约束按迁移脚本模拟：部分唯一索引、外键级联、删除宿舍时子表必须已清空。

type memStore struct {
	seq int64

	users         map[int64]model.User
	dorms         map[int64]model.Dormitory
	roomTypes     map[int64]model.RoomType
	images        map[int64]model.DormitoryImage
	amenities     map[int64]model.Amenity
	dormAmenities map[[2]int64]model.DormitoryAmenity
	contacts      map[int64]model.ContactInfo
	zones         map[int64]model.Zone
	requests      map[int64]model.MemberRequest
	stays         map[int64]model.Stay
	reviews       map[int64]model.Review

	// fail 按 "Repo.Method" 注入错误
	fail map[string]error

	inTx      bool
	commits   int
	rollbacks int
}

var errInjected = errors.New("injected failure")

func newMemStore() *memStore {
	return &memStore{
		users:         map[int64]model.User{},
		dorms:         map[int64]model.Dormitory{},
		roomTypes:     map[int64]model.RoomType{},
		images:        map[int64]model.DormitoryImage{},
		amenities:     map[int64]model.Amenity{},
		dormAmenities: map[[2]int64]model.DormitoryAmenity{},
		contacts:      map[int64]model.ContactInfo{},
		zones:         map[int64]model.Zone{},
		requests:      map[int64]model.MemberRequest{},
		stays:         map[int64]model.Stay{},
		reviews:       map[int64]model.Review{},
		fail:          map[string]error{},
	}
}

func (s *memStore) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *memStore) check(op string) error {
	return s.fail[op]
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() *memStore {
	return &memStore{
		seq:           s.seq,
		users:         cloneMap(s.users),
		dorms:         cloneMap(s.dorms),
		roomTypes:     cloneMap(s.roomTypes),
		images:        cloneMap(s.images),
		amenities:     cloneMap(s.amenities),
		dormAmenities: cloneMap(s.dormAmenities),
		contacts:      cloneMap(s.contacts),
		zones:         cloneMap(s.zones),
		requests:      cloneMap(s.requests),
		stays:         cloneMap(s.stays),
		reviews:       cloneMap(s.reviews),
	}
}

func (s *memStore) restore(snap *memStore) {
	s.seq = snap.seq
	s.users = snap.users
	s.dorms = snap.dorms
	s.roomTypes = snap.roomTypes
	s.images = snap.images
	s.amenities = snap.amenities
	s.dormAmenities = snap.dormAmenities
	s.contacts = snap.contacts
	s.zones = snap.zones
	s.requests = snap.requests
	s.stays = snap.stays
	s.reviews = snap.reviews
}

// newMockRepository 组装指向同一 memStore 的 Repository
func newMockRepository(s *memStore) *repository.Repository {
	repo := &repository.Repository{
		User:          &mockUserRepo{s},
		Dormitory:     &mockDormitoryRepo{s},
		RoomType:      &mockRoomTypeRepo{s},
		Image:         &mockImageRepo{s},
		Amenity:       &mockAmenityRepo{s},
		Contact:       &mockContactRepo{s},
		Zone:          &mockZoneRepo{s},
		MemberRequest: &mockMemberRequestRepo{s},
		Stay:          &mockStayRepo{s},
		Review:        &mockReviewRepo{s},
	}
	repo.Tx = &mockTransactor{s: s, repo: repo}
	return repo
}

// ── Mock Transactor ──

type mockTransactor struct {
	s    *memStore
	repo *repository.Repository
}

func (t *mockTransactor) InTx(_ context.Context, fn func(tx *repository.Repository) error) error {
	// 嵌套调用加入外层事务
	if t.s.inTx {
		return fn(t.repo)
	}

	snap := t.s.snapshot()
	t.s.inTx = true
	defer func() {
		t.s.inTx = false
		if r := recover(); r != nil {
			t.s.restore(snap)
			t.s.rollbacks++
			panic(r)
		}
	}()

	if err := fn(t.repo); err != nil {
		t.s.restore(snap)
		t.s.rollbacks++
		return err
	}
	t.s.commits++
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *memStore }

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if err := m.s.check("User.GetByID"); err != nil {
		return nil, err
	}
	if u, ok := m.s.users[id]; ok {
		return &u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByFirebaseUID(_ context.Context, uid string) (*model.User, error) {
	for _, u := range m.s.users {
		if u.FirebaseUID == uid {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) LockByID(ctx context.Context, id int64) (*model.User, error) {
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) UsernameTaken(_ context.Context, username string, excludeID int64) (bool, error) {
	for _, u := range m.s.users {
		if u.ID != excludeID && strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if err := m.s.check("User.Create"); err != nil {
		return err
	}
	if _, err := m.GetByFirebaseUID(ctx, user.FirebaseUID); err == nil {
		return gorm.ErrDuplicatedKey
	}
	if taken, _ := m.UsernameTaken(ctx, user.Username, 0); taken {
		return gorm.ErrDuplicatedKey
	}
	user.ID = m.s.nextID()
	user.CreatedAt = timeNow()
	user.UpdatedAt = user.CreatedAt
	m.s.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	if err := m.s.check("User.UpdateProfile"); err != nil {
		return err
	}
	if _, ok := m.s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.s.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) UpdateFields(_ context.Context, id int64, fields map[string]interface{}) error {
	if _, _, err := repository.UserFieldColumns.Resolve(fields); err != nil {
		return err
	}
	u, ok := m.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	str := func(v interface{}) *string {
		if s, ok := v.(string); ok {
			return &s
		}
		return nil
	}
	for k, v := range fields {
		switch k {
		case "username":
			u.Username = v.(string)
		case "firstName":
			u.FirstName = v.(string)
		case "lastName":
			u.LastName = v.(string)
		case "phoneNumber":
			u.PhoneNumber = str(v)
		case "university":
			u.University = str(v)
		case "studentId":
			u.StudentID = str(v)
		case "businessName":
			u.BusinessName = str(v)
		case "businessPhone":
			u.BusinessPhone = str(v)
		}
	}
	m.s.users[id] = u
	return nil
}

func (m *mockUserRepo) SetResidence(_ context.Context, id int64, dormID *int64) error {
	if err := m.s.check("User.SetResidence"); err != nil {
		return err
	}
	u, ok := m.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.ResidenceDormID = dormID
	m.s.users[id] = u
	return nil
}

func (m *mockUserRepo) SetProfileImage(_ context.Context, id int64, url string) error {
	if err := m.s.check("User.SetProfileImage"); err != nil {
		return err
	}
	u, ok := m.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.ProfileImageURL = &url
	m.s.users[id] = u
	return nil
}

// ── Mock DormitoryRepository ──

type mockDormitoryRepo struct{ s *memStore }

func (m *mockDormitoryRepo) Create(_ context.Context, dorm *model.Dormitory) error {
	if err := m.s.check("Dormitory.Create"); err != nil {
		return err
	}
	dorm.ID = m.s.nextID()
	dorm.CreatedAt = timeNow()
	dorm.UpdatedAt = dorm.CreatedAt
	m.s.dorms[dorm.ID] = *dorm
	return nil
}

func (m *mockDormitoryRepo) GetByID(_ context.Context, id int64) (*model.Dormitory, error) {
	if d, ok := m.s.dorms[id]; ok {
		return &d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDormitoryRepo) LockByID(ctx context.Context, id int64) (*model.Dormitory, error) {
	return m.GetByID(ctx, id)
}

func (m *mockDormitoryRepo) listItem(d model.Dormitory) model.DormitoryListItem {
	item := model.DormitoryListItem{Dormitory: d, ZoneName: m.s.zones[d.ZoneID].ZoneName}
	summary := m.s.summary(d.ID)
	item.AverageRating = summary.AverageRating
	item.ReviewCount = summary.ReviewCount
	return item
}

func (m *mockDormitoryRepo) list(match func(d model.Dormitory) bool) []model.DormitoryListItem {
	items := make([]model.DormitoryListItem, 0)
	for _, d := range m.s.dorms {
		if match(d) {
			items = append(items, m.listItem(d))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items
}

func pageOf[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (m *mockDormitoryRepo) ListApproved(_ context.Context, f repository.DormitoryFilter, offset, limit int) ([]model.DormitoryListItem, int64, error) {
	items := m.list(func(d model.Dormitory) bool {
		if d.ApprovalStatus != model.ApprovalApproved {
			return false
		}
		if f.ZoneID != nil && d.ZoneID != *f.ZoneID {
			return false
		}
		if f.MinPrice != nil && (d.MaxPrice == nil || *d.MaxPrice < *f.MinPrice) {
			return false
		}
		if f.MaxPrice != nil && (d.MinPrice == nil || *d.MinPrice > *f.MaxPrice) {
			return false
		}
		kw := strings.ToLower(strings.TrimSpace(f.Keyword))
		if kw != "" && !strings.Contains(strings.ToLower(d.DormName), kw) && !strings.Contains(strings.ToLower(d.Address), kw) {
			return false
		}
		return true
	})
	return pageOf(items, offset, limit), int64(len(items)), nil
}

func (m *mockDormitoryRepo) ListByOwner(_ context.Context, ownerID int64) ([]model.DormitoryListItem, error) {
	return m.list(func(d model.Dormitory) bool { return d.OwnerID == ownerID }), nil
}

func (m *mockDormitoryRepo) ListByStatus(_ context.Context, status string, offset, limit int) ([]model.DormitoryListItem, int64, error) {
	if err := m.s.check("Dormitory.ListByStatus"); err != nil {
		return nil, 0, err
	}
	items := m.list(func(d model.Dormitory) bool { return status == "" || d.ApprovalStatus == status })
	return pageOf(items, offset, limit), int64(len(items)), nil
}

func (m *mockDormitoryRepo) UpdateFields(_ context.Context, id int64, fields map[string]interface{}) error {
	if err := m.s.check("Dormitory.UpdateFields"); err != nil {
		return err
	}
	if _, _, err := repository.DormitoryFieldColumns.Resolve(fields); err != nil {
		return err
	}
	d, ok := m.s.dorms[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "dormName":
			d.DormName = v.(string)
		case "address":
			d.Address = v.(string)
		case "zoneId":
			d.ZoneID = v.(int64)
		case "description":
			d.Description, _ = v.(*string)
		case "latitude":
			if f, ok := v.(float64); ok {
				d.Latitude = &f
			} else {
				d.Latitude = nil
			}
		case "longitude":
			if f, ok := v.(float64); ok {
				d.Longitude = &f
			} else {
				d.Longitude = nil
			}
		}
	}
	m.s.dorms[id] = d
	return nil
}

func (m *mockDormitoryRepo) SetApproval(_ context.Context, id int64, status string, reason *string) error {
	d, ok := m.s.dorms[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.ApprovalStatus = status
	d.RejectionReason = reason
	m.s.dorms[id] = d
	return nil
}

func (m *mockDormitoryRepo) RefreshPriceRange(_ context.Context, id int64) error {
	if err := m.s.check("Dormitory.RefreshPriceRange"); err != nil {
		return err
	}
	d, ok := m.s.dorms[id]
	if !ok {
		return nil
	}
	d.MinPrice, d.MaxPrice = nil, nil
	for _, rt := range m.s.roomTypes {
		if rt.DormID != id || !rt.IsAvailable || rt.MonthlyPrice == nil {
			continue
		}
		p := *rt.MonthlyPrice
		if d.MinPrice == nil || p < *d.MinPrice {
			d.MinPrice = &p
		}
		if d.MaxPrice == nil || p > *d.MaxPrice {
			d.MaxPrice = &p
		}
	}
	m.s.dorms[id] = d
	return nil
}

func (m *mockDormitoryRepo) GetContactID(_ context.Context, id int64) (*int64, error) {
	d, ok := m.s.dorms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d.ContactID, nil
}

func (m *mockDormitoryRepo) SetContactID(_ context.Context, id int64, contactID *int64) error {
	d, ok := m.s.dorms[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.ContactID = contactID
	m.s.dorms[id] = d
	return nil
}

var errForeignKey = errors.New("violates foreign key constraint")

func (m *mockDormitoryRepo) Delete(_ context.Context, id int64) (int64, error) {
	if err := m.s.check("Dormitory.Delete"); err != nil {
		return 0, err
	}
	if _, ok := m.s.dorms[id]; !ok {
		return 0, nil
	}
	// 图片 / 房型 / 设施关联没有级联，必须先由调用方删除
	for _, img := range m.s.images {
		if img.DormID == id {
			return 0, errForeignKey
		}
	}
	for _, rt := range m.s.roomTypes {
		if rt.DormID == id {
			return 0, errForeignKey
		}
	}
	for key := range m.s.dormAmenities {
		if key[0] == id {
			return 0, errForeignKey
		}
	}

	delete(m.s.dorms, id)
	for rid, r := range m.s.requests {
		if r.DormID == id {
			delete(m.s.requests, rid)
		}
	}
	for sid, st := range m.s.stays {
		if st.DormID == id {
			delete(m.s.stays, sid)
		}
	}
	for rid, r := range m.s.reviews {
		if r.DormID == id {
			delete(m.s.reviews, rid)
		}
	}
	for uid, u := range m.s.users {
		if u.ResidenceDormID != nil && *u.ResidenceDormID == id {
			u.ResidenceDormID = nil
			m.s.users[uid] = u
		}
	}
	return 1, nil
}

// ── Mock RoomTypeRepository ──

type mockRoomTypeRepo struct{ s *memStore }

func (m *mockRoomTypeRepo) MarkAllUnavailable(_ context.Context, dormID int64) error {
	for id, rt := range m.s.roomTypes {
		if rt.DormID == dormID {
			rt.IsAvailable = false
			m.s.roomTypes[id] = rt
		}
	}
	return nil
}

func (m *mockRoomTypeRepo) ListByDorm(_ context.Context, dormID int64, onlyAvailable bool) ([]model.RoomType, error) {
	out := make([]model.RoomType, 0)
	for _, rt := range m.s.roomTypes {
		if rt.DormID == dormID && (!onlyAvailable || rt.IsAvailable) {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRoomTypeRepo) GetByID(_ context.Context, id int64) (*model.RoomType, error) {
	if rt, ok := m.s.roomTypes[id]; ok {
		return &rt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomTypeRepo) byName(dormID int64, name string) (model.RoomType, bool) {
	for _, rt := range m.s.roomTypes {
		if rt.DormID == dormID && rt.RoomName == name {
			return rt, true
		}
	}
	return model.RoomType{}, false
}

func (m *mockRoomTypeRepo) Create(_ context.Context, rt *model.RoomType) error {
	if _, dup := m.byName(rt.DormID, rt.RoomName); dup {
		return gorm.ErrDuplicatedKey
	}
	rt.ID = m.s.nextID()
	m.s.roomTypes[rt.ID] = *rt
	return nil
}

func (m *mockRoomTypeRepo) Update(_ context.Context, rt *model.RoomType) error {
	if _, ok := m.s.roomTypes[rt.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if other, dup := m.byName(rt.DormID, rt.RoomName); dup && other.ID != rt.ID {
		return gorm.ErrDuplicatedKey
	}
	m.s.roomTypes[rt.ID] = *rt
	return nil
}

func (m *mockRoomTypeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.s.roomTypes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.s.roomTypes, id)
	return nil
}

func (m *mockRoomTypeRepo) UpsertByName(_ context.Context, rt *model.RoomType) error {
	if err := m.s.check("RoomType.UpsertByName"); err != nil {
		return err
	}
	rt.IsAvailable = true
	if existing, ok := m.byName(rt.DormID, rt.RoomName); ok {
		rt.ID = existing.ID
	} else {
		rt.ID = m.s.nextID()
	}
	m.s.roomTypes[rt.ID] = *rt
	return nil
}

func (m *mockRoomTypeRepo) DeleteByDorm(_ context.Context, dormID int64) error {
	if err := m.s.check("RoomType.DeleteByDorm"); err != nil {
		return err
	}
	for id, rt := range m.s.roomTypes {
		if rt.DormID == dormID {
			delete(m.s.roomTypes, id)
		}
	}
	return nil
}

// ── Mock ImageRepository ──

type mockImageRepo struct{ s *memStore }

func (m *mockImageRepo) ListByDorm(_ context.Context, dormID int64) ([]model.DormitoryImage, error) {
	out := make([]model.DormitoryImage, 0)
	for _, img := range m.s.images {
		if img.DormID == dormID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *mockImageRepo) GetByID(_ context.Context, id int64) (*model.DormitoryImage, error) {
	if img, ok := m.s.images[id]; ok {
		return &img, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockImageRepo) Create(_ context.Context, img *model.DormitoryImage) error {
	if err := m.s.check("Image.Create"); err != nil {
		return err
	}
	img.ID = m.s.nextID()
	img.UploadDate = timeNow()
	m.s.images[img.ID] = *img
	return nil
}

func (m *mockImageRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.s.images[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.s.images, id)
	return nil
}

func (m *mockImageRepo) ClearPrimary(_ context.Context, dormID int64) error {
	for id, img := range m.s.images {
		if img.DormID == dormID {
			img.IsPrimary = false
			m.s.images[id] = img
		}
	}
	return nil
}

func (m *mockImageRepo) SetPrimary(_ context.Context, id int64) error {
	img, ok := m.s.images[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	img.IsPrimary = true
	m.s.images[id] = img
	return nil
}

func (m *mockImageRepo) DeleteByDorm(_ context.Context, dormID int64) error {
	if err := m.s.check("Image.DeleteByDorm"); err != nil {
		return err
	}
	for id, img := range m.s.images {
		if img.DormID == dormID {
			delete(m.s.images, id)
		}
	}
	return nil
}

// ── Mock AmenityRepository ──

type mockAmenityRepo struct{ s *memStore }

func (m *mockAmenityRepo) MarkAllUnavailable(_ context.Context, dormID int64) error {
	for key, da := range m.s.dormAmenities {
		if key[0] == dormID {
			da.IsAvailable = false
			m.s.dormAmenities[key] = da
		}
	}
	return nil
}

func (m *mockAmenityRepo) List(_ context.Context) ([]model.Amenity, error) {
	out := make([]model.Amenity, 0, len(m.s.amenities))
	for _, a := range m.s.amenities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockAmenityRepo) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := m.s.amenities[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *mockAmenityRepo) ListByDorm(_ context.Context, dormID int64, onlyAvailable bool) ([]model.DormitoryAmenity, error) {
	out := make([]model.DormitoryAmenity, 0)
	for key, da := range m.s.dormAmenities {
		if key[0] == dormID && (!onlyAvailable || da.IsAvailable) {
			da.AmenityName = m.s.amenities[da.AmenityID].AmenityName
			out = append(out, da)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AmenityID < out[j].AmenityID })
	return out, nil
}

func (m *mockAmenityRepo) Upsert(_ context.Context, da *model.DormitoryAmenity) error {
	if err := m.s.check("Amenity.Upsert"); err != nil {
		return err
	}
	da.IsAvailable = true
	m.s.dormAmenities[[2]int64{da.DormID, da.AmenityID}] = *da
	return nil
}

func (m *mockAmenityRepo) DeleteByDorm(_ context.Context, dormID int64) error {
	for key := range m.s.dormAmenities {
		if key[0] == dormID {
			delete(m.s.dormAmenities, key)
		}
	}
	return nil
}

// ── Mock ContactRepository ──

type mockContactRepo struct{ s *memStore }

func (m *mockContactRepo) Create(_ context.Context, c *model.ContactInfo) error {
	c.ID = m.s.nextID()
	m.s.contacts[c.ID] = *c
	return nil
}

func (m *mockContactRepo) GetByID(_ context.Context, id int64) (*model.ContactInfo, error) {
	if c, ok := m.s.contacts[id]; ok {
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContactRepo) Update(_ context.Context, c *model.ContactInfo) error {
	if _, ok := m.s.contacts[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.s.contacts[c.ID] = *c
	return nil
}

func (m *mockContactRepo) DeleteUnreferenced(_ context.Context, id int64) (bool, error) {
	if err := m.s.check("Contact.DeleteUnreferenced"); err != nil {
		return false, err
	}
	for _, d := range m.s.dorms {
		if d.ContactID != nil && *d.ContactID == id {
			return false, nil
		}
	}
	_, ok := m.s.contacts[id]
	delete(m.s.contacts, id)
	return ok, nil
}

// ── Mock ZoneRepository ──

type mockZoneRepo struct{ s *memStore }

func (m *mockZoneRepo) List(_ context.Context) ([]model.Zone, error) {
	out := make([]model.Zone, 0, len(m.s.zones))
	for _, z := range m.s.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockZoneRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := m.s.zones[id]
	return ok, nil
}

// ── Mock MemberRequestRepository ──

type mockMemberRequestRepo struct{ s *memStore }

func (m *mockMemberRequestRepo) GetPending(_ context.Context, userID, dormID int64) (*model.MemberRequest, error) {
	for _, r := range m.s.requests {
		if r.UserID == userID && r.DormID == dormID && r.Status == model.RequestPending {
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRequestRepo) Create(ctx context.Context, req *model.MemberRequest) error {
	if err := m.s.check("MemberRequest.Create"); err != nil {
		return err
	}
	if req.Status == "" {
		req.Status = model.RequestPending
	}
	if req.Status == model.RequestPending {
		if _, err := m.GetPending(ctx, req.UserID, req.DormID); err == nil {
			return gorm.ErrDuplicatedKey
		}
	}
	req.ID = m.s.nextID()
	req.RequestDate = timeNow()
	m.s.requests[req.ID] = *req
	return nil
}

func (m *mockMemberRequestRepo) GetByID(_ context.Context, id int64) (*model.MemberRequest, error) {
	if r, ok := m.s.requests[id]; ok {
		return &r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRequestRepo) list(match func(r model.MemberRequest) bool) []model.MemberRequest {
	out := make([]model.MemberRequest, 0)
	for _, r := range m.s.requests {
		if match(r) {
			r.DormName = m.s.dorms[r.DormID].DormName
			r.Username = m.s.users[r.UserID].Username
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *mockMemberRequestRepo) ListByUser(_ context.Context, userID int64) ([]model.MemberRequest, error) {
	return m.list(func(r model.MemberRequest) bool { return r.UserID == userID }), nil
}

func (m *mockMemberRequestRepo) ListByDorm(_ context.Context, dormID int64, status string) ([]model.MemberRequest, error) {
	return m.list(func(r model.MemberRequest) bool {
		return r.DormID == dormID && (status == "" || r.Status == status)
	}), nil
}

func (m *mockMemberRequestRepo) CancelPendingByUser(_ context.Context, userID, exceptID int64, at time.Time) (int64, error) {
	if err := m.s.check("MemberRequest.CancelPendingByUser"); err != nil {
		return 0, err
	}
	var n int64
	for id, r := range m.s.requests {
		if r.UserID == userID && r.Status == model.RequestPending && id != exceptID {
			r.Status = model.RequestCancelled
			r.RespondedAt = &at
			m.s.requests[id] = r
			n++
		}
	}
	return n, nil
}

func (m *mockMemberRequestRepo) CancelApproved(_ context.Context, userID, dormID int64, at time.Time) error {
	for id, r := range m.s.requests {
		if r.UserID == userID && r.DormID == dormID && r.Status == model.RequestApproved {
			r.Status = model.RequestCancelled
			r.RespondedAt = &at
			m.s.requests[id] = r
		}
	}
	return nil
}

func (m *mockMemberRequestRepo) UpdateStatus(_ context.Context, id int64, status string, at time.Time) error {
	if err := m.s.check("MemberRequest.UpdateStatus"); err != nil {
		return err
	}
	r, ok := m.s.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = status
	r.RespondedAt = &at
	m.s.requests[id] = r
	return nil
}

// ── Mock StayRepository ──

type mockStayRepo struct{ s *memStore }

func (m *mockStayRepo) GetCurrent(_ context.Context, userID int64) (*model.Stay, error) {
	for _, st := range m.s.stays {
		if st.UserID == userID && st.IsCurrent {
			return &st, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStayRepo) EndCurrent(_ context.Context, userID int64, endDate time.Time) (int64, error) {
	if err := m.s.check("Stay.EndCurrent"); err != nil {
		return 0, err
	}
	var n int64
	for id, st := range m.s.stays {
		if st.UserID != userID || !st.IsCurrent {
			continue
		}
		end := datatypes.Date(endDate)
		if time.Time(end).Before(time.Time(st.StartDate)) {
			end = st.StartDate
		}
		st.IsCurrent = false
		st.EndDate = &end
		m.s.stays[id] = st
		n++
	}
	return n, nil
}

func (m *mockStayRepo) Create(ctx context.Context, stay *model.Stay) error {
	if err := m.s.check("Stay.Create"); err != nil {
		return err
	}
	if stay.IsCurrent {
		if _, err := m.GetCurrent(ctx, stay.UserID); err == nil {
			return gorm.ErrDuplicatedKey
		}
	}
	stay.ID = m.s.nextID()
	m.s.stays[stay.ID] = *stay
	return nil
}

func (m *mockStayRepo) ListByUser(_ context.Context, userID int64) ([]model.Stay, error) {
	if err := m.s.check("Stay.ListByUser"); err != nil {
		return nil, err
	}
	out := make([]model.Stay, 0)
	for _, st := range m.s.stays {
		if st.UserID == userID {
			st.DormName = m.s.dorms[st.DormID].DormName
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsCurrent != out[j].IsCurrent {
			return out[i].IsCurrent
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ── Mock ReviewRepository ──

type mockReviewRepo struct{ s *memStore }

func (m *mockReviewRepo) Create(ctx context.Context, review *model.Review) error {
	if err := m.s.check("Review.Create"); err != nil {
		return err
	}
	if _, err := m.GetByUserAndDorm(ctx, review.UserID, review.DormID); err == nil {
		return gorm.ErrDuplicatedKey
	}
	review.ID = m.s.nextID()
	review.CreatedAt = timeNow()
	review.UpdatedAt = review.CreatedAt
	m.s.reviews[review.ID] = *review
	return nil
}

func (m *mockReviewRepo) GetByID(_ context.Context, id int64) (*model.Review, error) {
	if r, ok := m.s.reviews[id]; ok {
		return &r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReviewRepo) GetByUserAndDorm(_ context.Context, userID, dormID int64) (*model.Review, error) {
	for _, r := range m.s.reviews {
		if r.UserID == userID && r.DormID == dormID {
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReviewRepo) ListByDorm(_ context.Context, dormID int64, offset, limit int) ([]model.Review, int64, error) {
	out := make([]model.Review, 0)
	for _, r := range m.s.reviews {
		if r.DormID == dormID {
			r.Username = m.s.users[r.UserID].Username
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return pageOf(out, offset, limit), int64(len(out)), nil
}

func (m *mockReviewRepo) Update(_ context.Context, review *model.Review) error {
	r, ok := m.s.reviews[review.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Rating = review.Rating
	r.Comment = review.Comment
	r.UpdatedAt = timeNow()
	review.UpdatedAt = r.UpdatedAt
	m.s.reviews[review.ID] = r
	return nil
}

func (m *mockReviewRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.s.reviews[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.s.reviews, id)
	return nil
}

func (m *mockReviewRepo) Summary(_ context.Context, dormID int64) (*model.RatingSummary, error) {
	if err := m.s.check("Review.Summary"); err != nil {
		return nil, err
	}
	summary := m.s.summary(dormID)
	return &summary, nil
}

func (s *memStore) summary(dormID int64) model.RatingSummary {
	var (
		sum   int
		count int64
	)
	for _, r := range s.reviews {
		if r.DormID == dormID {
			sum += r.Rating
			count++
		}
	}
	out := model.RatingSummary{ReviewCount: count}
	if count > 0 {
		avg := float64(sum) / float64(count)
		out.AverageRating = &avg
	}
	return out
}

// ── Mock Uploader / SessionRevoker ──

type mockUploader struct {
	uploads []string
	err     error
}

func (u *mockUploader) Upload(_ context.Context, _ []byte, contentType, folder string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	url := "https://cdn.test/" + folder + "/" + strings.ReplaceAll(contentType, "/", "-")
	u.uploads = append(u.uploads, url)
	return url, nil
}

type mockRevoker struct {
	revoked map[string]time.Time
	err     error
}

func (r *mockRevoker) RevokeSessions(_ context.Context, uid string, at time.Time) error {
	if r.err != nil {
		return r.err
	}
	if r.revoked == nil {
		r.revoked = map[string]time.Time{}
	}
	r.revoked[uid] = at
	return nil
}

package service

import (
	"regexp"
	"strings"

	"dormhub/internal/dto"
	"dormhub/internal/model"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.]{3,30}$`)

// validateProfile 注册、完善资料共用的唯一校验入口
// 校验通过后载荷只保留与角色匹配的字段组；管理员角色不能通过资料接口获得
func validateProfile(p *dto.ProfilePayload) error {
	p.Username = strings.TrimSpace(p.Username)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.PhoneNumber = trimOptional(p.PhoneNumber)

	if !usernamePattern.MatchString(p.Username) {
		return ErrProfileInvalid.WithMessage("用户名只能包含字母、数字、下划线和点，长度 3-30")
	}
	if p.FirstName == "" || p.LastName == "" {
		return ErrProfileInvalid.WithMessage("姓名不能为空")
	}

	switch p.MemberType {
	case model.MemberTypeMember:
		if p.Member == nil || strings.TrimSpace(p.Member.University) == "" {
			return ErrProfileInvalid.WithMessage("住户必须填写所在大学")
		}
		p.Member.University = strings.TrimSpace(p.Member.University)
		p.Member.StudentID = trimOptional(p.Member.StudentID)
		if p.Member.DormID != nil && *p.Member.DormID <= 0 {
			return ErrProfileInvalid.WithMessage("dorm_id 无效")
		}
		p.Owner = nil
	case model.MemberTypeOwner:
		if p.Owner == nil || strings.TrimSpace(p.Owner.BusinessPhone) == "" {
			return ErrProfileInvalid.WithMessage("房东必须填写联系电话")
		}
		p.Owner.BusinessPhone = strings.TrimSpace(p.Owner.BusinessPhone)
		p.Owner.BusinessName = trimOptional(p.Owner.BusinessName)
		p.Member = nil
	default:
		return ErrProfileInvalid.WithMessage("未知的用户类型: %s", p.MemberType)
	}
	return nil
}

// applyProfile 把已校验的载荷写入用户，另一角色的字段清空
func applyProfile(u *model.User, p *dto.ProfilePayload) {
	u.Username = p.Username
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.PhoneNumber = p.PhoneNumber
	u.MemberType = p.MemberType

	u.University, u.StudentID = nil, nil
	u.BusinessName, u.BusinessPhone = nil, nil

	if p.Member != nil {
		university := p.Member.University
		u.University = &university
		u.StudentID = p.Member.StudentID
	}
	if p.Owner != nil {
		phone := p.Owner.BusinessPhone
		u.BusinessPhone = &phone
		u.BusinessName = p.Owner.BusinessName
	}
	if !u.IsMember() {
		u.ResidenceDormID = nil
	}
}

// requestedDorm 载荷中希望入住的宿舍，仅住户有效
func requestedDorm(p *dto.ProfilePayload) *int64 {
	if p.Member == nil {
		return nil
	}
	return p.Member.DormID
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

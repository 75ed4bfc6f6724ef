package service

import (
	"context"
	"errors"
	"testing"

	"dormhub/internal/model"
)

func TestImageService_Upload_FirstBecomesPrimary(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.seedUser("owner1", model.MemberTypeOwner)
	dorm := env.seedDorm(owner.ID, "Baan Suan", model.ApprovalApproved)

	images, err := env.svc.Image.Upload(context.Background(), owner.ID, dorm.ID, []ImageUpload{
		{Data: pngHeader},
		{Data: pngHeader, ImageType: model.ImageTypeRoom},
	})
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}
	if len(images) != 2 || !images[0].IsPrimary || images[1].IsPrimary {
		t.Errorf("第一张应成为主图: %+v", images)
	}
	if images[0].ImageType != model.ImageTypeGeneral {
		t.Errorf("默认类型应为 general，实际 %s", images[0].ImageType)
	}
	if len(env.uploader.uploads) != 2 {
		t.Errorf("期望上传 2 个对象，实际 %d", len(env.uploader.uploads))
	}

	more, err := env.svc.Image.Upload(context.Background(), owner.ID, dorm.ID, []ImageUpload{{Data: pngHeader}})
	if err != nil {
		t.Fatalf("再次上传应成功: %v", err)
	}
	if more[0].IsPrimary {
		t.Error("已有主图时新图片不应成为主图")
	}
}

func TestImageService_Upload_Rejections(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.seedUser("owner1", model.MemberTypeOwner)
	intruder := env.seedUser("owner2", model.MemberTypeOwner)
	dorm := env.seedDorm(owner.ID, "Baan Suan", model.ApprovalApproved)

	if _, err := env.svc.Image.Upload(context.Background(), owner.ID, dorm.ID, []ImageUpload{{Data: []byte("plain text")}}); !errors.Is(err, ErrImageUnsupported) {
		t.Errorf("期望 ErrImageUnsupported，实际: %v", err)
	}
	if _, err := env.svc.Image.Upload(context.Background(), owner.ID, dorm.ID, nil); !errors.Is(err, ErrImageCount) {
		t.Errorf("期望 ErrImageCount，实际: %v", err)
	}
	big := make([]byte, 2<<20)
	copy(big, pngHeader)
	if _, err := env.svc.Image.Upload(context.Background(), owner.ID, dorm.ID, []ImageUpload{{Data: big}}); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("期望 ErrImageTooLarge，实际: %v", err)
	}
	if _, err := env.svc.Image.Upload(context.Background(), intruder.ID, dorm.ID, []ImageUpload{{Data: pngHeader}}); !errors.Is(err, ErrDormitoryForbidden) {
		t.Errorf("期望 ErrDormitoryForbidden，实际: %v", err)
	}
	if len(env.uploader.uploads) != 0 {
		t.Error("校验或鉴权失败时不应上传对象")
	}

	env.uploader.err = errInjected
	if _, err := env.svc.Image.Upload(context.Background(), owner.ID, dorm.ID, []ImageUpload{{Data: pngHeader}}); !errors.Is(err, ErrImageUploadFailed) {
		t.Errorf("期望 ErrImageUploadFailed，实际: %v", err)
	}
	if len(env.store.images) != 0 {
		t.Error("上传失败不应写入图片行")
	}
}

func TestImageService_SetPrimaryAndDelete(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.seedUser("owner1", model.MemberTypeOwner)
	dorm := env.seedDorm(owner.ID, "Baan Suan", model.ApprovalApproved)

	images, err := env.svc.Image.Upload(context.Background(), owner.ID, dorm.ID, []ImageUpload{
		{Data: pngHeader}, {Data: pngHeader}, {Data: pngHeader},
	})
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}

	if err := env.svc.Image.SetPrimary(context.Background(), owner.ID, images[1].ID); err != nil {
		t.Fatalf("SetPrimary 应成功: %v", err)
	}
	primaries := 0
	for _, img := range env.store.images {
		if img.IsPrimary {
			primaries++
			if img.ID != images[1].ID {
				t.Errorf("主图应为 %d，实际 %d", images[1].ID, img.ID)
			}
		}
	}
	if primaries != 1 {
		t.Errorf("期望恰好 1 张主图，实际 %d", primaries)
	}

	// 删除主图后最新的一张成为主图
	if err := env.svc.Image.Delete(context.Background(), owner.ID, images[1].ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if !env.store.images[images[2].ID].IsPrimary {
		t.Error("最新图片应被提升为主图")
	}

	if err := env.svc.Image.Delete(context.Background(), owner.ID, images[1].ID); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("期望 ErrImageNotFound，实际: %v", err)
	}
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dormhub/internal/model"
	"dormhub/internal/repository"
)

// exportBatchSize 导出时分批读取宿舍列表
const exportBatchSize = 200

// ExportService 导出业务接口
//
// 设计说明：
//   - 管理员按审核状态导出宿舍清单为 Excel (.xlsx)
//   - 住户导出自己的居住记录为 iCalendar，每段居住记录为一个全天事件
//   - 导出内容以内存缓冲返回，由 Handler 设置响应头后写出
type ExportService interface {
	// ExportDormitories status 为空时导出全部宿舍
	ExportDormitories(ctx context.Context, status string) (*bytes.Buffer, string, error)
	ExportStayCalendar(ctx context.Context, userID int64) ([]byte, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var dormitoryStatusNames = map[string]string{
	model.ApprovalPending:  "待审核",
	model.ApprovalApproved: "已通过",
	model.ApprovalRejected: "已驳回",
}

// ═══════════════════════════════════════════════════════════
// ExportDormitories 导出宿舍清单为 Excel
// ═══════════════════════════════════════════════════════════
//
// 表头: | ID | 宿舍名称 | 地址 | 区域 | 状态 | 最低月租 | 最高月租 | 平均评分 | 评价数 | 创建时间 |

func (s *exportService) ExportDormitories(ctx context.Context, status string) (*bytes.Buffer, string, error) {
	var items []model.DormitoryListItem
	for offset := 0; ; offset += exportBatchSize {
		batch, total, err := s.repo.Dormitory.ListByStatus(ctx, status, offset, exportBatchSize)
		if err != nil {
			s.logger.Error("查询宿舍列表失败", zap.String("status", status), zap.Error(err))
			return nil, "", err
		}
		items = append(items, batch...)
		if len(batch) == 0 || int64(len(items)) >= total {
			break
		}
	}
	if len(items) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "宿舍清单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "宿舍名称", "地址", "区域", "状态", "最低月租", "最高月租", "平均评分", "评价数", "创建时间"}
	widths := []float64{8, 24, 36, 14, 10, 12, 12, 10, 8, 20}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	row := 2
	for _, d := range items {
		values := []interface{}{
			d.ID,
			d.DormName,
			d.Address,
			d.ZoneName,
			statusName(d.ApprovalStatus),
			floatOrDash(d.MinPrice),
			floatOrDash(d.MaxPrice),
			floatOrDash(d.AverageRating),
			d.ReviewCount,
			d.CreatedAt.Format("2006-01-02 15:04"),
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail.Wrap(err)
	}

	filename := fmt.Sprintf("dormitories_%s.xlsx", timeNow().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportStayCalendar 导出居住记录为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每条居住记录对应一个全天事件；当前居住记录没有结束日期，
// 事件截止到导出当天的次日

func (s *exportService) ExportStayCalendar(ctx context.Context, userID int64) ([]byte, string, error) {
	stays, err := s.repo.Stay.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询居住记录失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, "", err
	}
	if len(stays) == 0 {
		return nil, "", ErrExportNoData
	}

	now := timeNow().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//dormhub//stays//TH")
	cal.SetXWRCalName("Dormitory stays")

	for _, st := range stays {
		start := time.Time(st.StartDate)
		end := now.AddDate(0, 0, 1)
		if st.EndDate != nil {
			end = time.Time(*st.EndDate).AddDate(0, 0, 1)
		}

		evt := cal.AddEvent(fmt.Sprintf("stay-%d@dormhub", st.ID))
		evt.SetDtStampTime(now)
		evt.SetAllDayStartAt(start)
		evt.SetAllDayEndAt(end)
		name := st.DormName
		if name == "" {
			name = fmt.Sprintf("Dormitory #%d", st.DormID)
		}
		if st.IsCurrent {
			name += " (current)"
		}
		evt.SetSummary(name)
	}

	filename := fmt.Sprintf("stays_%d.ics", userID)
	return []byte(cal.Serialize()), filename, nil
}

// ── 辅助函数 ──

func statusName(status string) string {
	if name, ok := dormitoryStatusNames[status]; ok {
		return name
	}
	return status
}

func floatOrDash(v *float64) interface{} {
	if v == nil {
		return "-"
	}
	return *v
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

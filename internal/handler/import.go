package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/user/webnav/internal/model"
	"github.com/user/webnav/internal/utils"
	"github.com/xuri/excelize/v2"
)

// ==================== 管理后台：导入导出 ====================

var validate = validator.New()

// CategoryImportRow 分类导入行
type CategoryImportRow struct {
	Name        string `validate:"required"`
	Slug        string `validate:"required"`
	Description string
	Icon        string
	Color       string
	Sort        int
}

// WebsiteImportRow 网站导入行
type WebsiteImportRow struct {
	Title        string `validate:"required"`
	Url          string `validate:"required,url"`
	Description  string
	Icon         string
	CategoryID   uint
	CategorySlug string
	Tags         string
	IsFeatured   bool
	IsShow       bool
	Sort         int
}

// ImportResult 导入结果汇总
type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// AdminImport 表格批量导入分类或网站
func (h *Handler) AdminImport(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "请选择文件")
		return
	}

	importType := c.PostForm("type")
	if importType != "websites" && importType != "categories" {
		utils.BadRequest(c, "无效的导入类型")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequest(c, "无法读取文件")
		return
	}
	defer file.Close()

	workbook, err := excelize.OpenReader(file)
	if err != nil {
		utils.BadRequest(c, "无法解析表格文件")
		return
	}
	defer workbook.Close()

	records, err := sheetRecords(workbook)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var result *ImportResult
	if importType == "categories" {
		result = h.importCategories(records)
	} else {
		result = h.importWebsites(records)
	}
	c.JSON(http.StatusOK, result)
}

// sheetRecords 读取第一个工作表，按标题行转成键值记录
func sheetRecords(workbook *excelize.File) ([]map[string]string, error) {
	sheet := workbook.GetSheetName(0)
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败")
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("表格没有数据行")
	}

	headers := make([]string, len(rows[0]))
	for i, head := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(head))
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				record[header] = strings.TrimSpace(row[i])
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// importCategories 逐行导入分类，错误带上表格行号（数据从第 2 行开始）
func (h *Handler) importCategories(records []map[string]string) *ImportResult {
	result := &ImportResult{Errors: []string{}}

	for i, record := range records {
		rowNum := i + 2

		row := CategoryImportRow{
			Name:        record["name"],
			Slug:        record["slug"],
			Description: record["description"],
			Icon:        record["icon"],
			Color:       record["color"],
			Sort:        parseIntOrZero(record["sort"]),
		}

		if err := validate.Struct(row); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: 名称和标识不能为空", rowNum))
			continue
		}

		existing, err := h.Repos.Category.FindBySlug(row.Slug)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: %v", rowNum, err))
			continue
		}
		if existing != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: 标识 %q 已存在", rowNum, row.Slug))
			continue
		}

		category := &model.Category{
			Name:        row.Name,
			Slug:        row.Slug,
			Description: row.Description,
			Icon:        row.Icon,
			Color:       row.Color,
			Sort:        row.Sort,
			IsShow:      true,
		}
		if err := h.Repos.Category.Create(category); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: %v", rowNum, err))
			continue
		}
		result.Success++
	}
	return result
}

// importWebsites 逐行导入网站
// 分类按 categoryid → categoryslug → 默认分类的顺序解析
func (h *Handler) importWebsites(records []map[string]string) *ImportResult {
	result := &ImportResult{Errors: []string{}}

	for i, record := range records {
		rowNum := i + 2

		row := WebsiteImportRow{
			Title:        record["title"],
			Url:          record["url"],
			Description:  record["description"],
			Icon:         record["icon"],
			CategorySlug: record["categoryslug"],
			Tags:         record["tags"],
			IsFeatured:   parseTruthy(record["isfeatured"]),
			IsShow:       record["isshow"] == "" || parseTruthy(record["isshow"]),
			Sort:         parseIntOrZero(record["sort"]),
		}
		if id := parseIntOrZero(record["categoryid"]); id > 0 {
			row.CategoryID = uint(id)
		}

		if err := validate.Struct(row); err != nil {
			if row.Title == "" || row.Url == "" {
				result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: 名称和网址不能为空", rowNum))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: 网址格式不正确", rowNum))
			}
			result.Failed++
			continue
		}

		categoryID, errMsg := h.resolveImportCategory(row)
		if errMsg != "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: %s", rowNum, errMsg))
			continue
		}

		website := &model.Website{
			Title:       row.Title,
			Url:         row.Url,
			Description: row.Description,
			Icon:        row.Icon,
			CategoryID:  categoryID,
			Tags:        row.Tags,
			IsFeatured:  row.IsFeatured,
			IsShow:      row.IsShow,
			Sort:        row.Sort,
		}
		if err := h.Repos.Website.Create(website); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: %v", rowNum, err))
			continue
		}
		result.Success++
	}
	return result
}

func (h *Handler) resolveImportCategory(row WebsiteImportRow) (uint, string) {
	if row.CategoryID > 0 {
		category, err := h.Repos.Category.FindByID(row.CategoryID)
		if err != nil {
			return 0, err.Error()
		}
		if category == nil {
			return 0, "分类不存在"
		}
		return category.ID, ""
	}

	if row.CategorySlug != "" {
		category, err := h.Repos.Category.FindBySlug(row.CategorySlug)
		if err != nil {
			return 0, err.Error()
		}
		if category != nil {
			return category.ID, ""
		}
	}

	// 没指定分类时落到排序最靠前的分类
	category, err := h.Repos.Category.FindFirst()
	if err != nil {
		return 0, err.Error()
	}
	if category == nil {
		return 0, "分类ID或分类标识不能为空，请先创建分类"
	}
	return category.ID, ""
}

// AdminExport 导出分类或网站为表格
func (h *Handler) AdminExport(c *gin.Context) {
	exportType := c.Query("type")
	if exportType != "websites" && exportType != "categories" {
		utils.BadRequest(c, "无效的导出类型")
		return
	}

	workbook := excelize.NewFile()
	defer workbook.Close()
	sheet := workbook.GetSheetName(0)

	var err error
	if exportType == "categories" {
		err = h.exportCategories(workbook, sheet)
	} else {
		err = h.exportWebsites(workbook, sheet)
	}
	if err != nil {
		utils.InternalServerError(c, "导出失败")
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", exportType))
	if err := workbook.Write(c.Writer); err != nil {
		utils.InternalServerError(c, "导出失败")
	}
}

func (h *Handler) exportCategories(workbook *excelize.File, sheet string) error {
	categories, err := h.Repos.Category.ListAll()
	if err != nil {
		return err
	}

	headers := []interface{}{"name", "slug", "description", "icon", "color", "sort", "isshow"}
	if err := workbook.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, category := range categories {
		row := []interface{}{
			category.Name, category.Slug, category.Description,
			category.Icon, category.Color, category.Sort, category.IsShow,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) exportWebsites(workbook *excelize.File, sheet string) error {
	websites, err := h.Repos.Website.ListAdmin()
	if err != nil {
		return err
	}

	headers := []interface{}{
		"title", "url", "description", "icon", "categoryslug",
		"tags", "isfeatured", "isshow", "sort", "clickcount",
	}
	if err := workbook.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, website := range websites {
		categorySlug := ""
		if website.Category != nil {
			categorySlug = website.Category.Slug
		}
		row := []interface{}{
			website.Title, website.Url, website.Description, website.Icon,
			categorySlug, website.Tags, website.IsFeatured, website.IsShow,
			website.Sort, website.ClickCount,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func parseIntOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "是":
		return true
	}
	return false
}

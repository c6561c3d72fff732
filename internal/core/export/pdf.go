package export

import (
	"bytes"
	"fmt"
	"strings"

	"chefs-fridge/internal/core/recipe"
	"chefs-fridge/internal/infrastructure/config"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

// DefaultLabel 未指定名稱時的下載檔名
const DefaultLabel = "recipes"

// Section 一份食譜在文件中的段落
type Section struct {
	Title string `json:"title"`
}

// Document 匯出結果
type Document struct {
	Bytes    []byte
	Pages    int
	Sections []Section
	FileName string
}

// Renderer PDF 產生器
type Renderer struct {
	config config.PDFConfig
}

// NewRenderer 建立 PDF 產生器
func NewRenderer(cfg config.PDFConfig) *Renderer {
	return &Renderer{config: cfg}
}

// Render 產生封面與每份食譜各自起新頁的 PDF，每頁頁尾有作者與頁碼
func (r *Renderer) Render(texts []string, label string) (*Document, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.config.Compress)
	pdf.SetTitle(ToCP1252(r.config.Title), false)
	pdf.SetAuthor(ToCP1252(r.config.Author), false)
	pdf.SetAutoPageBreak(true, 20)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		footer := fmt.Sprintf("%s | Page %d", r.config.Author, pdf.PageNo())
		pdf.CellFormat(0, 10, ToCP1252(footer), "", 0, "C", false, 0, "")
	})

	r.cover(pdf)

	sections := make([]Section, 0, len(texts))
	for i, text := range texts {
		text = recipe.Normalize(text)
		title := recipe.ExtractTitle(text, i+1)
		sections = append(sections, Section{Title: title})

		pdf.AddPage()
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 15, ToCP1252(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)

		pdf.SetFont("Arial", "", 12)
		pdf.MultiCell(0, 10, ToCP1252(recipe.Body(text)), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	return &Document{
		Bytes:    buf.Bytes(),
		Pages:    pdf.PageCount(),
		Sections: sections,
		FileName: FileName(label),
	}, nil
}

// cover 封面：產品名稱、作者、聯絡方式、聲明
func (r *Renderer) cover(pdf *fpdf.Fpdf) {
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, ToCP1252(r.config.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, ToCP1252(r.config.Author), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 10, ToCP1252(r.config.Contact), "", 1, "C", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 10, ToCP1252(r.config.Disclaimer), "", 1, "C", false, 0, "")
}

// ToCP1252 轉為 Windows-1252，無法表示的字元直接丟棄
func ToCP1252(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// FileName 下載檔名 "<label>.pdf"，去除路徑與引號字元
func FileName(label string) string {
	label = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\r', '\n':
			return -1
		}
		return r
	}, strings.TrimSpace(label))
	label = strings.TrimSuffix(label, ".pdf")
	if label == "" {
		label = DefaultLabel
	}
	return label + ".pdf"
}

// Package export produces the downloadable files of a conversation: generated images and
// history items as PDF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/constant"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
	"mime"
	"strings"
)

// ErrNoImage is returned when a turn carries no inline image.
var ErrNoImage = errors.New("turn has no image")

const filePrefix = "gram-gpt"

// ImageFileName builds the download name of a generated image, for example
// gram-gpt-image.png or gram-gpt-image-3.jpeg. The extension is the media subtype.
func ImageFileName(mimeType, suffix string) string {
	name := filePrefix + "-image"
	if suffix != "" {
		name += "-" + suffix
	}
	return name + "." + imageExt(mimeType)
}

// HistoryFileName builds the PDF name of the history item with the given number.
func HistoryFileName(index int) string {
	return fmt.Sprintf("%s-history-%d.pdf", filePrefix, index)
}

// ImageBytes decodes the first image of the turn.
func ImageBytes(turn models.Turn) ([]byte, string, error) {
	data, ok := turn.FirstImage()
	if !ok {
		return nil, "", ErrNoImage
	}
	raw, err := data.Bytes()
	if err != nil {
		return nil, "", err
	}
	return raw, data.MimeType, nil
}

func imageExt(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "png"
	}
	_, sub, ok := strings.Cut(mt, "/")
	if !ok || sub == "" {
		return "png"
	}
	// image/svg+xml -> svg
	if i := strings.IndexByte(sub, '+'); i > 0 {
		sub = sub[:i]
	}
	return sub
}

// PDFExporter renders history items as A4 documents.
type PDFExporter struct {
	fontPath string // TTF с поддержкой бенгальского; пусто - встроенный Helvetica
}

// NewPDFExporter creates an exporter. Without a font file only Latin text renders correctly.
func NewPDFExporter(fontPath string) *PDFExporter {
	if strings.TrimSpace(fontPath) == "" {
		logrus.Warn("PDF_FONT_PATH is not set, Bengali text in exported PDFs will not render")
	}
	return &PDFExporter{fontPath: strings.TrimSpace(fontPath)}
}

// Labels returns the section titles. Bengali needs the configured font, the built-in
// Helvetica only has Latin glyphs.
func (e *PDFExporter) Labels() (prompt, answer string) {
	if e.fontPath == "" {
		return "Prompt", "Answer"
	}
	return constant.PDF_LABEL_PROMPT, constant.PDF_LABEL_ANSWER
}

// HistoryPDF renders one history item: the prompt, the uploaded image, the answer text
// and the generated image.
func (e *PDFExporter) HistoryPDF(item models.Exchange) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	if e.fontPath != "" {
		family = "GramFont"
		pdf.AddUTF8Font(family, "", e.fontPath)
	}
	pdf.SetTitle(HistoryFileName(item.Index), true)
	pdf.AddPage()

	pdf.SetFont(family, "", 16)
	pdf.MultiCell(0, 8, fmt.Sprintf("GramGPT #%d", item.Index), "", "L", false)
	pdf.Ln(4)

	promptLabel, answerLabel := e.Labels()
	e.section(pdf, family, promptLabel, item.Prompt)
	e.section(pdf, family, answerLabel, item.Answer)

	if !pdf.Ok() {
		return nil, fmt.Errorf("render pdf: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) section(pdf *fpdf.Fpdf, family, title string, turn models.Turn) {
	pdf.SetFont(family, "", 13)
	pdf.MultiCell(0, 7, title, "", "L", false)
	pdf.SetFont(family, "", 11)
	if text := turn.PlainText(); text != "" {
		pdf.MultiCell(0, 6, text, "", "L", false)
	}

	for i, part := range turn.Parts {
		data, ok := part.InlineData()
		if !ok {
			continue
		}
		imageType := pdfImageType(data.MimeType)
		if imageType == "" {
			continue
		}
		raw, err := data.Bytes()
		if err != nil {
			continue
		}
		name := fmt.Sprintf("%s-%d", title, i)
		opts := fpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
		info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
		if info == nil || !pdf.Ok() {
			return
		}

		pageW, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		maxW := pageW - left - right
		w := info.Width()
		if w > maxW || w <= 0 {
			w = maxW
		}
		// Высота 0: fpdf сохраняет пропорции
		pdf.ImageOptions(name, left, pdf.GetY()+2, w, 0, true, opts, 0, "")
	}
	pdf.Ln(6)
}

// pdfImageType returns the fpdf image type of a media type, or "" when fpdf cannot embed it.
func pdfImageType(mimeType string) string {
	switch imageExt(mimeType) {
	case "png":
		return "PNG"
	case "jpeg", "jpg":
		return "JPG"
	case "gif":
		return "GIF"
	}
	return ""
}

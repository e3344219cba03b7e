package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"example.com/flvgate/internal/common"
	"example.com/flvgate/internal/flv"
	"example.com/flvgate/internal/splice"
)

const qrImageName = "file-sha256"

// SaveInspectionPDF renders an inspection into a one-page PDF. When the
// inspection carries the file digest it is printed and embedded as a QR code.
func SaveInspectionPDF(in splice.Inspection, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("FLV Inspection", false)
	pdf.SetAuthor("flvctl", false)
	pdf.SetCreator("flvctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "FLV Inspection")
	if err := addDigest(pdf, in.SHA256); err != nil {
		return err
	}
	addSummarySection(pdf, in)
	addRangesSection(pdf, in.Ranges)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addDigest(pdf *gofpdf.Fpdf, sha string) error {
	if strings.TrimSpace(sha) == "" {
		return nil
	}
	png, err := FileHashToQR(sha, 256)
	if err != nil {
		return fmt.Errorf("qr: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, opts, bytes.NewReader(png))
	w, _ := pdf.GetPageSize()
	_, _, right, _ := pdf.GetMargins()
	pdf.ImageOptions(qrImageName, w-right-30, 18, 30, 30, false, opts, 0, "")

	pdf.SetFont("Courier", "", 8)
	pdf.MultiCell(140, 4, "SHA-256 "+sha, "", "L", false)
	pdf.Ln(6)
	return nil
}

func addSummarySection(pdf *gofpdf.Fpdf, in splice.Inspection) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "File", value: emptyFallback(in.Name, "-")},
		{label: "Size", value: common.FormatBytes(int64(in.Size))},
		{label: "Tags", value: strconv.Itoa(in.Tags)},
		{label: "Video / Audio / Metadata", value: fmt.Sprintf("%d / %d / %d", in.Video, in.Audio, in.Metadata)},
		{label: "First tag metadata", value: yesNo(in.FirstMetadata)},
		{label: "Backward steps", value: strconv.Itoa(in.Backward)},
		{label: "Skipped bytes", value: strconv.Itoa(in.SkippedBytes)},
		{label: "Gaps", value: strconv.Itoa(in.Gaps)},
		{label: "Scan", value: scanLabel(in)},
	}
	for _, item := range items {
		pdf.CellFormat(60, 6, item.label, "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 6, item.value, "", "L", false)
	}
	pdf.Ln(4)
}

func addRangesSection(pdf *gofpdf.Fpdf, ranges []splice.TimeRange) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Time Ranges")
	pdf.Ln(9)

	if len(ranges) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No tags found.", "", "L", false)
		return
	}

	headers := []string{"#", "Start", "End", "Duration"}
	widths := []float64{15, 45, 45, 45}
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i, r := range ranges {
		values := []string{
			strconv.Itoa(i + 1),
			flv.FormatClock(r.Start),
			flv.FormatClock(r.End),
			flv.FormatClock(r.End - r.Start),
		}
		for j, v := range values {
			pdf.CellFormat(widths[j], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func scanLabel(in splice.Inspection) string {
	if in.Complete {
		return "complete"
	}
	return fmt.Sprintf("stopped at offset %d (%d%%): %s", in.StopOffset, in.StopPercent, in.StopReason)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}

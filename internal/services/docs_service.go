package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"sitebackend/internal/domain/models"
	"sitebackend/internal/utils"

	"github.com/phpdave11/gofpdf"
)

type BookingReader interface {
	GetByID(ctx context.Context, id string) (models.Booking, error)
}

// DocsService renders booking documents as PDF.
type DocsService struct {
	Bookings BookingReader
	BaseURL  string
	Loader   func(ctx context.Context, id string) (models.Booking, error)
}

func (s DocsService) load(ctx context.Context, id string) (models.Booking, error) {
	if s.Loader != nil {
		return s.Loader(ctx, id)
	}
	b, err := s.Bookings.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return models.Booking{}, storeErr(ctx, "booking", "confirmation", err)
	}
	return b, nil
}

// BookingConfirmation returns the confirmation PDF and its download filename.
func (s DocsService) BookingConfirmation(ctx context.Context, id string) ([]byte, string, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	utils.LogCtx(ctx, "docs", "booking_confirmation", "booking_id="+b.ID)
	links := BookingService{BaseURL: s.BaseURL}.Links(b.Token)
	return buildConfirmationPDF(b, links)
}

func buildConfirmationPDF(b models.Booking, links map[string]string) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Booking Confirmation", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING CONFIRMATION")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Reference : %s", shortRef(b.ID)),
		fmt.Sprintf("Name      : %s", safe(b.Name, "-")),
		fmt.Sprintf("Email     : %s", safe(b.Email, "-")),
		fmt.Sprintf("Company   : %s", safe(utils.Deref(b.Company, ""), "-")),
		fmt.Sprintf("Phone     : %s", safe(utils.Deref(b.Phone, ""), "-")),
		fmt.Sprintf("Date      : %s", safe(utils.DateOnly(b.SelectedDate), "-")),
		fmt.Sprintf("Time      : %s %s", safe(b.SelectedTime, "-"), utils.Deref(b.Timezone, "")),
		fmt.Sprintf("Status    : %s", b.Status),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, tr(l))
		pdf.Ln(7)
	}

	if msg := utils.Deref(b.Message, ""); msg != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Message")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(msg), "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Need to change plans? Use the links below.", "", "", false)
	pdf.MultiCell(0, 6, "Cancel: "+links["cancel"], "", "", false)
	pdf.MultiCell(0, 6, "Reschedule: "+links["reschedule"], "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("BOOKING_%s_%s.pdf", shortRef(b.ID), safeFilenamePart(b.Name))
	return buf.Bytes(), filename, nil
}

func shortRef(id string) string {
	id = strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

package services

import (
	"context"
	"fmt"

	"sitebackend/internal/domain"
	"sitebackend/internal/domain/models"
	"sitebackend/internal/utils"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

type BookingLister interface {
	List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error)
}

// ExportService renders admin booking listings as XLSX workbooks.
type ExportService struct {
	Bookings BookingLister
}

var exportHeaders = []string{
	"ID", "Name", "Email", "Company", "Phone", "Date", "Time", "Timezone",
	"Status", "Cancellation reason", "Original booking", "Confirmation sent", "Reminder sent", "Created at",
}

func (s ExportService) ExportBookings(ctx context.Context, f models.BookingFilter) ([]byte, string, error) {
	list, err := s.Bookings.List(ctx, f)
	if err != nil {
		return nil, "", storeErr(ctx, "booking", "export", err)
	}

	data, err := buildBookingsWorkbook(list)
	if err != nil {
		utils.LogCtx(ctx, "booking", "export", err.Error())
		return nil, "", domain.InternalError{Err: err}
	}
	name := "bookings"
	if f.From != "" || f.To != "" {
		name = fmt.Sprintf("bookings_%s_%s", safe(f.From, "start"), safe(f.To, "end"))
	}
	utils.LogCtx(ctx, "booking", "export", fmt.Sprintf("rows=%d", len(list)))
	return data, name + ".xlsx", nil
}

func buildBookingsWorkbook(list []models.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheet, "A1", last, style)
	}

	for r, b := range list {
		row := []any{
			b.ID, b.Name, b.Email, utils.Deref(b.Company, ""), utils.Deref(b.Phone, ""),
			b.SelectedDate, b.SelectedTime, utils.Deref(b.Timezone, ""),
			string(b.Status), utils.Deref(b.CancellationReason, ""), utils.Deref(b.OriginalBookingID, ""),
			b.ConfirmationSent, b.ReminderSent, utils.FormatDateTime(b.CreatedAt),
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

package service

import (
	"time"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/internal/repository"
	"hospital-bed-management/pkg/apperr"
)

// ChargeService derives a day-by-day bed-occupancy timeline from the
// admission and its completed transfers and prices it against the room-type
// rate table. It only reads finished history and is deterministic for a
// fixed history and rate table.
type ChargeService struct {
	admissionRepo *repository.AdmissionRepository
	transferRepo  *repository.TransferRepository
	rateRepo      *repository.RateRepository
}

func NewChargeService(
	admissionRepo *repository.AdmissionRepository,
	transferRepo *repository.TransferRepository,
	rateRepo *repository.RateRepository,
) *ChargeService {
	return &ChargeService{
		admissionRepo: admissionRepo,
		transferRepo:  transferRepo,
		rateRepo:      rateRepo,
	}
}

// DayCharge is the price of one calendar day of occupancy.
type DayCharge struct {
	Date     string  `json:"date"`
	RoomType string  `json:"room_type"`
	BedID    uint    `json:"bed_id"`
	Rate     float64 `json:"rate"`
}

// ChargePreview is the result of a bed-charge preview.
type ChargePreview struct {
	AdmissionID     uint        `json:"admission_id"`
	Days            []DayCharge `json:"days"`
	TotalAmount     float64     `json:"total_amount"`
	MissingRateDays int         `json:"missing_rate_days"`
}

// occupancySegment marks the bed occupied from Start until the next segment.
type occupancySegment struct {
	Start time.Time
	Bed   *models.Bed
}

// PreviewBedCharges walks the admission's occupancy timeline from admission
// start through each completed transfer's effective bed-change time to
// discharge (or the requested to date) and prices every calendar day. Days
// without a covering rate row are priced at zero and counted in
// missing_rate_days.
func (s *ChargeService) PreviewBedCharges(admissionID uint, from, to *time.Time) (*ChargePreview, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperr.Validation("to_date precedes from_date")
	}

	admission, err := s.admissionRepo.GetAdmissionByID(admissionID)
	if err != nil {
		return nil, err
	}

	transfers, err := s.transferRepo.ListCompletedTransfersByAdmission(admissionID)
	if err != nil {
		return nil, err
	}

	segments := buildOccupancySegments(admission, transfers)
	preview := &ChargePreview{AdmissionID: admissionID, Days: []DayCharge{}}
	if len(segments) == 0 {
		return preview, nil
	}

	// The stay ends at discharge or cancellation; an open stay bills
	// through the present.
	end := time.Now()
	if admission.DischargedAt != nil {
		end = *admission.DischargedAt
	} else if admission.CancelledAt != nil {
		end = *admission.CancelledAt
	}
	if to != nil && to.Before(end) {
		end = *to
	}

	firstDay := startOfDay(admission.AdmittedAt)
	if from != nil && from.After(firstDay) {
		firstDay = startOfDay(*from)
	}
	lastDay := startOfDay(end)

	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		// The bed billed for a day is the one occupied at the start of the
		// day; the admission day itself is billed at the admitting bed.
		at := day
		if at.Before(admission.AdmittedAt) {
			at = admission.AdmittedAt
		}
		bed := bedOccupiedAt(segments, at)
		if bed == nil {
			continue
		}

		charge := DayCharge{
			Date:     day.Format("2006-01-02"),
			RoomType: bed.Room.RoomType,
			BedID:    bed.ID,
		}

		rate, err := s.rateRepo.RateForDay(bed.Room.RoomType, day)
		if err != nil {
			return nil, err
		}
		if rate == nil {
			preview.MissingRateDays++
		} else {
			charge.Rate = rate.DailyRate
		}

		preview.Days = append(preview.Days, charge)
		preview.TotalAmount += charge.Rate
	}

	return preview, nil
}

// buildOccupancySegments reconstructs which bed the admission occupied over
// time: the admitting bed from admission start, then each completed
// transfer's target bed from its effective change time (occupied_at, else
// completed_at).
func buildOccupancySegments(admission *models.Admission, transfers []models.TransferRequest) []occupancySegment {
	var initial *models.Bed
	if len(transfers) > 0 {
		initial = &transfers[0].FromBed
	} else if admission.CurrentBed != nil {
		initial = admission.CurrentBed
	}
	if initial == nil {
		return nil
	}

	segments := []occupancySegment{{Start: admission.AdmittedAt, Bed: initial}}
	for i := range transfers {
		t := &transfers[i]
		if t.ToBed == nil {
			continue
		}
		changedAt := t.CompletedAt
		if t.OccupiedAt != nil {
			changedAt = t.OccupiedAt
		}
		if changedAt == nil {
			continue
		}
		segments = append(segments, occupancySegment{Start: *changedAt, Bed: t.ToBed})
	}
	return segments
}

func bedOccupiedAt(segments []occupancySegment, at time.Time) *models.Bed {
	var bed *models.Bed
	for i := range segments {
		if segments[i].Start.After(at) {
			break
		}
		bed = segments[i].Bed
	}
	return bed
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

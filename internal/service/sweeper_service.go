package service

import (
	"context"
	"log"
	"time"

	"hospital-bed-management/internal/repository"
)

// SweeperService periodically returns expired reservations to vacant. The
// claim CAS already treats elapsed reservations as vacant on the next write;
// the sweep keeps the rows readers see tidy between writes.
type SweeperService struct {
	bedRepo  *repository.BedRepository
	interval time.Duration
}

func NewSweeperService(bedRepo *repository.BedRepository, interval time.Duration) *SweeperService {
	return &SweeperService{
		bedRepo:  bedRepo,
		interval: interval,
	}
}

// Start begins the background sweep loop
func (s *SweeperService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Reservation sweeper started - interval %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Reservation sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *SweeperService) sweep() {
	released, err := s.bedRepo.SweepExpiredReservations(time.Now())
	if err != nil {
		log.Printf("Error sweeping expired reservations: %v", err)
		return
	}
	if released > 0 {
		log.Printf("Released %d expired bed reservations", released)
	}
}

package tests

import (
	"context"
	"strings"
	"sync"
	"testing"

	"cabshare/internal/domain"
	"cabshare/internal/service"
)

func newTrackingFixture() (*MockTrackingRepository, *MockUserRepository, *service.TrackingService) {
	trackingRepo := NewMockTrackingRepository()
	userRepo := NewMockUserRepository()
	svc := service.NewTrackingService(trackingRepo, userRepo, "http://localhost:8080", 3, nil)
	return trackingRepo, userRepo, svc
}

// ──────────────────────────────────────────────
// 1. LINK CREATION
// ──────────────────────────────────────────────

func TestCreateLink_Succeeds(t *testing.T) {
	t.Parallel()

	trackingRepo, _, svc := newTrackingFixture()

	resp, err := svc.CreateLink(context.Background(), service.CreateLinkRequest{
		UserID: "user-1",
		Pickup: domain.Location{Address: "Main Gate", Lat: 12.9716, Lng: 77.5946},
		Drop:   domain.Location{Address: "MG Road Metro", Lat: 12.9756, Lng: 77.6068},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(resp.TrackingID) != 32 {
		t.Errorf("expected 32-char hex token, got %q", resp.TrackingID)
	}
	if resp.TrackingURL != "http://localhost:8080/v1/external/track/"+resp.TrackingID {
		t.Errorf("unexpected tracking URL: %s", resp.TrackingURL)
	}

	if !strings.HasPrefix(resp.DeepLink, "uber://?action=setPickup") {
		t.Errorf("unexpected deep link scheme: %s", resp.DeepLink)
	}
	for _, part := range []string{
		"pickup[latitude]=12.9716",
		"pickup[longitude]=77.5946",
		"dropoff[latitude]=12.9756",
		"dropoff[longitude]=77.6068",
		"dropoff[nickname]=MG+Road+Metro",
	} {
		if !strings.Contains(resp.DeepLink, part) {
			t.Errorf("deep link missing %q: %s", part, resp.DeepLink)
		}
	}

	record := trackingRepo.GetRecord(resp.TrackingID)
	if record == nil {
		t.Fatal("expected record persisted")
	}
	if record.Status != domain.TrackingStatusCreated {
		t.Errorf("expected status created, got %s", record.Status)
	}
	if record.CommissionRate != 3 {
		t.Errorf("expected rate pinned at 3, got %v", record.CommissionRate)
	}
}

func TestCreateLink_TokensAreUnique(t *testing.T) {
	t.Parallel()

	_, _, svc := newTrackingFixture()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		resp, err := svc.CreateLink(context.Background(), service.CreateLinkRequest{
			UserID: "user-1",
			Pickup: domain.Location{Address: "A", Lat: 1, Lng: 1},
			Drop:   domain.Location{Address: "B", Lat: 2, Lng: 2},
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if seen[resp.TrackingID] {
			t.Fatalf("duplicate token: %s", resp.TrackingID)
		}
		seen[resp.TrackingID] = true
	}
}

func TestCreateLink_InvalidLocation_Fails(t *testing.T) {
	t.Parallel()

	_, _, svc := newTrackingFixture()

	_, err := svc.CreateLink(context.Background(), service.CreateLinkRequest{
		UserID: "user-1",
		Pickup: domain.Location{Address: "", Lat: 1, Lng: 1},
		Drop:   domain.Location{Address: "B", Lat: 2, Lng: 2},
	})
	if err != service.ErrInvalidPickupLocation {
		t.Errorf("expected ErrInvalidPickupLocation, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. CLICK TRACKING
// ──────────────────────────────────────────────

func TestTraverse_CountsClicksAndAdvancesStatus(t *testing.T) {
	t.Parallel()

	trackingRepo, _, svc := newTrackingFixture()
	trackingRepo.AddRecord(&domain.RideTracking{
		ID:         "t-1",
		UserID:     "user-1",
		TrackingID: "token-1",
		DeepLink:   "uber://?action=setPickup",
		Status:     domain.TrackingStatusCreated,
	})

	for i := 1; i <= 3; i++ {
		deepLink, err := svc.Traverse(context.Background(), "token-1")
		if err != nil {
			t.Fatalf("click %d failed: %v", i, err)
		}
		if deepLink != "uber://?action=setPickup" {
			t.Errorf("expected deep link returned, got %s", deepLink)
		}
	}

	record := trackingRepo.GetRecord("token-1")
	if record.ClickCount != 3 {
		t.Errorf("expected 3 clicks, got %d", record.ClickCount)
	}
	if record.Status != domain.TrackingStatusClicked {
		t.Errorf("expected status clicked, got %s", record.Status)
	}
}

// ──────────────────────────────────────────────
// 3. PROOF SUBMISSION AND COMMISSION
// ──────────────────────────────────────────────

func seedClickedRecord(trackingRepo *MockTrackingRepository, userRepo *MockUserRepository) {
	userRepo.AddUser(&domain.User{ID: "user-1", Email: "u1@college.edu"})
	trackingRepo.AddRecord(&domain.RideTracking{
		ID:             "t-1",
		UserID:         "user-1",
		TrackingID:     "token-1",
		Status:         domain.TrackingStatusClicked,
		ClickCount:     1,
		CommissionRate: 3,
	})
}

func TestSubmitProof_CreditsCommission(t *testing.T) {
	t.Parallel()

	trackingRepo, userRepo, svc := newTrackingFixture()
	seedClickedRecord(trackingRepo, userRepo)

	updated, err := svc.SubmitProof(context.Background(), service.SubmitProofRequest{
		UserID:     "user-1",
		TrackingID: "token-1",
		ActualFare: 500,
		ProofImage: "receipt.jpg",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if updated.CommissionEarned != 15 {
		t.Errorf("expected commission 15 (500 at 3%%), got %v", updated.CommissionEarned)
	}
	if updated.Status != domain.TrackingStatusCompleted {
		t.Errorf("expected status completed, got %s", updated.Status)
	}
	if !updated.ProofUploaded {
		t.Error("expected proof flag set")
	}

	if got := userRepo.GetUser("user-1").CommissionBalance; got != 15 {
		t.Errorf("expected balance 15, got %v", got)
	}
}

func TestSubmitProof_Resubmission_Rejected(t *testing.T) {
	t.Parallel()

	trackingRepo, userRepo, svc := newTrackingFixture()
	seedClickedRecord(trackingRepo, userRepo)

	req := service.SubmitProofRequest{
		UserID:     "user-1",
		TrackingID: "token-1",
		ActualFare: 500,
	}

	if _, err := svc.SubmitProof(context.Background(), req); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	req.ActualFare = 900
	if _, err := svc.SubmitProof(context.Background(), req); err != service.ErrProofAlreadySubmitted {
		t.Fatalf("expected ErrProofAlreadySubmitted, got %v", err)
	}

	// No double credit, no fare overwrite.
	if got := userRepo.GetUser("user-1").CommissionBalance; got != 15 {
		t.Errorf("expected balance 15, got %v", got)
	}
	if got := trackingRepo.GetRecord("token-1").ActualFare; got != 500 {
		t.Errorf("expected fare 500, got %v", got)
	}
}

func TestSubmitProof_ConcurrentSubmissions_CreditOnce(t *testing.T) {
	t.Parallel()

	trackingRepo, userRepo, svc := newTrackingFixture()
	seedClickedRecord(trackingRepo, userRepo)

	const attempts = 6
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.SubmitProof(context.Background(), service.SubmitProofRequest{
				UserID:     "user-1",
				TrackingID: "token-1",
				ActualFare: 500,
			})
		}()
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		switch err {
		case nil:
			wins++
		case service.ErrProofAlreadySubmitted:
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("expected exactly 1 successful submission, got %d", wins)
	}
	if got := userRepo.GetUser("user-1").CommissionBalance; got != 15 {
		t.Errorf("expected single credit of 15, got %v", got)
	}
	if userRepo.AddCommissionCallCount != 1 {
		t.Errorf("expected 1 credit call, got %d", userRepo.AddCommissionCallCount)
	}
}

func TestSubmitProof_NotOwner_Rejected(t *testing.T) {
	t.Parallel()

	trackingRepo, userRepo, svc := newTrackingFixture()
	seedClickedRecord(trackingRepo, userRepo)

	_, err := svc.SubmitProof(context.Background(), service.SubmitProofRequest{
		UserID:     "user-2",
		TrackingID: "token-1",
		ActualFare: 500,
	})
	if err != service.ErrNotTrackingOwner {
		t.Errorf("expected ErrNotTrackingOwner, got %v", err)
	}
}

func TestSubmitProof_InvalidFare_Rejected(t *testing.T) {
	t.Parallel()

	trackingRepo, userRepo, svc := newTrackingFixture()
	seedClickedRecord(trackingRepo, userRepo)

	for _, fare := range []float64{0, -1} {
		_, err := svc.SubmitProof(context.Background(), service.SubmitProofRequest{
			UserID:     "user-1",
			TrackingID: "token-1",
			ActualFare: fare,
		})
		if err != service.ErrInvalidFare {
			t.Errorf("fare %v: expected ErrInvalidFare, got %v", fare, err)
		}
	}
}

// ──────────────────────────────────────────────
// 4. READS
// ──────────────────────────────────────────────

func TestGetRecord_OwnerOnly(t *testing.T) {
	t.Parallel()

	trackingRepo, userRepo, svc := newTrackingFixture()
	seedClickedRecord(trackingRepo, userRepo)

	if _, err := svc.GetRecord(context.Background(), "user-1", "token-1"); err != nil {
		t.Errorf("expected owner access, got %v", err)
	}
	if _, err := svc.GetRecord(context.Background(), "user-2", "token-1"); err != service.ErrNotTrackingOwner {
		t.Errorf("expected ErrNotTrackingOwner, got %v", err)
	}
}

func TestGetMyRecords_FiltersByOwner(t *testing.T) {
	t.Parallel()

	trackingRepo, userRepo, svc := newTrackingFixture()
	seedClickedRecord(trackingRepo, userRepo)
	trackingRepo.AddRecord(&domain.RideTracking{
		ID:         "t-2",
		UserID:     "user-2",
		TrackingID: "token-2",
		Status:     domain.TrackingStatusCreated,
	})

	records, err := svc.GetMyRecords(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(records) != 1 || records[0].TrackingID != "token-1" {
		t.Errorf("expected only user-1 records, got %+v", records)
	}
}

package db

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/davidx1x1/device-loan/models"
)

func TestReservePicksLowestFreeDevice(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "user-1", "u1@ex.edu", models.RoleStudent)
	m := seedModel(t, r, "model-1", "Apple", "MacBook Air")
	seedDevice(t, r, "dev-1", m.ID, "SN-001")
	seedDevice(t, r, "dev-2", m.ID, "SN-002")

	loan, err := r.Reserve(ctx, u.ID, m.ID, 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if loan.DeviceID != "dev-1" {
		t.Fatalf("expected lowest-id device dev-1, got %s", loan.DeviceID)
	}
	if loan.Status != models.LoanStatusReserved {
		t.Fatalf("status = %s, want reserved", loan.Status)
	}
	if !loan.DueDate.After(loan.ReservedAt) {
		t.Fatalf("due date %v not after reserved at %v", loan.DueDate, loan.ReservedAt)
	}

	// Second reservation gets the next device.
	u2 := seedUser(t, r, "user-2", "u2@ex.edu", models.RoleStudent)
	loan2, err := r.Reserve(ctx, u2.ID, m.ID, 2)
	if err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if loan2.DeviceID != "dev-2" {
		t.Fatalf("expected dev-2, got %s", loan2.DeviceID)
	}
}

func TestReserveExhausted(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "user-1", "u1@ex.edu", models.RoleStudent)
	m := seedModel(t, r, "model-1", "Apple", "iPad")
	seedDevice(t, r, "dev-1", m.ID, "SN-001")

	if _, err := r.Reserve(ctx, u.ID, m.ID, 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	u2 := seedUser(t, r, "user-2", "u2@ex.edu", models.RoleStudent)
	if _, err := r.Reserve(ctx, u2.ID, m.ID, 2); !errors.Is(err, ErrNoAvailableDevices) {
		t.Fatalf("err = %v, want ErrNoAvailableDevices", err)
	}
}

func TestReserveSkipsAdministrativelyUnavailable(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "user-1", "u1@ex.edu", models.RoleStudent)
	m := seedModel(t, r, "model-1", "Canon", "EOS R10")
	d := seedDevice(t, r, "dev-1", m.ID, "SN-001")
	if err := r.DB.Model(&models.Device{}).Where("id = ?", d.ID).
		Update("is_available", false).Error; err != nil {
		t.Fatalf("retire device: %v", err)
	}

	if _, err := r.Reserve(ctx, u.ID, m.ID, 2); !errors.Is(err, ErrNoAvailableDevices) {
		t.Fatalf("err = %v, want ErrNoAvailableDevices", err)
	}
}

func TestReserveValidation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "user-1", "u1@ex.edu", models.RoleStudent)
	m := seedModel(t, r, "model-1", "Apple", "MacBook Air")
	seedDevice(t, r, "dev-1", m.ID, "SN-001")

	if _, err := r.Reserve(ctx, u.ID, m.ID, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("err = %v, want ErrInvalidDuration", err)
	}
	if _, err := r.Reserve(ctx, u.ID, m.ID, -3); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("err = %v, want ErrInvalidDuration", err)
	}
	if _, err := r.Reserve(ctx, u.ID, "no-such-model", 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// The engine's core property: M concurrent calls for a model with K free
// devices yield exactly K loans, each on a distinct device.
func TestConcurrentReserveNoDoubleBooking(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	m := seedModel(t, r, "model-1", "Apple", "MacBook Air")
	seedDevice(t, r, "dev-1", m.ID, "SN-001")
	seedDevice(t, r, "dev-2", m.ID, "SN-002")

	const workers = 8
	users := make([]*models.User, workers)
	for i := 0; i < workers; i++ {
		users[i] = seedUser(t, r, "user-"+string(rune('a'+i)), string(rune('a'+i))+"@ex.edu", models.RoleStudent)
	}

	type result struct {
		loan *models.Loan
		err  error
	}
	results := make(chan result, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := r.Reserve(ctx, users[i].ID, m.ID, 2)
			results <- result{l, err}
		}(i)
	}
	wg.Wait()
	close(results)

	devices := map[string]bool{}
	var ok, exhausted int
	for res := range results {
		switch {
		case res.err == nil:
			ok++
			if devices[res.loan.DeviceID] {
				t.Fatalf("device %s allocated twice", res.loan.DeviceID)
			}
			devices[res.loan.DeviceID] = true
		case errors.Is(res.err, ErrNoAvailableDevices):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", res.err)
		}
	}
	if ok != 2 || exhausted != workers-2 {
		t.Fatalf("got %d successes and %d exhausted, want 2 and %d", ok, exhausted, workers-2)
	}
}

func TestCollectReturnHappyPath(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "user-1", "u1@ex.edu", models.RoleStudent)
	staff := seedUser(t, r, "staff-1", "desk@ex.edu", models.RoleStaff)
	m := seedModel(t, r, "model-1", "Apple", "MacBook Air")
	seedDevice(t, r, "dev-1", m.ID, "SN-001")

	loan, err := r.Reserve(ctx, u.ID, m.ID, 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	collected, err := r.Collect(ctx, loan.ID, staff.ID)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if collected.Status != models.LoanStatusCollected {
		t.Fatalf("status = %s, want collected", collected.Status)
	}
	if collected.CollectedAt == nil || collected.CollectedBy == nil || *collected.CollectedBy != staff.ID {
		t.Fatalf("collect did not record staff/time: %+v", collected)
	}

	returned, err := r.Return(ctx, loan.ID, staff.ID)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if returned.Status != models.LoanStatusReturned {
		t.Fatalf("status = %s, want returned", returned.Status)
	}
	if returned.ReturnedAt == nil || returned.ReturnedBy == nil || *returned.ReturnedBy != staff.ID {
		t.Fatalf("return did not record staff/time: %+v", returned)
	}

	// The device is loanable again.
	u2 := seedUser(t, r, "user-2", "u2@ex.edu", models.RoleStudent)
	loan2, err := r.Reserve(ctx, u2.ID, m.ID, 2)
	if err != nil {
		t.Fatalf("re-reserve after return: %v", err)
	}
	if loan2.DeviceID != "dev-1" {
		t.Fatalf("expected freed device dev-1, got %s", loan2.DeviceID)
	}
}

func TestIllegalTransitions(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "user-1", "u1@ex.edu", models.RoleStudent)
	staff := seedUser(t, r, "staff-1", "desk@ex.edu", models.RoleStaff)
	m := seedModel(t, r, "model-1", "Apple", "MacBook Air")
	seedDevice(t, r, "dev-1", m.ID, "SN-001")

	loan, err := r.Reserve(ctx, u.ID, m.ID, 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	// Return before collect: precondition is collected.
	var ise *InvalidStatusError
	if _, err := r.Return(ctx, loan.ID, staff.ID); !errors.As(err, &ise) {
		t.Fatalf("err = %v, want InvalidStatusError", err)
	} else if ise.Current != models.LoanStatusReserved {
		t.Fatalf("carried status = %s, want reserved", ise.Current)
	}

	if _, err := r.Collect(ctx, loan.ID, staff.ID); err != nil {
		t.Fatalf("collect: %v", err)
	}

	// Double collect fails with the stale status.
	ise = nil
	if _, err := r.Collect(ctx, loan.ID, staff.ID); !errors.As(err, &ise) {
		t.Fatalf("err = %v, want InvalidStatusError", err)
	} else if ise.Current != models.LoanStatusCollected {
		t.Fatalf("carried status = %s, want collected", ise.Current)
	}

	// Cancel after collect is illegal.
	ise = nil
	if _, err := r.Cancel(ctx, loan.ID, u.ID); !errors.As(err, &ise) {
		t.Fatalf("err = %v, want InvalidStatusError", err)
	}

	if _, err := r.Return(ctx, loan.ID, staff.ID); err != nil {
		t.Fatalf("return: %v", err)
	}

	// Terminal state: no transition out of returned.
	ise = nil
	if _, err := r.Return(ctx, loan.ID, staff.ID); !errors.As(err, &ise) {
		t.Fatalf("err = %v, want InvalidStatusError", err)
	} else if ise.Current != models.LoanStatusReturned {
		t.Fatalf("carried status = %s, want returned", ise.Current)
	}

	// A failed transition leaves the row untouched.
	var check models.Loan
	if err := r.DB.First(&check, "id = ?", loan.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if check.Status != models.LoanStatusReturned {
		t.Fatalf("status mutated by failed transition: %s", check.Status)
	}
}

func TestTransitionsUnknownLoan(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	if _, err := r.Collect(ctx, "no-such-loan", "staff-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("collect err = %v, want ErrNotFound", err)
	}
	if _, err := r.Return(ctx, "no-such-loan", "staff-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("return err = %v, want ErrNotFound", err)
	}
}

func TestCancel(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "user-1", "u1@ex.edu", models.RoleStudent)
	other := seedUser(t, r, "user-2", "u2@ex.edu", models.RoleStudent)
	m := seedModel(t, r, "model-1", "Apple", "MacBook Air")
	seedDevice(t, r, "dev-1", m.ID, "SN-001")

	loan, err := r.Reserve(ctx, u.ID, m.ID, 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	// Someone else's loan reads as absent.
	if _, err := r.Cancel(ctx, loan.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	cancelled, err := r.Cancel(ctx, loan.ID, u.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.LoanStatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}

	// Cancelling frees the device.
	if _, err := r.Reserve(ctx, other.ID, m.ID, 2); err != nil {
		t.Fatalf("reserve after cancel: %v", err)
	}
}

func TestLoanDetailProjection(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "user-1", "u1@ex.edu", models.RoleStudent)
	m := seedModel(t, r, "model-1", "Apple", "MacBook Air")
	seedDevice(t, r, "dev-1", m.ID, "SN-001")

	loan, err := r.Reserve(ctx, u.ID, m.ID, 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	d, err := r.GetLoanDetail(ctx, loan.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.Brand != "Apple" || d.Model != "MacBook Air" || d.Serial != "SN-001" {
		t.Fatalf("projection joined wrong rows: %+v", d)
	}
	if d.UserEmail != "u1@ex.edu" {
		t.Fatalf("user email = %s", d.UserEmail)
	}

	if _, err := r.GetLoanDetail(ctx, "no-such-loan"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	rows, err := r.ListUserLoans(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != loan.ID {
		t.Fatalf("list = %+v", rows)
	}
}

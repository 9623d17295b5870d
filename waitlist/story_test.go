package waitlist

import (
	"context"
	"errors"
	"testing"

	"github.com/davidx1x1/device-loan/db"
	"github.com/davidx1x1/device-loan/models"
)

// Full lifecycle: two units of a model, three users racing for them, the
// loser waitlists, and a return lets them in.
func TestLoanLifecycleStory(t *testing.T) {
	repo, d, sender := newTestEnv(t)
	ctx := context.Background()

	m := seedModel(t, repo, "laptop-x")
	for _, dev := range []struct{ id, serial string }{
		{"dev-1", "SN-001"}, {"dev-2", "SN-002"},
	} {
		if err := repo.DB.Create(&models.Device{
			ID: dev.id, DeviceModelID: m.ID, Serial: dev.serial, IsAvailable: true,
		}).Error; err != nil {
			t.Fatalf("seed device: %v", err)
		}
	}
	u1 := seedUser(t, repo, "user-1", "u1@ex.edu")
	u2 := seedUser(t, repo, "user-2", "u2@ex.edu")
	u3 := seedUser(t, repo, "user-3", "u3@ex.edu")
	staff := &models.User{ID: "staff-1", Email: "desk@ex.edu", Name: "desk", Role: models.RoleStaff}
	if err := repo.DB.Create(staff).Error; err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	// Both units go out to distinct devices.
	l1, err := repo.Reserve(ctx, u1.ID, m.ID, 2)
	if err != nil {
		t.Fatalf("u1 reserve: %v", err)
	}
	l2, err := repo.Reserve(ctx, u2.ID, m.ID, 2)
	if err != nil {
		t.Fatalf("u2 reserve: %v", err)
	}
	if l1.DeviceID == l2.DeviceID {
		t.Fatalf("both loans on device %s", l1.DeviceID)
	}

	// Third request finds the model exhausted and waitlists instead.
	if _, err := repo.Reserve(ctx, u3.ID, m.ID, 2); !errors.Is(err, db.ErrNoAvailableDevices) {
		t.Fatalf("u3 reserve err = %v, want ErrNoAvailableDevices", err)
	}
	entry, err := repo.SubscribeWaitlist(ctx, u3.ID, m.ID)
	if err != nil {
		t.Fatalf("u3 subscribe: %v", err)
	}

	// u1's loan runs its course.
	if _, err := repo.Collect(ctx, l1.ID, staff.ID); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if _, err := repo.Return(ctx, l1.ID, staff.ID); err != nil {
		t.Fatalf("return: %v", err)
	}

	// Dispatch after the return commit: u3 hears about it.
	notified, err := d.OnDeviceReturned(ctx, m.ID)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(notified) != 1 || notified[0].ID != entry.ID {
		t.Fatalf("notified = %+v, want u3's entry", notified)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "u3@ex.edu" {
		t.Fatalf("sent = %v", sender.sent)
	}

	var check models.WaitlistEntry
	if err := repo.DB.First(&check, "id = ?", entry.ID).Error; err != nil {
		t.Fatalf("reload entry: %v", err)
	}
	if !check.Notified {
		t.Fatal("entry not marked notified")
	}

	// And now u3 can actually reserve the freed device.
	l3, err := repo.Reserve(ctx, u3.ID, m.ID, 2)
	if err != nil {
		t.Fatalf("u3 reserve after return: %v", err)
	}
	if l3.DeviceID != l1.DeviceID {
		t.Fatalf("u3 got %s, want freed device %s", l3.DeviceID, l1.DeviceID)
	}
}

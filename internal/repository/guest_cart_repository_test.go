package repository

import (
	"context"
	"testing"

	"github.com/stg-catalog/internal/models"
)

func TestMemoryGuestCartRepository(t *testing.T) {
	repo := NewMemoryGuestCartRepository()
	ctx := context.Background()
	deviceID := "memory-device"

	lines, err := repo.Get(ctx, deviceID)
	if err != nil {
		t.Fatalf("get empty slot failed: %v", err)
	}
	if lines == nil || len(lines) != 0 {
		t.Fatalf("empty slot must return empty slice, got %+v", lines)
	}

	saved := []models.CartLine{
		{ID: 1, Product: models.Product{ID: 10, Name: "Slot Produto"}, Quantity: 2},
	}
	if err := repo.Save(ctx, deviceID, saved); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	lines, err = repo.Get(ctx, deviceID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(lines) != 1 || lines[0].Product.ID != 10 || lines[0].Quantity != 2 {
		t.Fatalf("round trip mismatch: %+v", lines)
	}

	// 不同设备互不可见
	other, err := repo.Get(ctx, "another-device")
	if err != nil || len(other) != 0 {
		t.Fatalf("slots must be isolated per device, got %+v %v", other, err)
	}

	if err := repo.Clear(ctx, deviceID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	lines, err = repo.Get(ctx, deviceID)
	if err != nil || len(lines) != 0 {
		t.Fatalf("slot must be empty after clear, got %+v %v", lines, err)
	}
}

func TestMemoryGuestCartRepositorySaveNil(t *testing.T) {
	repo := NewMemoryGuestCartRepository()
	ctx := context.Background()
	deviceID := "nil-device"

	if err := repo.Save(ctx, deviceID, nil); err != nil {
		t.Fatalf("save nil failed: %v", err)
	}
	lines, err := repo.Get(ctx, deviceID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if lines == nil || len(lines) != 0 {
		t.Fatalf("nil save must read back as empty slice, got %+v", lines)
	}
}

func TestMemoryGuestCartRepositoryMalformedPayload(t *testing.T) {
	repo := NewMemoryGuestCartRepository()
	ctx := context.Background()

	cases := []struct {
		name    string
		payload []byte
	}{
		{"broken json", []byte("{not json")},
		{"wrong shape", []byte(`{"items": 1}`)},
		{"null", []byte("null")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deviceID := "malformed-" + tc.name
			repo.SaveRaw(deviceID, tc.payload)
			lines, err := repo.Get(ctx, deviceID)
			if err != nil {
				t.Fatalf("malformed payload must not error: %v", err)
			}
			if lines == nil || len(lines) != 0 {
				t.Fatalf("malformed payload must read as empty slice, got %+v", lines)
			}
		})
	}
}

package db

import "testing"

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer d.Close()

	// Schema applied: projects table exists and is empty.
	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		t.Fatalf("querying projects: %v", err)
	}
	if count != 0 {
		t.Errorf("projects count = %d, want 0", count)
	}
}

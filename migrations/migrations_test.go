package migrations

import (
	"strings"
	"testing"
)

func TestForDirection(t *testing.T) {
	up, err := ForDirection("up")
	if err != nil {
		t.Fatalf("ForDirection(up) error = %v", err)
	}
	for _, table := range []string{"station", "measurement"} {
		if !strings.Contains(up, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("up script does not create %s", table)
		}
	}

	down, err := ForDirection("down")
	if err != nil {
		t.Fatalf("ForDirection(down) error = %v", err)
	}
	if !strings.Contains(down, "DROP TABLE IF EXISTS measurement") {
		t.Error("down script does not drop measurement")
	}

	if _, err := ForDirection("sideways"); err == nil {
		t.Error("ForDirection(sideways) should fail")
	}
}

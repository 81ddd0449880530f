package integration

import (
	"fmt"
	"time"
)

// TestAdmin generates unique admin credentials using a timestamp
func TestAdmin(suffix string) (email, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("admin-%d-%s@example.com", ts, suffix)
	password = "TestPassword123!"
	return
}

package handler

import (
	"os"
	"testing"

	"github.com/flowcredit/backend/internal/interfaces/http/middleware"
)

func TestMain(m *testing.M) {
	middleware.SetupValidator()
	os.Exit(m.Run())
}

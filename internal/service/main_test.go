package service

import (
	"os"
	"testing"

	"github.com/wb-go/wbf/zlog"
)

func TestMain(m *testing.M) {
	zlog.InitConsole()
	os.Exit(m.Run())
}

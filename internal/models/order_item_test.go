package models

import (
	"strings"
	"testing"
)

func TestSetStatusMsgTruncates(t *testing.T) {
	item := &OrderItem{}

	item.SetStatusMsg("short message")
	if item.StatusMsg != "short message" {
		t.Errorf("status msg = %q", item.StatusMsg)
	}

	long := strings.Repeat("a", MaxStatusMsgLen+100)
	item.SetStatusMsg(long)
	if len(item.StatusMsg) != MaxStatusMsgLen {
		t.Errorf("status msg length = %d, want %d", len(item.StatusMsg), MaxStatusMsgLen)
	}
}

func TestTruncateMsgBoundary(t *testing.T) {
	exact := strings.Repeat("b", MaxStatusMsgLen)
	if got := TruncateMsg(exact); got != exact {
		t.Error("message at the bound was modified")
	}
	if got := TruncateMsg(""); got != "" {
		t.Errorf("TruncateMsg(\"\") = %q", got)
	}
	if got := TruncateMsg(exact + "c"); len(got) != MaxStatusMsgLen {
		t.Errorf("length = %d, want %d", len(got), MaxStatusMsgLen)
	}
}

func TestSetStatusRetiredIsTerminal(t *testing.T) {
	item := &OrderItem{Status: StatusUnknown}

	item.SetStatus(StatusPending)
	if item.Status != StatusPending {
		t.Errorf("status = %q, want pending", item.Status)
	}

	item.SetStatus(StatusRetired)
	for _, next := range []string{StatusOK, StatusWarning, StatusCritical, StatusUnknown, StatusPending} {
		item.SetStatus(next)
		if item.Status != StatusRetired {
			t.Fatalf("retired item moved to %q", item.Status)
		}
	}
}

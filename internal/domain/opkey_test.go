package domain

import (
	"testing"
	"time"
)

func TestOpKeys(t *testing.T) {
	t.Parallel()

	periodEnd := time.Date(2024, 6, 1, 12, 5, 0, 0, time.UTC)

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"scheduler", SchedulerKey("pos-1", periodEnd), "scheduler:pos-1:1717243500"},
		{"deposit", DepositKey("abc123"), "deposit:abc123"},
		{"withdraw", WithdrawKey("req-1"), "withdraw:req-1"},
		{"referral", ReferralKey("entry-1", 42, 3), "referral:entry-1:42:3"},
		{"boost charge", BoostChargeKey("req-1"), "boost:req-1:charge"},
		{"boost bonus", BoostBonusKey("req-1"), "boost:req-1:bonus"},
		{"farming open", FarmingDepositKey("req-1"), "farming:req-1:open"},
		{"farming close", FarmingReturnKey("pos-1"), "farming:pos-1:close"},
		{"mission", MissionKey("m-1", 7), "mission:m-1:7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, tc.got)
			}
		})
	}
}

func TestDailyBonusKeyUsesUTCDate(t *testing.T) {
	t.Parallel()

	// Just before midnight UTC in a positive-offset zone: the key must come
	// from the UTC date, not the local one.
	loc := time.FixedZone("UTC+3", 3*60*60)
	local := time.Date(2024, 6, 2, 1, 30, 0, 0, loc) // 2024-06-01 22:30 UTC

	if got := DailyBonusKey(7, local); got != "daily:7:2024-06-01" {
		t.Fatalf("expected daily:7:2024-06-01, got %q", got)
	}

	utc := time.Date(2024, 6, 1, 0, 0, 1, 0, time.UTC)
	if got := DailyBonusKey(7, utc); got != "daily:7:2024-06-01" {
		t.Fatalf("expected daily:7:2024-06-01, got %q", got)
	}
}

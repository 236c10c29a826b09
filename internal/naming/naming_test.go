package naming

import (
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
)

func TestPrefix(t *testing.T) {
	s := New("snp-", nil)
	assert.Equal(t, "snp-prod-mongo-db", s.Prefix("prod-mongo-db"))

	s = New("nightly-", nil)
	assert.Equal(t, "nightly-db1", s.Prefix("db1"))
}

func TestNewNameIsDeterministic(t *testing.T) {
	now := time.Date(2023, 1, 5, 7, 8, 9, 0, time.Local)
	s := New("snp-", testclock.NewClock(now))

	first := s.NewName("db1")
	assert.Equal(t, "snp-db1-2023-01-05-07-08-09", first)
	assert.Equal(t, first, s.NewName("db1"))
	assert.True(t, strings.HasPrefix(first, s.Prefix("db1")))
}

func TestNewNameSortsByTime(t *testing.T) {
	clk := testclock.NewClock(time.Date(2023, 9, 30, 23, 59, 59, 0, time.Local))
	s := New("snp-", clk)

	older := s.NewName("db1")
	clk.Advance(time.Second)
	newer := s.NewName("db1")

	assert.Less(t, older, newer)
}

func TestIsManaged(t *testing.T) {
	s := New("snp-", nil)

	cases := []struct {
		name string
		want bool
	}{
		{"snp-db1-2023-01-01-00-00-00", true},
		{"other-snp-db1-x", true},
		{"snp-db1", true},
		// db10 shares db1's prefix; containment cannot tell them apart
		{"snp-db10-2023-01-01-00-00-00", true},
		{"snp-db2-2023-01-01-00-00-00", false},
		{"manual backup of db1", false},
		{"SNP-db1-2023", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, s.IsManaged(tc.name, "db1"), tc.name)
	}
}

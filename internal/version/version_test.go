package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBuildInfo(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { SetBuildInfo(origVersion, origCommit, origDate) })
	SetBuildInfo(v, commit, date)
}

func TestGetInfo(t *testing.T) {
	withBuildInfo(t, "1.2.3", "abcdef1234567", "2025-01-02")

	info, err := GetInfo()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, uint64(1), info.SemVer.Major())
	assert.Contains(t, info.Platform, "/")
	assert.True(t, strings.HasPrefix(info.GoVersion, "go"))
}

func TestGetInfo_InvalidVersion(t *testing.T) {
	withBuildInfo(t, "not-a-version", "unknown", "unknown")

	_, err := GetInfo()
	assert.Error(t, err)
	assert.Error(t, ValidateVersion())
	assert.Contains(t, GetFormattedVersion(), "invalid version")
}

func TestGetFormattedVersion(t *testing.T) {
	tests := []struct {
		name     string
		commit   string
		date     string
		expected string
	}{
		{"development build", "unknown", "unknown", "psbrowse v0.3.0"},
		{"commit shortened", "abcdef1234567", "unknown", "psbrowse v0.3.0, commit abcdef1"},
		{"commit and date", "abc", "2025-01-02", "psbrowse v0.3.0, commit abc, built 2025-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, "0.3.0", tt.commit, tt.date)
			assert.Equal(t, tt.expected, GetFormattedVersion())
		})
	}
}

func TestGetDetailedVersion(t *testing.T) {
	withBuildInfo(t, "0.3.0", "abc", "2025-01-02")

	detailed := GetDetailedVersion("7.4.1")
	assert.Contains(t, detailed, "psbrowse v0.3.0")
	assert.Contains(t, detailed, "Git Commit: abc")
	assert.Contains(t, detailed, "PowerShell: 7.4.1")

	assert.NotContains(t, GetDetailedVersion(""), "PowerShell:")
}

func TestIsDevelopment(t *testing.T) {
	withBuildInfo(t, "0.3.0", "unknown", "2025-01-02")
	assert.True(t, IsDevelopment())

	SetBuildInfo("0.3.0", "abc", "2025-01-02")
	assert.False(t, IsDevelopment())
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2   string
		expected int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0-alpha", "1.0.0", -1},
	}

	for _, tt := range tests {
		t.Run(tt.v1+"_vs_"+tt.v2, func(t *testing.T) {
			got, err := CompareVersions(tt.v1, tt.v2)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := CompareVersions("bogus", "1.0.0")
	assert.Error(t, err)
}

func TestSatisfiesMinimum(t *testing.T) {
	tests := []struct {
		name     string
		actual   string
		minimum  string
		expected bool
		wantErr  bool
	}{
		{"equal", "7.2.0", "7.2.0", true, false},
		{"newer", "7.4.1", "7.2", true, false},
		{"older", "5.1.22621", "7.0", false, false},
		{"four part host version", "7.4.1.500", "7.4.0", true, false},
		{"preview build", "7.5.0-preview.3", "7.4.0", true, false},
		{"no minimum", "anything", "", true, false},
		{"bad host version", "banana", "7.0", false, true},
		{"bad minimum", "7.0.0", "seven", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SatisfiesMinimum(tt.actual, tt.minimum)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGetBuildTime(t *testing.T) {
	withBuildInfo(t, "0.3.0", "abc", "2025-01-02T03:04:05Z")
	bt, err := GetBuildTime()
	require.NoError(t, err)
	assert.Equal(t, 2025, bt.Year())

	SetBuildInfo("0.3.0", "abc", "unknown")
	_, err = GetBuildTime()
	assert.Error(t, err)

	SetBuildInfo("0.3.0", "abc", "last tuesday")
	_, err = GetBuildTime()
	assert.Error(t, err)
}

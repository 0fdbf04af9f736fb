package risk

import (
	"testing"
	"time"
)

func businessTime(t *testing.T, hour int) time.Time {
	t.Helper()
	return time.Date(2025, 6, 10, hour, 30, 0, 0, time.UTC)
}

func TestScore(t *testing.T) {
	cfg := DefaultConfig()

	testCases := []struct {
		name string
		in   Input
		want int
	}{
		{
			name: "benign read during business hours",
			in: Input{
				Actions:       []string{"s3:GetObject", "s3:ListBucket"},
				Justification: "investigating customer ticket 4821 in detail",
				SubmittedAt:   businessTime(t, 11),
			},
			want: 0,
		},
		{
			name: "two destructive actions off hours short justification",
			in: Input{
				Actions:       []string{"s3:DeleteObject", "ec2:TerminateInstances"},
				Justification: "cleanup",
				SubmittedAt:   businessTime(t, 22),
			},
			want: 6,
		},
		{
			name: "wildcard action counts as destructive",
			in: Input{
				Actions:       []string{"s3:*"},
				Justification: "broad access needed for incident response",
				SubmittedAt:   businessTime(t, 10),
			},
			want: 2,
		},
		{
			name: "fan out penalty",
			in: Input{
				Actions: []string{
					"s3:GetObject", "s3:ListBucket", "s3:GetBucketLocation",
					"sqs:ReceiveMessage", "sqs:GetQueueAttributes",
					"sns:Subscribe", "sns:ListTopics",
					"logs:GetLogEvents", "logs:FilterLogEvents",
					"dynamodb:GetItem", "dynamodb:Query",
				},
				Justification: "cross-service debugging of the order pipeline",
				SubmittedAt:   businessTime(t, 14),
			},
			want: 1,
		},
		{
			name: "edge of business hours does not penalize",
			in: Input{
				Actions:       []string{"s3:GetObject"},
				Justification: "routine log review for compliance audit",
				SubmittedAt:   businessTime(t, 17),
			},
			want: 0,
		},
		{
			name: "just before business hours penalizes",
			in: Input{
				Actions:       []string{"s3:GetObject"},
				Justification: "routine log review for compliance audit",
				SubmittedAt:   businessTime(t, 8),
			},
			want: 1,
		},
		{
			name: "score is clamped to maximum",
			in: Input{
				Actions: []string{
					"iam:CreateUser", "iam:DeleteUser", "iam:CreateRole",
					"iam:DeleteRole", "iam:CreatePolicy", "iam:DeletePolicy",
					"ec2:TerminateInstances", "kms:CreateKey", "kms:DeleteAlias",
					"s3:DeleteBucket", "s3:CreateBucket",
				},
				Justification: "stuff",
				SubmittedAt:   businessTime(t, 3),
			},
			want: MaxScore,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.in, cfg)
			if got != tc.want {
				t.Errorf("Score() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestBandFor(t *testing.T) {
	cfg := DefaultConfig()

	testCases := []struct {
		score int
		want  Band
	}{
		{0, BandLow},
		{4, BandLow},
		{5, BandMedium},
		{6, BandMedium},
		{7, BandMedium},
		{8, BandHigh},
		{10, BandHigh},
	}

	for _, tc := range testCases {
		if got := BandFor(tc.score, cfg); got != tc.want {
			t.Errorf("BandFor(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestClassifyAction(t *testing.T) {
	table := []ActionClass{
		{Pattern: "Delete", Weight: 3},
		{Pattern: "Get", Weight: 1},
	}

	testCases := []struct {
		action string
		want   int
	}{
		{"s3:DeleteObject", 3},
		{"s3:GetObject", 1},
		{"sqs:ReceiveMessage", 0},
		// first matching class wins
		{"tagging:GetDeleteMarkers", 3},
		// service prefix must not trigger a match
		{"get-service:ListItems", 0},
	}

	for _, tc := range testCases {
		if got := ClassifyAction(tc.action, table); got != tc.want {
			t.Errorf("ClassifyAction(%q) = %d, want %d", tc.action, got, tc.want)
		}
	}
}

func TestScoreUsesConfiguredClassification(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Classification = []ActionClass{
		{Pattern: "Get", Weight: 4},
	}

	in := Input{
		Actions:       []string{"s3:GetObject", "s3:DeleteObject"},
		Justification: "investigating customer ticket 4821 in detail",
		SubmittedAt:   businessTime(t, 11),
	}

	// Get scores 4 under the override; Delete no longer scores at all.
	if got := Score(in, cfg); got != 4 {
		t.Errorf("Score() = %d, want 4", got)
	}
}

func TestIsDestructive(t *testing.T) {
	testCases := []struct {
		action string
		want   bool
	}{
		{"s3:DeleteObject", true},
		{"DeleteObject", true},
		{"ec2:TerminateInstances", true},
		{"iam:CreateUser", true},
		{"iam:AttachAdminPolicy", true},
		{"s3:*", true},
		{"s3:GetObject", false},
		{"logs:FilterLogEvents", false},
		// service prefix must not trigger a match
		{"create-service:GetItem", false},
	}

	for _, tc := range testCases {
		if got := IsDestructive(tc.action); got != tc.want {
			t.Errorf("IsDestructive(%q) = %v, want %v", tc.action, got, tc.want)
		}
	}
}

func TestScoreNeverOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	in := Input{
		Actions:       nil,
		Justification: "",
		SubmittedAt:   businessTime(t, 12),
	}
	got := Score(in, cfg)
	if got < MinScore || got > MaxScore {
		t.Errorf("Score() = %d, out of [%d, %d]", got, MinScore, MaxScore)
	}
}

package services

import (
	"crucible/internal/models"
	"crucible/pkg/types"

	"github.com/google/uuid"
)

// ConvertStandingsToLeaderboard assigns ranks by position. The standings
// must already be in leaderboard order.
func ConvertStandingsToLeaderboard(standings []models.UserContest) []types.LeaderboardEntry {
	entries := make([]types.LeaderboardEntry, len(standings))
	for i, s := range standings {
		entries[i] = types.LeaderboardEntry{
			Rank:             i + 1,
			UserID:           s.UserID,
			TotalPoints:      s.TotalPoints,
			SolvedQuestions:  s.SolvedQuestions,
			TotalSubmissions: s.TotalSubmissions,
			LastSubmissionAt: s.LastSubmissionAt,
		}
		if s.User != nil {
			entries[i].Username = s.User.Username
		}
	}
	return entries
}

func ConvertAdminsToSummaries(admins []models.ContestAdmin) []types.AdminSummary {
	summaries := make([]types.AdminSummary, 0, len(admins))
	for _, a := range admins {
		summary := types.AdminSummary{UserID: a.AdminID}
		if a.Admin != nil {
			summary.Username = a.Admin.Username
			summary.Email = a.Admin.Email
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func ConvertSampleTestCases(testCases []models.TestCase) []types.SampleTestCase {
	samples := make([]types.SampleTestCase, len(testCases))
	for i, tc := range testCases {
		samples[i] = types.SampleTestCase{
			ID:             tc.ID,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
		}
	}
	return samples
}

func ConvertQuestionsToSummaries(questions []models.Question, solved map[uuid.UUID]bool) []types.QuestionSummary {
	summaries := make([]types.QuestionSummary, len(questions))
	for i, q := range questions {
		summaries[i] = types.QuestionSummary{
			ID:     q.ID,
			Title:  q.Title,
			Points: q.Points,
			Solved: solved[q.ID],
		}
	}
	return summaries
}
